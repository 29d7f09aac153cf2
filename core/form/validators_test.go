package form

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/trezcool/edupay/core"
)

func newTestValidator() *Validator {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return NewValidator(validate, translator)
}

var (
	validRegistration = Values{
		FieldFullName:    Text("Asha Mrema"),
		FieldEmail:       Text("asha@school.tz"),
		FieldPhoneNumber: Text("+255 712 000 000"),
		FieldPassword:    Text("s3cretpass"),
	}
	validLogin = Values{
		FieldEmail:    Text("asha@school.tz"),
		FieldPassword: Text("s3cretpass"),
	}
	validDemoRequest = Values{
		FieldName:     Text("Juma Ally"),
		FieldSchool:   Text("Mwenge Secondary"),
		FieldPosition: Text("Bursar"),
		FieldEmail:    Text("juma@mwenge.ac.tz"),
		FieldInterest: Text("general"),
	}
	validStudentInfo = Values{
		FieldFullName:    Text("Neema Mrema"),
		FieldDateOfBirth: Text("2012-03-14"),
		FieldGender:      Text("female"),
		FieldSchool:      Text("Mwenge Secondary"),
		FieldGrade:       Text("7"),
		FieldDocuments:   Files(Document{Name: "birth-certificate.pdf", Size: 2048}),
	}
)

func with(vs Values, f Field, v Value) Values {
	c := vs.clone()
	c[f] = v
	return c
}

func TestValidator_Validate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		kind   Kind
		values Values
		want   Errors
	}{
		{
			name: "empty registration",
			kind: KindRegistration,
			want: Errors{
				FieldFullName:    "Full name is required",
				FieldEmail:       "Email is required",
				FieldPhoneNumber: "Phone number is required",
				FieldPassword:    "Password is required",
			},
		},
		{name: "valid registration", kind: KindRegistration, values: validRegistration, want: Errors{}},
		{
			name:   "registration without address is valid",
			kind:   KindRegistration,
			values: with(validRegistration, FieldAddress, Text("")),
			want:   Errors{},
		},
		{
			name:   "blank full name",
			kind:   KindRegistration,
			values: with(validRegistration, FieldFullName, Text("   ")),
			want:   Errors{FieldFullName: "Full name is required"},
		},
		{
			name:   "bad email format",
			kind:   KindRegistration,
			values: with(validRegistration, FieldEmail, Text("asha@school")),
			want:   Errors{FieldEmail: "Please enter a valid email"},
		},
		{
			name:   "email format checked untrimmed",
			kind:   KindLogin,
			values: with(validLogin, FieldEmail, Text(" asha@school.tz")),
			want:   Errors{FieldEmail: "Please enter a valid email"},
		},
		{
			name:   "no-break space in email",
			kind:   KindLogin,
			values: with(validLogin, FieldEmail, Text("a\u00a0b@c.de")),
			want:   Errors{FieldEmail: "Please enter a valid email"},
		},
		{
			name:   "em space in email domain",
			kind:   KindLogin,
			values: with(validLogin, FieldEmail, Text("a@b\u2003c.de")),
			want:   Errors{FieldEmail: "Please enter a valid email"},
		},
		{
			name:   "vertical tab in email",
			kind:   KindLogin,
			values: with(validLogin, FieldEmail, Text("a\vb@c.de")),
			want:   Errors{FieldEmail: "Please enter a valid email"},
		},
		{
			name:   "short password",
			kind:   KindRegistration,
			values: with(validRegistration, FieldPassword, Text("1234567")),
			want:   Errors{FieldPassword: "Password must be at least 8 characters"},
		},
		{
			name:   "astral characters count twice",
			kind:   KindLogin,
			values: with(validLogin, FieldPassword, Text("\U0001F600\U0001F600\U0001F600\U0001F600")),
			want:   Errors{},
		},
		{
			name:   "three astral characters are too short",
			kind:   KindRegistration,
			values: with(validRegistration, FieldPassword, Text("\U0001F600\U0001F600\U0001F600")),
			want:   Errors{FieldPassword: "Password must be at least 8 characters"},
		},
		{
			name:   "whitespace password is not trimmed",
			kind:   KindLogin,
			values: with(validLogin, FieldPassword, Text("        ")),
			want:   Errors{},
		},
		{
			name: "empty login",
			kind: KindLogin,
			want: Errors{FieldEmail: "Email is required", FieldPassword: "Password is required"},
		},
		{
			name:   "remember me does not matter",
			kind:   KindLogin,
			values: with(validLogin, FieldRememberMe, Checked(true)),
			want:   Errors{},
		},
		{
			name: "empty demo request",
			kind: KindDemoRequest,
			want: Errors{
				FieldName:     "Name is required",
				FieldSchool:   "School name is required",
				FieldPosition: "Your position is required",
				FieldEmail:    "Email is required",
			},
		},
		{name: "valid demo request", kind: KindDemoRequest, values: validDemoRequest, want: Errors{}},
		{
			name: "empty student info",
			kind: KindStudentInfo,
			want: Errors{
				FieldFullName:    "Full name is required",
				FieldDateOfBirth: "Date of birth is required",
				FieldGender:      "Gender is required",
				FieldSchool:      "School information is required",
				FieldGrade:       "Grade is required",
				FieldDocuments:   "Documents are required",
			},
		},
		{name: "valid student info", kind: KindStudentInfo, values: validStudentInfo, want: Errors{}},
		{
			name:   "student info without documents",
			kind:   KindStudentInfo,
			values: with(validStudentInfo, FieldDocuments, Files()),
			want:   Errors{FieldDocuments: "Documents are required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.kind, tt.values)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrors_Err(t *testing.T) {
	if err := (Errors{}).Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	err := Errors{FieldPassword: "Password is required", FieldEmail: "Email is required"}.Err()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Err() = %T, want *core.ValidationError", err)
	}
	want := []core.FieldError{
		{Field: "email", Error: "Email is required"},
		{Field: "password", Error: "Password is required"},
	}
	if diff := cmp.Diff(want, vErr.Fields); diff != "" {
		t.Errorf("Err() fields mismatch (-want +got):\n%s", diff)
	}
}

// requiredFields lists, per form, the fields that can make it invalid.
var requiredFields = map[Kind][]Field{
	KindRegistration: {FieldFullName, FieldEmail, FieldPhoneNumber, FieldPassword},
	KindLogin:        {FieldEmail, FieldPassword},
	KindDemoRequest:  {FieldName, FieldSchool, FieldPosition, FieldEmail},
	KindStudentInfo:  {FieldFullName, FieldDateOfBirth, FieldGender, FieldSchool, FieldGrade, FieldDocuments},
}

func drawValid(t *rapid.T, kind Kind) Values {
	vs := make(Values)
	for _, f := range kind.Fields() {
		switch f {
		case FieldEmail:
			vs[f] = Text(rapid.StringMatching(`[a-z0-9.]{1,12}@[a-z]{1,8}\.[a-z]{2,4}`).Draw(t, "email"))
		case FieldPassword:
			vs[f] = Text(rapid.StringMatching(`\S.{7,20}`).Draw(t, "password"))
		case FieldRememberMe:
			vs[f] = Checked(rapid.Bool().Draw(t, "rememberMe"))
		case FieldDocuments:
			vs[f] = Files(Document{Name: rapid.StringMatching(`[a-z]{1,10}\.pdf`).Draw(t, "doc"), Size: 1})
		default:
			if opts := f.Options(); len(opts) > 0 {
				vs[f] = Text(rapid.SampledFrom(opts).Draw(t, string(f)))
			} else {
				vs[f] = Text(rapid.StringMatching(` ?[A-Za-z][A-Za-z .'-]{0,20}`).Draw(t, string(f)))
			}
		}
	}
	return vs
}

func TestValidator_ValidValuesHaveNoErrors(t *testing.T) {
	v := newTestValidator()
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom(Kinds).Draw(t, "kind")
		vs := drawValid(t, kind)
		if errs := v.Validate(kind, vs); len(errs) != 0 {
			t.Fatalf("Validate(%s, %v) = %v, want no errors", kind, vs, errs)
		}
	})
}

func TestValidator_BlankRequiredFieldIsReported(t *testing.T) {
	v := newTestValidator()
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom(Kinds).Draw(t, "kind")
		vs := drawValid(t, kind)
		f := rapid.SampledFrom(requiredFields[kind]).Draw(t, "field")
		vs[f] = Value{}

		errs := v.Validate(kind, vs)
		if len(errs) != 1 {
			t.Fatalf("Validate() = %v, want exactly one error on %s", errs, f)
		}
		if msg := errs[f]; !strings.HasSuffix(msg, "required") {
			t.Fatalf("Validate()[%s] = %q, want a required message", f, msg)
		}
	})
}

func TestValidator_IsPure(t *testing.T) {
	v := newTestValidator()
	vs := with(validRegistration, FieldEmail, Text("nope"))
	before := vs.clone()

	first := v.Validate(KindRegistration, vs)
	second := v.Validate(KindRegistration, vs)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Validate() not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, vs); diff != "" {
		t.Errorf("Validate() mutated its input (-before +after):\n%s", diff)
	}
}
