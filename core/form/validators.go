package form

import (
	"reflect"
	"regexp"
	"sort"
	"unicode/utf16"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edupay/core"
)

var (
	requiredTag  = "required"
	requiredText = "{0} is required"

	emailTag   = "simpleemail"
	emailText  = "Please enter a valid email"
	emailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = "Password must be at least 8 characters"

	hasFilesTag  = "hasfiles"
	hasFilesText = "Documents are required"

	// labels maps "Struct.Field" namespaces to the label shown to users.
	labels = make(map[string]string)
)

type (
	Registration struct {
		FullName    string `json:"fullName" label:"Full name" validate:"notblank"`
		Email       string `json:"email" label:"Email" validate:"notblank,simpleemail"`
		PhoneNumber string `json:"phoneNumber" label:"Phone number" validate:"notblank"`
		Password    string `json:"password" label:"Password" validate:"required,pwdminlen"`
		Address     string `json:"address"`
	}

	Login struct {
		Email      string `json:"email" label:"Email" validate:"notblank,simpleemail"`
		Password   string `json:"password" label:"Password" validate:"required,pwdminlen"`
		RememberMe bool   `json:"rememberMe"`
	}

	DemoRequest struct {
		Name          string `json:"name" label:"Name" validate:"notblank"`
		School        string `json:"school" label:"School name" validate:"notblank"`
		Position      string `json:"position" label:"Your position" validate:"notblank"`
		Email         string `json:"email" label:"Email" validate:"notblank,simpleemail"`
		Phone         string `json:"phone"`
		Students      string `json:"students"`
		CurrentSystem string `json:"currentSystem"`
		Interest      string `json:"interest"`
	}

	StudentInfo struct {
		FullName    string     `json:"fullName" label:"Full name" validate:"notblank"`
		DateOfBirth string     `json:"dateOfBirth" label:"Date of birth" validate:"required"`
		Gender      string     `json:"gender" label:"Gender" validate:"required"`
		School      string     `json:"school" label:"School information" validate:"notblank"`
		Grade       string     `json:"grade" label:"Grade" validate:"required"`
		Documents   []Document `json:"documents" validate:"hasfiles"`
	}
)

func init() {
	for _, s := range []interface{}{Registration{}, Login{}, DemoRequest{}, StudentInfo{}} {
		collectLabels(reflect.TypeOf(s))
	}
}

// InitValidators registers the form rules on a validator already set up by core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(emailTag, emailValidation)
	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	_ = validate.RegisterValidation(hasFilesTag, hasFilesValidation)

	registerLabelTranslation(validate, translator, core.NotBlankTag)
	registerLabelTranslation(validate, translator, requiredTag)
	core.RegisterCustomTranslation(validate, translator, emailTag, emailText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, hasFilesTag, hasFilesText)
}

func collectLabels(t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if label := fld.Tag.Get("label"); label != "" {
			labels[t.Name()+"."+fld.Name] = label
		}
	}
}

// registerLabelTranslation renders "<Label> is required" for the given tag.
func registerLabelTranslation(validate *validator.Validate, translator ut.Translator, tag string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, requiredText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			label, ok := labels[fe.StructNamespace()]
			if !ok {
				label = fe.Field()
			}
			s, _ := t.T(tag, label)
			return s
		},
	)
}

func emailValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	// length in UTF-16 code units, so astral characters count twice
	return len(utf16.Encode([]rune(fl.Field().String()))) >= pwdMinLen
}

func hasFilesValidation(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.Slice && fl.Field().Len() > 0
}

// Errors maps each invalid field to its message. Empty means valid.
type Errors map[Field]string

// Err returns errs as a *core.ValidationError, or nil when there are none.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	fldErrs := make([]core.FieldError, 0, len(errs))
	for f, msg := range errs {
		fldErrs = append(fldErrs, core.FieldError{Field: string(f), Error: msg})
	}
	sort.Slice(fldErrs, func(i, j int) bool { return fldErrs[i].Field < fldErrs[j].Field })
	return core.NewValidationError(nil, fldErrs...)
}

func (errs Errors) clone() Errors {
	c := make(Errors, len(errs))
	for f, msg := range errs {
		c[f] = msg
	}
	return c
}

// Validator checks form values against the rules of their kind.
// It is a pure function of its input.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator(validate *validator.Validate, translator ut.Translator) *Validator {
	return &Validator{validate: validate, translator: translator}
}

func (v *Validator) Validate(kind Kind, values Values) Errors {
	errs := make(Errors)
	target := bind(kind, values)
	if target == nil {
		return errs
	}
	if err := v.validate.Struct(target); err != nil {
		vErrs, _ := err.(validator.ValidationErrors)
		for _, fe := range vErrs {
			errs[Field(fe.Field())] = fe.Translate(v.translator)
		}
	}
	return errs
}

// bind copies values into the struct carrying the rules of kind.
func bind(kind Kind, vs Values) interface{} {
	switch kind {
	case KindRegistration:
		return &Registration{
			FullName:    vs.Text(FieldFullName),
			Email:       vs.Text(FieldEmail),
			PhoneNumber: vs.Text(FieldPhoneNumber),
			Password:    vs.Text(FieldPassword),
			Address:     vs.Text(FieldAddress),
		}
	case KindLogin:
		return &Login{
			Email:      vs.Text(FieldEmail),
			Password:   vs.Text(FieldPassword),
			RememberMe: vs.Checked(FieldRememberMe),
		}
	case KindDemoRequest:
		return &DemoRequest{
			Name:          vs.Text(FieldName),
			School:        vs.Text(FieldSchool),
			Position:      vs.Text(FieldPosition),
			Email:         vs.Text(FieldEmail),
			Phone:         vs.Text(FieldPhone),
			Students:      vs.Text(FieldStudents),
			CurrentSystem: vs.Text(FieldCurrentSystem),
			Interest:      vs.Text(FieldInterest),
		}
	case KindStudentInfo:
		return &StudentInfo{
			FullName:    vs.Text(FieldFullName),
			DateOfBirth: vs.Text(FieldDateOfBirth),
			Gender:      vs.Text(FieldGender),
			School:      vs.Text(FieldSchool),
			Grade:       vs.Text(FieldGrade),
			Documents:   vs.Files(FieldDocuments),
		}
	}
	return nil
}

// DemoRequestOf returns the demo request held by vs.
func DemoRequestOf(vs Values) DemoRequest {
	return *bind(KindDemoRequest, vs).(*DemoRequest)
}
