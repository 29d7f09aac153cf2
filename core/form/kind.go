package form

import (
	"github.com/pkg/errors"
)

// Kind identifies one of the forms sharing the validate/submit workflow.
type Kind string

const (
	KindRegistration Kind = "registration"
	KindLogin        Kind = "login"
	KindDemoRequest  Kind = "demo-request"
	KindStudentInfo  Kind = "student-info"
)

var (
	Kinds = []Kind{KindRegistration, KindLogin, KindDemoRequest, KindStudentInfo}

	ErrUnknownKind = errors.New("unknown form kind")
)

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// Field is a form field name, as sent by clients.
type Field string

const (
	FieldFullName      Field = "fullName"
	FieldEmail         Field = "email"
	FieldPhoneNumber   Field = "phoneNumber"
	FieldPassword      Field = "password"
	FieldAddress       Field = "address"
	FieldRememberMe    Field = "rememberMe"
	FieldName          Field = "name"
	FieldSchool        Field = "school"
	FieldPosition      Field = "position"
	FieldPhone         Field = "phone"
	FieldStudents      Field = "students"
	FieldCurrentSystem Field = "currentSystem"
	FieldInterest      Field = "interest"
	FieldDateOfBirth   Field = "dateOfBirth"
	FieldGender        Field = "gender"
	FieldGrade         Field = "grade"
	FieldDocuments     Field = "documents"
)

type fieldType int

const (
	textField fieldType = iota
	flagField
	filesField
)

type fieldDef struct {
	typ      fieldType
	secret   bool     // never echoed back
	freeText bool     // markup is stripped at the boundary
	options  []string // closed set of accepted values; "" means unselected
	initial  string
}

var (
	fieldDefs = map[Field]fieldDef{
		FieldFullName:      {},
		FieldEmail:         {},
		FieldPhoneNumber:   {},
		FieldPassword:      {secret: true},
		FieldAddress:       {freeText: true},
		FieldRememberMe:    {typ: flagField},
		FieldName:          {},
		FieldSchool:        {},
		FieldPosition:      {},
		FieldPhone:         {},
		FieldStudents:      {options: []string{"1-100", "101-500", "501-1000", "1001-5000", "5000+"}},
		FieldCurrentSystem: {freeText: true},
		FieldInterest:      {options: []string{"general", "integration", "multi-campus", "international", "scholarships"}, initial: "general"},
		FieldDateOfBirth:   {},
		FieldGender:        {options: []string{"male", "female", "other"}},
		FieldGrade:         {options: []string{"pre-k", "kindergarten", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}},
		FieldDocuments:     {typ: filesField},
	}

	kindFields = map[Kind][]Field{
		KindRegistration: {FieldFullName, FieldEmail, FieldPhoneNumber, FieldPassword, FieldAddress},
		KindLogin:        {FieldEmail, FieldPassword, FieldRememberMe},
		KindDemoRequest:  {FieldName, FieldSchool, FieldPosition, FieldEmail, FieldPhone, FieldStudents, FieldCurrentSystem, FieldInterest},
		KindStudentInfo:  {FieldFullName, FieldDateOfBirth, FieldGender, FieldSchool, FieldGrade, FieldDocuments},
	}
)

// Fields returns the fields of the form, in display order.
func (k Kind) Fields() []Field {
	return append([]Field(nil), kindFields[k]...)
}

// Has reports whether f belongs to the form.
func (k Kind) Has(f Field) bool {
	for _, fld := range kindFields[k] {
		if fld == f {
			return true
		}
	}
	return false
}

// FollowUp returns the form offered once k succeeds, if any.
func (k Kind) FollowUp() (Kind, bool) {
	if k == KindRegistration {
		return KindStudentInfo, true
	}
	return "", false
}

// keepsValuesOnReset: "Request Another Demo" goes back to the filled-in form.
func (k Kind) keepsValuesOnReset() bool {
	return k == KindDemoRequest
}

func (f Field) IsSecret() bool { return fieldDefs[f].secret }
func (f Field) IsFlag() bool   { return fieldDefs[f].typ == flagField }
func (f Field) IsFiles() bool  { return fieldDefs[f].typ == filesField }

// Options returns the accepted values of a selection field.
func (f Field) Options() []string { return append([]string(nil), fieldDefs[f].options...) }

// Confirmation is what a form shows once its submission succeeded.
type Confirmation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var confirmations = map[Kind]Confirmation{
	KindRegistration: {Title: "Registration Successful!", Message: "Your account has been created."},
	KindLogin:        {Title: "Login Successful!", Message: "Redirecting to your dashboard..."},
	KindDemoRequest: {
		Title: "Thank You!",
		Message: "Your demo request has been submitted successfully. " +
			"Our education specialist will contact you within 24 hours to schedule your personalized walkthrough.",
	},
	KindStudentInfo: {Title: "Student Registered!", Message: "Redirecting to login..."},
}

func (k Kind) Confirmation() Confirmation { return confirmations[k] }
