package core

import (
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_SERVER_ADDRESS", ":9999")
	t.Setenv("TEST_SUBMISSION_MODE", "HTTP")
	t.Setenv("TEST_PAYMENTS_BACKENDURL", "http://backend:5000/")
	t.Setenv("TEST_FORMS_LOGINREDIRECT", "250ms")
	t.Setenv("TEST_SALESEMAIL", "not an address")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, ":9999", conf.Server.Address)
	assert.Equal(t, SubmissionModeHTTP, conf.Submission.Mode)
	assert.Equal(t, "http://backend:5000", conf.Payments.BackendURL)
	assert.Equal(t, 250*time.Millisecond, conf.Forms.LoginRedirect)
	assert.Equal(t, 2000*time.Millisecond, conf.Forms.RegistrationDelay)
	assert.Equal(t, 1500*time.Millisecond, conf.Dashboard.Delay)
	assert.Equal(t, mail.Address{Name: "EduPay", Address: "noreply@localhost"}, conf.DefaultFromEmail())
	assert.Equal(t, mail.Address{Address: "sales@localhost"}, conf.SalesEmail())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(nil, FieldError{Field: "email", Error: "Email is required"}, FieldError{Field: "password", Error: "Password is required"})
	assert.Equal(t, "email: Email is required", err.Error())

	var vErr *ValidationError
	require.True(t, errors.As(errors.Wrap(err, "submitting"), &vErr))
	assert.Equal(t, map[string]string{"email": "Email is required", "password": "Password is required"}, vErr.FieldMap())

	assert.Equal(t, "bad", NewValidationError(errors.New("bad")).Error())
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "serving")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestNotBlank(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type data struct {
		Name string `json:"name" validate:"notblank"`
	}
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "empty", value: "", wantErr: true},
		{name: "whitespace", value: " \t\n", wantErr: true},
		{name: "text", value: " Asha ", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(data{Name: tt.value})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
			assert.Equal(t, "name", vErrs[0].Field())
			assert.Equal(t, requiredText, vErrs[0].Translate(translator))
		})
	}
}

func TestEmailMessage_Render(t *testing.T) {
	msg := EmailMessage{To: []mail.Address{{Address: "asha@school.tz"}}, BodyStr: "hello"}
	require.NoError(t, msg.Render("EduPay"))
	assert.Equal(t, "hello", msg.TextContent)
	assert.True(t, msg.HasRecipients())
	assert.True(t, msg.HasContent())

	msg = EmailMessage{TemplateName: "nope"}
	assert.EqualError(t, msg.Render("EduPay"), `email template "nope" not found`)

	msg = EmailMessage{TemplateName: "demo_request", TemplateData: map[string]string{}}
	assert.Error(t, msg.Render("EduPay"))
	assert.False(t, msg.HasRecipients())

	msg = EmailMessage{TemplateName: "demo_request", TemplateData: map[string]string{
		"School": "Kibo Academy", "Name": "Asha", "Position": "Bursar", "Email": "asha@school.tz",
		"Phone": "", "Students": "101-500", "CurrentSystem": "", "Interest": "general",
	}}
	require.NoError(t, msg.Render("EduPay"))
	assert.Contains(t, msg.TextContent, "School: Kibo Academy")
	assert.Contains(t, msg.TextContent, "EduPay") // from the base layout
	assert.Contains(t, msg.HTMLContent, "Kibo Academy")
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Asha", CleanString("  Asha \n"))
	assert.Equal(t, "usd", CleanString(" USD ", true))
}
