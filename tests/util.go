package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
	logsvc "github.com/trezcool/edupay/services/logger"
)

// NewConfig returns a test configuration with short delays.
func NewConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		Build:    "test",
		TestMode: true,
		AppName:  "EduPay",
		Server: core.ServerConfig{
			Address:         ":0",
			DisableReqLogs:  true,
			ShutdownTimeout: time.Second,
		},
		Forms: core.FormsConfig{
			RegistrationDelay: 20 * time.Millisecond,
			LoginDelay:        20 * time.Millisecond,
			StudentInfoDelay:  20 * time.Millisecond,
			DemoRequestDelay:  20 * time.Millisecond,
			LoginRedirect:     10 * time.Millisecond,
			SessionTTL:        time.Minute,
		},
		Submission: core.SubmissionConfig{
			Mode:       core.SubmissionModeSimulate,
			MaxRetries: 1,
			RetryBase:  time.Millisecond,
		},
		Payments: core.PaymentsConfig{
			BackendURL: "http://localhost:0",
			Timeout:    time.Second,
		},
		Dashboard: core.DashboardConfig{
			Delay: time.Millisecond,
		},
	}
}

// NewLogger returns a logger that discards its output. Rollbar stays disabled.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "TEST : ", 0), NewConfig())
	logger.Enable(false)
	return logger
}

// NewValidator returns a form validator with every custom validation registered.
func NewValidator() (*form.Validator, *validator.Validate) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)
	return form.NewValidator(validate, translator), validate
}

// PaymentLister serves fixed payments, or Err.
type PaymentLister struct {
	Payments []payment.Payment
	Err      error
}

func (l PaymentLister) ListPayments(ctx context.Context) ([]payment.Payment, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Payments, ctx.Err()
}
