package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/edupay/apps/api/echo"
	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/dashboard"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
	"github.com/trezcool/edupay/services/backend"
	emailsvc "github.com/trezcool/edupay/services/email"
	logsvc "github.com/trezcool/edupay/services/logger"
	"github.com/trezcool/edupay/services/metrics"
	"github.com/trezcool/edupay/storage/inmem"
)

type (
	FormServiceParam struct {
		dig.In
		Conf      *core.Config
		Logger    core.Logger
		Store     form.Store
		Validator *form.Validator
		Submitter form.Submitter
		Metrics   *metrics.Collector
		MailSvc   core.EmailService
	}

	ServerParam struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		FormSvc      *form.Service
		PaymentSvc   *payment.Service
		DashboardSvc *dashboard.Service
		Metrics      *metrics.Collector
		Validate     *validator.Validate
		Translator   ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newFormValidator(validate *validator.Validate, translator ut.Translator) *form.Validator {
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)
	return form.NewValidator(validate, translator)
}

func newFormStore(conf *core.Config) form.Store {
	return inmem.NewFormStore(conf.Forms.SessionTTL)
}

func newSubmitter(conf *core.Config, client *backend.Client) form.Submitter {
	if conf.Submission.Mode == core.SubmissionModeHTTP {
		return client
	}
	return form.NewSimulator(form.ConfiguredDelays(conf))
}

func newBackendClient(conf *core.Config) *backend.Client {
	return backend.NewClient(conf, nil)
}

func newPaymentLister(client *backend.Client) payment.Lister {
	return client
}

func newMetrics(store form.Store) *metrics.Collector {
	return metrics.NewCollector(store.Count)
}

func newFormService(p FormServiceParam) *form.Service {
	return form.NewService(form.ServiceConfig{
		Store:         p.Store,
		Validator:     p.Validator,
		Submitter:     p.Submitter,
		RedirectDelay: p.Conf.Forms.LoginRedirect,
		Logger:        p.Logger,
		Hooks: []form.Hook{
			p.Metrics.ObserveSubmission,
			emailsvc.DemoRequestNotifier(p.MailSvc, p.Conf.SalesEmail()),
		},
	})
}

func newPaymentService(conf *core.Config, lister payment.Lister, logger core.Logger, collector *metrics.Collector) *payment.Service {
	return payment.NewService(payment.ServiceConfig{
		Lister:    lister,
		Logger:    logger,
		Timeout:   conf.Payments.Timeout,
		OnFetched: collector.ObservePaymentFetch,
	})
}

func newDashboardService(conf *core.Config) *dashboard.Service {
	return dashboard.NewService(conf.Dashboard.Delay)
}

func newServer(p ServerParam) *echoapi.Server {
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         p.Conf,
			Logger:       p.Logger,
			FormSvc:      p.FormSvc,
			PaymentSvc:   p.PaymentSvc,
			DashboardSvc: p.DashboardSvc,
			Metrics:      p.Metrics.Handler(),
			Validate:     p.Validate,
			Translator:   p.Translator,
		},
	)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newFormValidator))
	must(c.Provide(newFormStore))
	must(c.Provide(newBackendClient))
	must(c.Provide(newSubmitter))
	must(c.Provide(newPaymentLister))
	must(c.Provide(newMetrics))
	must(c.Provide(newFormService))
	must(c.Provide(newPaymentService))
	must(c.Provide(newDashboardService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
