package main

import (
	"log"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/dashboard"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
	"github.com/trezcool/edupay/services/backend"
	logsvc "github.com/trezcool/edupay/services/logger"
	"github.com/trezcool/edupay/storage/inmem"
)

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)

	client := backend.NewClient(conf, nil)
	var submitter form.Submitter = client
	if conf.Submission.Mode != core.SubmissionModeHTTP {
		submitter = form.NewSimulator(form.ConfiguredDelays(conf))
	}

	store := inmem.NewFormStore(conf.Forms.SessionTTL)
	defer store.Flush()

	// start CLI
	cli := commandLine{
		forms: form.NewService(form.ServiceConfig{
			Store:         store,
			Validator:     form.NewValidator(validate, translator),
			Submitter:     submitter,
			RedirectDelay: conf.Forms.LoginRedirect,
			Logger:        logger,
		}),
		payments: payment.NewService(payment.ServiceConfig{
			Lister:  client,
			Logger:  logger,
			Timeout: conf.Payments.Timeout,
		}),
		dashboard: dashboard.NewService(conf.Dashboard.Delay),
		out:       os.Stdout,
		stdin:     int(syscall.Stdin),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		store.Flush()
		os.Exit(1)
	}
}
