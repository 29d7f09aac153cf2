package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string // DEV (local; default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool
		AppName  string
		WorkDir  string

		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string
		salesEmail       string

		Server     ServerConfig
		Forms      FormsConfig
		Submission SubmissionConfig
		Payments   PaymentsConfig
		Dashboard  DashboardConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		DisableReqLogs  bool
		ShutdownTimeout time.Duration
	}

	FormsConfig struct {
		RegistrationDelay time.Duration
		LoginDelay        time.Duration
		StudentInfoDelay  time.Duration
		DemoRequestDelay  time.Duration
		LoginRedirect     time.Duration
		SessionTTL        time.Duration
	}

	SubmissionConfig struct {
		Mode       string // simulate | http
		MaxRetries uint64
		RetryBase  time.Duration
	}

	PaymentsConfig struct {
		BackendURL string
		Timeout    time.Duration
	}

	DashboardConfig struct {
		Delay time.Duration
	}
)

const (
	SubmissionModeSimulate = "simulate"
	SubmissionModeHTTP     = "http"
)

// NewConfig loads the configuration from defaults, the optional config/.env.<env> file and the environment.
// Environment variables are prefixed with the upper-cased env name, eg. DEV_SERVER_ADDRESS.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "EduPay")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "EduPay <noreply@localhost>")
	v.SetDefault("salesEmail", "Sales <sales@localhost>")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("forms.registrationDelay", 2000*time.Millisecond)
	v.SetDefault("forms.loginDelay", 2000*time.Millisecond)
	v.SetDefault("forms.studentInfoDelay", 2000*time.Millisecond)
	v.SetDefault("forms.demoRequestDelay", 1500*time.Millisecond)
	v.SetDefault("forms.loginRedirect", 3000*time.Millisecond)
	v.SetDefault("forms.sessionTTL", 30*time.Minute)

	v.SetDefault("submission.mode", SubmissionModeSimulate)
	v.SetDefault("submission.maxRetries", 3)
	v.SetDefault("submission.retryBase", 200*time.Millisecond)

	v.SetDefault("payments.backendURL", "http://localhost:5000")
	v.SetDefault("payments.timeout", 10*time.Second)

	v.SetDefault("dashboard.delay", 1500*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		WorkDir:          wd,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		salesEmail:       v.GetString("salesEmail"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Forms: FormsConfig{
			RegistrationDelay: v.GetDuration("forms.registrationDelay"),
			LoginDelay:        v.GetDuration("forms.loginDelay"),
			StudentInfoDelay:  v.GetDuration("forms.studentInfoDelay"),
			DemoRequestDelay:  v.GetDuration("forms.demoRequestDelay"),
			LoginRedirect:     v.GetDuration("forms.loginRedirect"),
			SessionTTL:        v.GetDuration("forms.sessionTTL"),
		},
		Submission: SubmissionConfig{
			Mode:       strings.ToLower(v.GetString("submission.mode")),
			MaxRetries: uint64(v.GetInt("submission.maxRetries")),
			RetryBase:  v.GetDuration("submission.retryBase"),
		},
		Payments: PaymentsConfig{
			BackendURL: strings.TrimSuffix(v.GetString("payments.backendURL"), "/"),
			Timeout:    v.GetDuration("payments.timeout"),
		},
		Dashboard: DashboardConfig{
			Delay: v.GetDuration("dashboard.delay"),
		},
	}
}

func (conf *Config) DefaultFromEmail() mail.Address {
	return parseAddress(conf.defaultFromEmail, "noreply@localhost")
}

func (conf *Config) SalesEmail() mail.Address {
	return parseAddress(conf.salesEmail, "sales@localhost")
}

func parseAddress(s, fallback string) mail.Address {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return mail.Address{Address: fallback}
	}
	return *addr
}
