package celery

import (
	"errors"

	"github.com/spf13/viper"
)

// envDefaults reads CELERY_BROKER_URL / CELERY_RESULT_BACKEND the way a
// thin façade is expected to, per SPEC_FULL.md's config/env defaults
// entry: the core
// itself never reads the environment, but NewFromEnv gives callers the
// same zero-config convenience the Python client's env vars provide.
func envDefaults() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("celery")
	v.AutomaticEnv()
	v.BindEnv("broker_url")
	v.BindEnv("result_backend")
	return v
}

// NewFromEnv builds a Client from CELERY_BROKER_URL and
// CELERY_RESULT_BACKEND, falling back to explicit overrides when either
// environment variable is unset.
func NewFromEnv(brokerURLOverride, backendURLOverride string, opts ...Option) (*Client, error) {
	const op = "celery.NewFromEnv"

	v := envDefaults()
	brokerURL := v.GetString("broker_url")
	if brokerURL == "" {
		brokerURL = brokerURLOverride
	}
	backendURL := v.GetString("result_backend")
	if backendURL == "" {
		backendURL = backendURLOverride
	}
	if brokerURL == "" {
		return nil, wrapOp(op, errNoBrokerURL)
	}
	return NewFromURL(brokerURL, backendURL, opts...)
}

var errNoBrokerURL = errors.New("no broker URL: set CELERY_BROKER_URL or pass brokerURLOverride")
