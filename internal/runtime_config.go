package internal

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// TraceExporter selects where spans are sent.
type TraceExporter string

const (
	TraceExporterNone   TraceExporter = "none"
	TraceExporterStdout TraceExporter = "stdout"
	TraceExporterXRay   TraceExporter = "xray"
)

type RuntimeConfig struct {
	// Workload endpoints.
	StatusURL   string `env:"STATUS_URL" envDefault:"http://localhost:5000/app/status"`
	ReplicasURL string `env:"REPLICAS_URL" envDefault:"http://localhost:5000/app/replicas"`

	// Control loop. CPU utilization is a fraction, so 0.80 means 80%.
	TargetCPUUtilization float64       `env:"TARGET_CPU_UTILIZATION" envDefault:"0.80"`
	PollInterval         time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`

	// Hardening, all disabled by default. A zero timeout lets requests block
	// for as long as the workload takes to answer.
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`
	RetryMaxAttempts     uint          `env:"RETRY_MAX_ATTEMPTS" envDefault:"0"`
	RetryInitialInterval time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"1s"`

	// Telemetry.
	TraceExporter TraceExporter `env:"TRACE_EXPORTER" envDefault:"none"`
}

// Parse parses environment variables into the config and validates it.
func (r *RuntimeConfig) Parse() error {
	return r.ParseWithOptions(env.Options{})
}

// ParseWithOptions is like Parse, but lets the caller control the source of
// the variables.
func (r *RuntimeConfig) ParseWithOptions(opts env.Options) error {
	if err := env.ParseWithOptions(r, opts); err != nil {
		return fmt.Errorf("could not parse environment variables: %w", err)
	}

	return r.Validate()
}

// Validate checks the values that env tags can't express.
func (r RuntimeConfig) Validate() error {
	var errs []error

	if err := validateURL("STATUS_URL", r.StatusURL); err != nil {
		errs = append(errs, err)
	}

	if err := validateURL("REPLICAS_URL", r.ReplicasURL); err != nil {
		errs = append(errs, err)
	}

	if !(r.TargetCPUUtilization > 0) {
		errs = append(errs, fmt.Errorf("TARGET_CPU_UTILIZATION must be greater than 0, got %v", r.TargetCPUUtilization))
	}

	if r.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", r.PollInterval))
	}

	if r.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", r.RequestTimeout))
	}

	if r.RetryMaxAttempts > 0 && r.RetryInitialInterval <= 0 {
		errs = append(errs, fmt.Errorf("RETRY_INITIAL_INTERVAL must be positive when retries are enabled, got %s", r.RetryInitialInterval))
	}

	switch r.TraceExporter {
	case TraceExporterNone, TraceExporterStdout, TraceExporterXRay:
	default:
		errs = append(errs, fmt.Errorf("unknown TRACE_EXPORTER %q", r.TraceExporter))
	}

	return errors.Join(errs...)
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", name)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid %s: host is empty", name)
	}

	return nil
}
