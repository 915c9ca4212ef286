package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/notify-go/domain/template"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the JSON path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates notify-go configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *Config) ValidationErrors {
	v.errors = nil

	v.validateRequired(config)
	v.validatePhone(config)
	v.validateChannel(config)
	v.validateStorage(config)
	v.validateDispatch(config)
	v.validateLogging(config)
	v.validateTelemetry(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateRequired(config *Config) {
	if config.Name == "" {
		v.addError("name", "name is required")
	}
	if config.Version == "" {
		v.addError("version", "version is required")
	}
}

func (v *Validator) validatePhone(config *Config) {
	region := config.Phone.DefaultRegion
	if region == "" {
		return
	}
	valid := len(region) == 2
	for _, r := range region {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			valid = false
		}
	}
	if !valid {
		v.addError("phone.default_region", fmt.Sprintf("invalid region code: %s", region))
	}
}

func (v *Validator) validateChannel(config *Config) {
	ch := config.Channel

	switch ch.Provider {
	case ProviderConsole:
	case ProviderCloudAPI:
		if ch.BaseURL == "" {
			v.addError("channel.base_url", "base_url is required for cloudapi")
		} else if u, err := url.Parse(ch.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			v.addError("channel.base_url", fmt.Sprintf("invalid URL: %s", ch.BaseURL))
		}
		if ch.PhoneNumberID == "" {
			v.addError("channel.phone_number_id", "phone_number_id is required for cloudapi")
		}
	case "":
		v.addError("channel.provider", "provider is required")
	default:
		v.addError("channel.provider", fmt.Sprintf("invalid provider: %s", ch.Provider))
	}

	if ch.Timeout < 0 {
		v.addError("channel.timeout", "timeout must be non-negative")
	}
	if ch.MaxConcurrent < 0 {
		v.addError("channel.max_concurrent", "max_concurrent must be non-negative")
	}
	if ch.CircuitBreaker.Threshold < 0 {
		v.addError("channel.circuit_breaker.threshold", "threshold must be non-negative")
	}
	if ch.CircuitBreaker.Timeout < 0 {
		v.addError("channel.circuit_breaker.timeout", "timeout must be non-negative")
	}
	for kind, name := range ch.Templates {
		path := fmt.Sprintf("channel.templates.%s", kind)
		if !template.Kind(kind).Valid() {
			v.addError(path, fmt.Sprintf("unknown template kind: %s", kind))
		}
		if strings.TrimSpace(name) == "" {
			v.addError(path, "remote template name is required")
		}
	}
}

func (v *Validator) validateStorage(config *Config) {
	st := config.Storage

	switch st.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if st.DSN == "" {
			v.addError("storage.dsn", fmt.Sprintf("dsn is required for %s", st.Driver))
		}
	case DriverMongoDB:
		if st.DSN == "" {
			v.addError("storage.dsn", "dsn is required for mongodb")
		}
		if st.Database == "" {
			v.addError("storage.database", "database is required for mongodb")
		}
	case "":
		v.addError("storage.driver", "driver is required")
	default:
		v.addError("storage.driver", fmt.Sprintf("invalid driver: %s", st.Driver))
	}

	if st.SeedFile != "" && st.Driver != DriverMemory {
		v.addError("storage.seed_file", "seed_file is only supported by the memory driver")
	}

	if st.Cache.Enabled && st.Cache.Address == "" {
		v.addError("storage.cache.address", "address is required when cache is enabled")
	}
	if st.Cache.TTL < 0 {
		v.addError("storage.cache.ttl", "ttl must be non-negative")
	}
	if st.Cache.DB < 0 {
		v.addError("storage.cache.db", "db must be non-negative")
	}
}

func (v *Validator) validateDispatch(config *Config) {
	if config.Dispatch.MaxConcurrency < 0 {
		v.addError("dispatch.max_concurrency", "max_concurrency must be non-negative")
	}
}

func (v *Validator) validateLogging(config *Config) {
	if lvl := config.Logging.Level; lvl != "" {
		validLevels := map[string]bool{
			"trace": true, "debug": true, "info": true, "warn": true, "error": true,
		}
		if !validLevels[strings.ToLower(lvl)] {
			v.addError("logging.level", fmt.Sprintf("invalid level: %s", lvl))
		}
	}
	if f := config.Logging.Format; f != "" && f != "json" && f != "console" {
		v.addError("logging.format", fmt.Sprintf("invalid format: %s", f))
	}
}

func (v *Validator) validateTelemetry(config *Config) {
	tc := config.Telemetry
	if !tc.Enabled {
		return
	}

	switch tc.Exporter {
	case "", ExporterStdout, ExporterNoop:
	case ExporterOTLP:
		if tc.Endpoint == "" {
			v.addError("telemetry.endpoint", "endpoint is required for otlp")
		}
	default:
		v.addError("telemetry.exporter", fmt.Sprintf("invalid exporter: %s", tc.Exporter))
	}

	if tc.SampleRate < 0 || tc.SampleRate > 1 {
		v.addError("telemetry.sample_rate", "sample_rate must be between 0 and 1")
	}
}
