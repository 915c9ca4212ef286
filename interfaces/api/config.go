package api

import (
	"context"
	"io"

	"github.com/felixgeelhaar/notify-go/application"
	domainconfig "github.com/felixgeelhaar/notify-go/domain/config"
	"github.com/felixgeelhaar/notify-go/domain/preference"
	infraconfig "github.com/felixgeelhaar/notify-go/infrastructure/config"
)

// Re-export configuration types.
type (
	// Config is the complete notify-go configuration.
	Config = domainconfig.Config
	// ConfigLoader loads configuration from files.
	ConfigLoader = infraconfig.Loader
	// ConfigLoaderOption configures the loader.
	ConfigLoaderOption = infraconfig.LoaderOption
	// ConfigBuildResult contains the components built from configuration.
	ConfigBuildResult = infraconfig.BuildResult
	// ValidationErrors is a collection of validation errors.
	ValidationErrors = domainconfig.ValidationErrors
)

// Configuration errors.
var (
	ErrConfigNotFound    = domainconfig.ErrConfigNotFound
	ErrInvalidFormat     = domainconfig.ErrInvalidFormat
	ErrValidationFailed  = domainconfig.ErrValidationFailed
	ErrMissingEnvVar     = domainconfig.ErrMissingEnvVar
	ErrBuildFailed       = domainconfig.ErrBuildFailed
	ErrUnsupportedFormat = domainconfig.ErrUnsupportedFormat
)

// NewConfigLoader creates a new configuration loader with default settings.
func NewConfigLoader() *ConfigLoader {
	return infraconfig.NewLoader()
}

// NewConfigLoaderWithOptions creates a loader with the specified options.
func NewConfigLoaderWithOptions(opts ...ConfigLoaderOption) *ConfigLoader {
	return infraconfig.NewLoaderWithOptions(opts...)
}

// ConfigWithStrictEnv fails loading on unset environment variables.
func ConfigWithStrictEnv(enabled bool) ConfigLoaderOption {
	return infraconfig.WithStrictEnv(enabled)
}

// ConfigWithValidation enables or disables configuration validation.
func ConfigWithValidation(enabled bool) ConfigLoaderOption {
	return infraconfig.WithValidation(enabled)
}

// DefaultConfig returns a configuration with every optional field filled in.
func DefaultConfig() Config {
	return domainconfig.Defaults()
}

// ConfigSchemaJSON returns the configuration JSON Schema as a JSON string.
func ConfigSchemaJSON() (string, error) {
	return infraconfig.SchemaJSON()
}

// Engine is a dispatcher together with the components it was built from.
type Engine struct {
	*Dispatcher

	// Recipients resolves gates to recipients.
	Recipients *RecipientResolver
	// Store is the preference store behind Recipients.
	Store preference.AdminStore

	components *infraconfig.BuildResult
}

// Close releases store connections and flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	return e.components.Close(ctx)
}

// BuildOption configures BuildFromConfig.
type BuildOption func(*infraconfig.Builder)

// WithDryRun replaces the configured channel with a console channel
// writing one JSON line per message to w.
func WithDryRun(w io.Writer) BuildOption {
	return func(b *infraconfig.Builder) {
		b.WithDryRun(w)
	}
}

// BuildFromConfig opens the store, channel and telemetry described by cfg
// and wires a dispatcher over them. Call Close when done.
func BuildFromConfig(ctx context.Context, cfg *Config, opts ...BuildOption) (*Engine, error) {
	builder := infraconfig.NewBuilder(cfg)
	for _, opt := range opts {
		opt(builder)
	}

	components, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	recipients := application.NewRecipientResolver(components.Store, components.Normalizer)
	dispatcher, err := application.NewDispatcher(application.DispatcherConfig{
		Recipients:     recipients,
		Channel:        components.Channel,
		MaxConcurrency: components.MaxConcurrency,
		Metrics:        components.Metrics,
		Tracer:         components.Tracing.Tracer(),
	})
	if err != nil {
		_ = components.Close(ctx)
		return nil, err
	}

	return &Engine{
		Dispatcher: dispatcher,
		Recipients: recipients,
		Store:      components.Store,
		components: components,
	}, nil
}
