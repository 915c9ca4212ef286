// Package config provides domain models for notify-go configuration.
package config

import "time"

// Channel providers.
const (
	ProviderCloudAPI = "cloudapi"
	ProviderConsole  = "console"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Telemetry exporters.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNoop   = "noop"
)

// Config represents the complete notify-go configuration.
type Config struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name" yaml:"name"`
	// Version is the configuration schema version.
	Version string `json:"version" yaml:"version"`

	// Phone configures number normalization.
	Phone PhoneConfig `json:"phone,omitempty" yaml:"phone,omitempty"`
	// Channel configures the outbound message channel.
	Channel ChannelConfig `json:"channel" yaml:"channel"`
	// Storage configures the preference store.
	Storage StorageConfig `json:"storage" yaml:"storage"`
	// Dispatch configures the dispatch engine.
	Dispatch DispatchConfig `json:"dispatch,omitempty" yaml:"dispatch,omitempty"`
	// Logging configures structured logging.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Telemetry configures metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// PhoneConfig configures number normalization.
type PhoneConfig struct {
	// DefaultRegion is the ISO 3166-1 alpha-2 region local numbers are parsed in.
	DefaultRegion string `json:"default_region,omitempty" yaml:"default_region,omitempty"`
}

// ChannelConfig configures the outbound message channel.
type ChannelConfig struct {
	// Provider is cloudapi or console.
	Provider string `json:"provider" yaml:"provider"`
	// BaseURL is the API root, e.g. https://graph.facebook.com.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// APIVersion is the API version path segment.
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	// PhoneNumberID is the sending phone number identifier.
	PhoneNumberID string `json:"phone_number_id,omitempty" yaml:"phone_number_id,omitempty"`
	// AccessToken is the bearer token.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	// AppSecret enables appsecret_proof when set.
	AppSecret string `json:"app_secret,omitempty" yaml:"app_secret,omitempty"`
	// Language is the template language code.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	// Timeout is the per-request timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxConcurrent caps open connections to the channel host. 0 is unlimited.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// CircuitBreaker configures the channel circuit breaker.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	// Templates maps template kinds to remote template names.
	Templates map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Enabled enables the circuit breaker.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Threshold is consecutive failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// StorageConfig configures the preference store.
type StorageConfig struct {
	// Driver is memory, sqlite, postgres or mongodb.
	Driver string `json:"driver" yaml:"driver"`
	// DSN is the connection string or file path.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// Database is the MongoDB database name.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	// Schema is the PostgreSQL schema.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	// SeedFile loads users into the memory store at startup.
	SeedFile string `json:"seed_file,omitempty" yaml:"seed_file,omitempty"`
	// Cache configures the Redis read-through cache.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// CacheConfig configures the Redis read-through cache.
type CacheConfig struct {
	// Enabled enables the cache.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Address is the Redis host:port.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// Password is the Redis password.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// DB is the Redis database number.
	DB int `json:"db,omitempty" yaml:"db,omitempty"`
	// TTL is how long cached lookups live.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// DispatchConfig configures the dispatch engine.
type DispatchConfig struct {
	// MaxConcurrency bounds in-flight sends per dispatch. 0 is unbounded.
	MaxConcurrency int `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is json or console.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	// Enabled enables telemetry.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Exporter is stdout, otlp or noop.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP collector endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	// Insecure disables TLS for OTLP.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// ServiceName is the reported service name.
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	// Environment is the deployment environment.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`
	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// Defaults returns a configuration with every optional field filled in.
func Defaults() Config {
	return Config{
		Name:    "notify",
		Version: "1.0",
		Phone:   PhoneConfig{DefaultRegion: "AU"},
		Channel: ChannelConfig{
			Provider:   ProviderConsole,
			BaseURL:    "https://graph.facebook.com",
			APIVersion: "v21.0",
			Language:   "en",
			Timeout:    Duration(10 * time.Second),
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:   true,
				Threshold: 5,
				Timeout:   Duration(30 * time.Second),
			},
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Cache: CacheConfig{
				TTL:       Duration(time.Minute),
				KeyPrefix: "notify:",
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Telemetry: TelemetryConfig{
			Exporter:    ExporterNoop,
			ServiceName: "notify",
			SampleRate:  1.0,
		},
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	// Handle null
	if string(b) == "null" {
		return nil
	}

	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	// Parse duration
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
