package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	domainconfig "github.com/felixgeelhaar/notify-go/domain/config"
	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/domain/template"
	"github.com/felixgeelhaar/notify-go/infrastructure/channel/cloudapi"
	"github.com/felixgeelhaar/notify-go/infrastructure/channel/console"
	"github.com/felixgeelhaar/notify-go/infrastructure/observability"
	"github.com/felixgeelhaar/notify-go/infrastructure/phone"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/mongodb"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/redis"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/notify-go/infrastructure/telemetry"
)

// Builder builds infrastructure components from configuration.
type Builder struct {
	config *domainconfig.Config
	dryRun io.Writer
}

// NewBuilder creates a new configuration builder.
func NewBuilder(config *domainconfig.Config) *Builder {
	return &Builder{config: config}
}

// WithDryRun replaces the configured channel with a console channel
// writing to w.
func (b *Builder) WithDryRun(w io.Writer) *Builder {
	b.dryRun = w
	return b
}

// BuildResult contains the built components from configuration.
type BuildResult struct {
	// Store is the preference store, wrapped by the cache when enabled.
	Store preference.AdminStore
	// Channel is the outbound message channel.
	Channel notification.Channel
	// Normalizer normalizes phone numbers in the configured region.
	Normalizer *phone.Normalizer
	// Tracing owns the tracer provider.
	Tracing *observability.Provider
	// Metrics records dispatch metrics.
	Metrics telemetry.Metrics
	// MaxConcurrency bounds in-flight sends per dispatch.
	MaxConcurrency int

	closers []func(context.Context) error
}

// Close releases store connections and flushes telemetry.
func (r *BuildResult) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build builds every component. On error, anything already opened is closed.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	result := &BuildResult{
		Normalizer:     phone.NewNormalizer(b.config.Phone.DefaultRegion),
		MaxConcurrency: b.config.Dispatch.MaxConcurrency,
	}

	fail := func(stage string, err error) (*BuildResult, error) {
		_ = result.Close(ctx)
		return nil, fmt.Errorf("%w: building %s: %w", domainconfig.ErrBuildFailed, stage, err)
	}

	store, closeStore, err := b.BuildStore(ctx)
	if err != nil {
		return fail("storage", err)
	}
	result.Store = store
	if closeStore != nil {
		result.closers = append(result.closers, closeStore)
	}

	if result.Channel, err = b.BuildChannel(); err != nil {
		return fail("channel", err)
	}

	if result.Tracing, err = b.BuildTracing(); err != nil {
		return fail("telemetry", err)
	}
	result.closers = append(result.closers, result.Tracing.Shutdown)

	result.Metrics = telemetry.NoopMetricsProvider{}
	if b.config.Telemetry.Enabled {
		mp := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
		if err := mp.Error(); err != nil {
			return fail("metrics", err)
		}
		result.Metrics = mp
	}

	return result, nil
}

// BuildStore opens the configured preference store. The returned closer
// may be nil.
func (b *Builder) BuildStore(ctx context.Context) (preference.AdminStore, func(context.Context) error, error) {
	cfg := b.config.Storage

	var (
		store  preference.AdminStore
		closer func(context.Context) error
	)

	switch cfg.Driver {
	case domainconfig.DriverMemory, "":
		mem := memory.NewPreferenceStore()
		if cfg.SeedFile != "" {
			if err := mem.LoadSeedFile(cfg.SeedFile); err != nil {
				return nil, nil, err
			}
		}
		store = mem

	case domainconfig.DriverSQLite:
		var opts []sqlite.Option
		if cfg.DSN != "" {
			opts = append(opts, sqlite.WithDSN(cfg.DSN))
		}
		s, err := sqlite.NewPreferenceStore(sqlite.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, err
		}
		store = s
		closer = func(context.Context) error { return s.Close() }

	case domainconfig.DriverPostgres:
		pgCfg := postgres.DefaultConfig()
		postgres.WithDSN(cfg.DSN)(&pgCfg)
		if cfg.Schema != "" {
			postgres.WithSchema(cfg.Schema)(&pgCfg)
		}
		pool, err := postgres.NewPool(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.NewPreferenceStore(pool, pgCfg.Schema)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store = s
		closer = func(context.Context) error { pool.Close(); return nil }

	case domainconfig.DriverMongoDB:
		opts := []mongodb.ConfigOption{mongodb.WithURI(cfg.DSN)}
		if cfg.Database != "" {
			opts = append(opts, mongodb.WithDatabase(cfg.Database))
		}
		client, err := mongodb.NewClient(ctx, opts...)
		if err != nil {
			return nil, nil, err
		}
		store = mongodb.NewPreferenceStore(client, mongodb.DefaultCollection)
		closer = client.Close

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	if !cfg.Cache.Enabled {
		return store, closer, nil
	}

	cacheOpts := []redis.ConfigOption{
		redis.WithPassword(cfg.Cache.Password),
		redis.WithDB(cfg.Cache.DB),
	}
	if cfg.Cache.Address != "" {
		cacheOpts = append(cacheOpts, redis.WithAddress(cfg.Cache.Address))
	}
	if ttl := cfg.Cache.TTL.Duration(); ttl > 0 {
		cacheOpts = append(cacheOpts, redis.WithTTL(ttl))
	}
	if cfg.Cache.KeyPrefix != "" {
		cacheOpts = append(cacheOpts, redis.WithKeyPrefix(cfg.Cache.KeyPrefix))
	}

	cache, err := redis.NewPreferenceCache(store, redis.DefaultConfig(), cacheOpts...)
	if err != nil {
		if closer != nil {
			_ = closer(ctx)
		}
		return nil, nil, err
	}

	return cache, func(ctx context.Context) error {
		err := cache.Close()
		if closer != nil {
			err = errors.Join(err, closer(ctx))
		}
		return err
	}, nil
}

// BuildChannel builds the configured channel, or a console channel in
// dry-run mode.
func (b *Builder) BuildChannel() (notification.Channel, error) {
	if b.dryRun != nil {
		return console.New(b.dryRun), nil
	}

	cfg := b.config.Channel
	switch cfg.Provider {
	case domainconfig.ProviderConsole:
		return console.New(nil), nil
	case domainconfig.ProviderCloudAPI:
		return cloudapi.New(CloudAPIConfig(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported channel provider %q", cfg.Provider)
	}
}

// CloudAPIConfig maps channel configuration onto the HTTPS client config.
func CloudAPIConfig(cfg domainconfig.ChannelConfig) cloudapi.Config {
	out := cloudapi.Config{
		BaseURL:                 cfg.BaseURL,
		APIVersion:              cfg.APIVersion,
		PhoneNumberID:           cfg.PhoneNumberID,
		AccessToken:             cfg.AccessToken,
		AppSecret:               cfg.AppSecret,
		Language:                cfg.Language,
		Timeout:                 cfg.Timeout.Duration(),
		MaxConcurrent:           cfg.MaxConcurrent,
		CircuitBreakerEnabled:   cfg.CircuitBreaker.Enabled,
		CircuitBreakerThreshold: cfg.CircuitBreaker.Threshold,
		CircuitBreakerTimeout:   cfg.CircuitBreaker.Timeout.Duration(),
	}
	if len(cfg.Templates) > 0 {
		out.Templates = make(map[template.Kind]string, len(cfg.Templates))
		for k, name := range cfg.Templates {
			out.Templates[template.Kind(k)] = name
		}
	}
	return out
}

// BuildTracing builds the tracer provider.
func (b *Builder) BuildTracing() (*observability.Provider, error) {
	cfg := b.config.Telemetry
	if !cfg.Enabled {
		return observability.NewNoopProvider(), nil
	}

	opts := []observability.Option{
		observability.WithServiceVersion(b.config.Version),
		observability.WithSampleRate(cfg.SampleRate),
	}
	if cfg.ServiceName != "" {
		opts = append(opts, observability.WithServiceName(cfg.ServiceName))
	}
	if cfg.Environment != "" {
		opts = append(opts, observability.WithEnvironment(cfg.Environment))
	}

	switch cfg.Exporter {
	case domainconfig.ExporterOTLP:
		opts = append(opts, observability.WithOTLP(cfg.Endpoint, cfg.Insecure))
	case domainconfig.ExporterStdout:
		opts = append(opts, observability.WithStdout(nil))
	case domainconfig.ExporterNoop, "":
		return observability.NewNoopProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported telemetry exporter %q", cfg.Exporter)
	}

	return observability.New(opts...)
}
