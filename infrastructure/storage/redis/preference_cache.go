package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// ErrConnectionFailed indicates Redis could not be reached.
var ErrConnectionFailed = errors.New("redis connection failed")

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	// Errors counts Redis failures that fell through to the backing store.
	Errors int64
}

// PreferenceCache caches FindUsersWithFlag results in Redis.
//
// Redis failures never fail a lookup; the backing store answers instead.
// Writes through SaveUser and SetFlag drop every cached flag list.
type PreferenceCache struct {
	next      preference.Store
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64
}

// NewPreferenceCache connects to Redis and wraps next.
func NewPreferenceCache(next preference.Store, cfg Config, opts ...ConfigOption) (*PreferenceCache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return NewPreferenceCacheFromClient(next, client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewPreferenceCacheFromClient wraps next using an existing Redis client.
func NewPreferenceCacheFromClient(next preference.Store, client *redis.Client, keyPrefix string, ttl time.Duration) *PreferenceCache {
	return &PreferenceCache{
		next:      next,
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *PreferenceCache) flagKey(flag preference.Flag) string {
	return c.keyPrefix + "users:" + string(flag)
}

// FindUsersWithFlag serves from Redis when possible.
func (c *PreferenceCache) FindUsersWithFlag(ctx context.Context, flag preference.Flag) ([]preference.User, error) {
	if !flag.Valid() {
		return nil, preference.ErrUnknownFlag
	}

	key := c.flagKey(flag)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var users []preference.User
		if jsonErr := json.Unmarshal(raw, &users); jsonErr == nil {
			c.hits.Add(1)
			return users, nil
		}
		c.errs.Add(1)
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
	default:
		c.errs.Add(1)
	}

	users, err := c.next.FindUsersWithFlag(ctx, flag)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(users); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.errs.Add(1)
		}
	}
	return users, nil
}

// SaveUser writes through to the backing store and invalidates the cache.
func (c *PreferenceCache) SaveUser(ctx context.Context, u preference.User) error {
	admin, ok := c.next.(preference.Admin)
	if !ok {
		return errors.ErrUnsupported
	}
	if err := admin.SaveUser(ctx, u); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

// SetFlag writes through to the backing store and invalidates the cache.
func (c *PreferenceCache) SetFlag(ctx context.Context, userID string, flag preference.Flag, enabled bool) error {
	admin, ok := c.next.(preference.Admin)
	if !ok {
		return errors.ErrUnsupported
	}
	if err := admin.SetFlag(ctx, userID, flag, enabled); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

// Invalidate drops every cached flag list.
func (c *PreferenceCache) Invalidate(ctx context.Context) error {
	flags := preference.AllFlags()
	keys := make([]string, len(flags))
	for i, f := range flags {
		keys[i] = c.flagKey(f)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.errs.Add(1)
		return errors.Join(ErrConnectionFailed, err)
	}
	return nil
}

// Stats returns cache statistics.
func (c *PreferenceCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errs.Load(),
	}
}

// Close closes the Redis connection.
func (c *PreferenceCache) Close() error {
	return c.client.Close()
}

var _ preference.AdminStore = (*PreferenceCache)(nil)
