package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheConfig controls the Redis read-through cache.
type CacheConfig struct {
	Prefix string
	TTL    time.Duration
}

// DefaultCacheConfig returns the defaults used when config leaves values empty.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Prefix: "rooms",
		TTL:    5 * time.Minute,
	}
}

// CachedDirectory serves lookups from Redis and falls back to the wrapped directory.
// Unknown users are never cached; Redis failures only cost a cache miss.
type CachedDirectory struct {
	next   UserDirectory
	client *redis.Client
	cfg    CacheConfig
	log    *zerolog.Logger
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next UserDirectory, client *redis.Client, cfg CacheConfig, logger *zerolog.Logger) *CachedDirectory {
	def := DefaultCacheConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CachedDirectory{next: next, client: client, cfg: cfg, log: logger}
}

// BuildKeyByID returns the cache key for a user id.
func (c *CachedDirectory) BuildKeyByID(id int64) string {
	return fmt.Sprintf("%s:user:id:%s", c.cfg.Prefix, strconv.FormatInt(id, 10))
}

// BuildKeyByEmail returns the cache key for an email.
func (c *CachedDirectory) BuildKeyByEmail(email string) string {
	return fmt.Sprintf("%s:user:email:%s", c.cfg.Prefix, normalizeEmail(email))
}

// GetUserByID implements UserDirectory.
func (c *CachedDirectory) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return c.lookup(ctx, c.BuildKeyByID(id), func() (*User, error) {
		return c.next.GetUserByID(ctx, id)
	})
}

// GetUserByEmail implements UserDirectory.
func (c *CachedDirectory) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.lookup(ctx, c.BuildKeyByEmail(email), func() (*User, error) {
		return c.next.GetUserByEmail(ctx, email)
	})
}

func (c *CachedDirectory) lookup(ctx context.Context, key string, load func() (*User, error)) (*User, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var u User
		if jsonErr := json.Unmarshal(data, &u); jsonErr == nil {
			return &u, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping unreadable cached user")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
	}

	u, err := load()
	if err != nil {
		return nil, err
	}

	c.store(ctx, u)
	return u, nil
}

func (c *CachedDirectory) store(ctx context.Context, u *User) {
	data, err := json.Marshal(u)
	if err != nil {
		c.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to encode user for cache")
		return
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.BuildKeyByID(u.ID), data, c.cfg.TTL)
	pipe.Set(ctx, c.BuildKeyByEmail(u.Email), data, c.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Int64("user_id", u.ID).Msg("user cache write failed")
	}
}
