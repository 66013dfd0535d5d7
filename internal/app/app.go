package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-rooms/internal/config"
	"github.com/vovakirdan/wirechat-rooms/internal/directory"
	"github.com/vovakirdan/wirechat-rooms/internal/rooms"
	"github.com/vovakirdan/wirechat-rooms/internal/store"
	"github.com/vovakirdan/wirechat-rooms/internal/store/badger"
	"github.com/vovakirdan/wirechat-rooms/internal/store/memory"
	"github.com/vovakirdan/wirechat-rooms/internal/store/sqlite"
)

const redisPingTimeout = 3 * time.Second

// App wires the record store, user directory and room service together.
type App struct {
	Rooms *rooms.Service
	// Users is the writable directory. Lookups made by Rooms may go through the cache.
	Users *directory.RecordDirectory

	records store.RecordStore
	redis   *redis.Client
	log     *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	records, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Debug().Str("driver", cfg.Storage.Driver).Str("path", cfg.Storage.Path).Msg("store initialized")

	users := directory.NewRecordDirectory(records)
	var lookups directory.UserDirectory = users

	var client *redis.Client
	if cfg.Cache.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			_ = records.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.RedisAddr, err)
		}

		lookups = directory.NewCachedDirectory(users, client, directory.CacheConfig{
			Prefix: cfg.Cache.Prefix,
			TTL:    cfg.Cache.TTL,
		}, logger)
		logger.Debug().Str("addr", cfg.Cache.RedisAddr).Msg("user cache enabled")
	}

	return &App{
		Rooms:   rooms.NewService(lookups, records),
		Users:   users,
		records: records,
		redis:   client,
		log:     logger,
	}, nil
}

func openStore(cfg config.Storage) (store.RecordStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	case config.DriverBadger:
		return badger.New(cfg.Path)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases the store and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.records != nil {
		if err := a.records.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to close resources")
	}
	return err
}
