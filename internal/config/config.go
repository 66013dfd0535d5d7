package config

import "time"

// Storage driver names accepted in storage.driver.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Config holds roomctl configuration values.
type Config struct {
	LogLevel string  `mapstructure:"log_level" yaml:"log_level"`
	Storage  Storage `mapstructure:"storage" yaml:"storage"`
	Cache    Cache   `mapstructure:"cache" yaml:"cache"`
}

// Storage selects the record store adapter.
type Storage struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// Path is a file for sqlite and a directory for badger. Ignored by memory.
	Path string `mapstructure:"path" yaml:"path"`
}

// Cache configures the Redis user cache. An empty RedisAddr disables it.
type Cache struct {
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Prefix        string        `mapstructure:"prefix" yaml:"prefix"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Storage: Storage{
			Driver: DriverSQLite,
			Path:   "rooms.db",
		},
		Cache: Cache{
			TTL:    5 * time.Minute,
			Prefix: "rooms",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Storage.Path != "" {
		c.Storage.Path = other.Storage.Path
	}
	if other.Cache.RedisAddr != "" {
		c.Cache.RedisAddr = other.Cache.RedisAddr
	}
	if other.Cache.RedisPassword != "" {
		c.Cache.RedisPassword = other.Cache.RedisPassword
	}
	if other.Cache.RedisDB != 0 {
		c.Cache.RedisDB = other.Cache.RedisDB
	}
	if other.Cache.TTL != 0 {
		c.Cache.TTL = other.Cache.TTL
	}
	if other.Cache.Prefix != "" {
		c.Cache.Prefix = other.Cache.Prefix
	}
}
