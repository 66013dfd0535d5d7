package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "roomctl.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, Default())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), "driver: sqlite") {
		t.Fatalf("unexpected default config:\n%s", data)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomctl.yaml")
	content := `log_level: debug
storage:
  driver: badger
  path: /var/lib/rooms
cache:
  redis_addr: localhost:6379
  ttl: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROOMCTL_CACHE_PREFIX", "staging")
	t.Setenv("ROOMCTL_LOG_LEVEL", "warn")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"log level from env", cfg.LogLevel, "warn"},
		{"driver from file", cfg.Storage.Driver, DriverBadger},
		{"path from file", cfg.Storage.Path, "/var/lib/rooms"},
		{"redis addr from file", cfg.Cache.RedisAddr, "localhost:6379"},
		{"ttl from file", cfg.Cache.TTL, 30 * time.Second},
		{"prefix from env", cfg.Cache.Prefix, "staging"},
		{"redis db default", cfg.Cache.RedisDB, 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomctl.yaml")
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{
		Storage: Storage{Driver: DriverMemory},
		Cache:   Cache{RedisDB: 3},
	})

	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "rooms.db" {
		t.Fatalf("path overwritten by zero value: %q", cfg.Storage.Path)
	}
	if cfg.Cache.RedisDB != 3 {
		t.Fatalf("redis db = %d", cfg.Cache.RedisDB)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level overwritten by zero value: %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory without path", func(c *Config) { c.Storage = Storage{Driver: DriverMemory} }, false},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, true},
		{"badger without path", func(c *Config) { c.Storage = Storage{Driver: DriverBadger} }, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
