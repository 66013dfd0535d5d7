package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-rooms/internal/config"
	"github.com/vovakirdan/wirechat-rooms/internal/log"
	"github.com/vovakirdan/wirechat-rooms/internal/rooms"
)

func newConfig(driver, path string) *config.Config {
	cfg := config.Default()
	cfg.Storage = config.Storage{Driver: driver, Path: path}
	return &cfg
}

func TestNewWithEachDriver(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"memory", newConfig(config.DriverMemory, "")},
		{"sqlite", newConfig(config.DriverSQLite, filepath.Join(dir, "rooms.db"))},
		{"badger", newConfig(config.DriverBadger, filepath.Join(dir, "badger"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			a, err := New(ctx, tt.cfg, log.Nop())
			req.NoError(err)
			defer func() { req.NoError(a.Close()) }()

			user, err := a.Users.CreateUser(ctx, "john@example.com", "John", "password123")
			req.NoError(err)

			res := a.Rooms.CreateRoom(ctx, rooms.CreateRoomInput{Name: "General", UserID: user.ID})
			req.Equal(http.StatusCreated, res.StatusCode())
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), newConfig("postgres", "x"), log.Nop())
	require.Error(t, err)
}

func TestNewWithRedisCache(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := newConfig(config.DriverMemory, "")
	cfg.Cache.RedisAddr = mr.Addr()
	cfg.Cache.Prefix = "apptest"

	a, err := New(ctx, cfg, log.Nop())
	req.NoError(err)
	defer func() { req.NoError(a.Close()) }()

	user, err := a.Users.CreateUser(ctx, "john@example.com", "John", "password123")
	req.NoError(err)

	res := a.Rooms.CreateRoom(ctx, rooms.CreateRoomInput{Name: "General", UserID: user.ID})
	req.True(res.OK())
	req.True(mr.Exists("apptest:user:id:1"))
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := newConfig(config.DriverMemory, "")
	cfg.Cache.RedisAddr = addr

	_, err := New(context.Background(), cfg, log.Nop())
	require.ErrorContains(t, err, "connect redis")
}
