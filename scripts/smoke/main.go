// Command smoke drives a full room lifecycle through roomctl against a throwaway store.
package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/wirechat-rooms/internal/cli"
	"github.com/vovakirdan/wirechat-rooms/internal/log"
)

type step struct {
	args     []string
	wantCode int
}

func main() {
	driver := flag.String("driver", "sqlite", "storage driver: sqlite, badger, memory")
	redisAddr := flag.String("redis-addr", "", "optional redis address for the user cache")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	logger := log.New("info")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "roomctl-smoke-")
	if err != nil {
		logger.Fatal().Err(err).Msg("create temp dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "rooms.db")
	if *driver == "badger" {
		path = filepath.Join(dir, "badger")
	}
	base := []string{
		"--config", filepath.Join(dir, "roomctl.yaml"),
		"--driver", *driver,
		"--path", path,
		"--log-level", "warn",
	}
	if *redisAddr != "" {
		base = append(base, "--redis-addr", *redisAddr)
	}

	steps := []step{
		{[]string{"health"}, 0},
		{[]string{"users", "add", "--email", "owner@example.com", "--name", "Owner", "--password", "password123"}, 0},
		{[]string{"users", "add", "--email", "guest@example.com", "--name", "Guest", "--password", "password123"}, 0},
		{[]string{"rooms", "create", "--name", "smoke", "--user-id", "1"}, 0},
		{[]string{"rooms", "join", "1", "--email", "guest@example.com"}, 0},
		{[]string{"rooms", "join", "1", "--email", "guest@example.com"}, 1},
		{[]string{"chats", "post", "1", "--email", "guest@example.com", "--content", "hello from smoke test"}, 0},
		{[]string{"rooms", "chats", "1"}, 0},
		{[]string{"rooms", "leave", "1", "--email", "guest@example.com"}, 0},
		{[]string{"rooms", "delete", "1"}, 0},
		{[]string{"rooms", "get", "1"}, 1},
	}

	// memory does not survive between invocations
	if *driver == "memory" {
		steps = steps[:1]
	}

	for _, s := range steps {
		var stdout, stderr bytes.Buffer
		code := cli.New(&stdout, &stderr).Run(ctx, append(append([]string{}, base...), s.args...))
		if code != s.wantCode {
			logger.Fatal().
				Strs("args", s.args).
				Int("code", code).
				Str("stdout", stdout.String()).
				Str("stderr", stderr.String()).
				Msg("unexpected exit code")
		}
		logger.Info().Strs("args", s.args).Int("code", code).Msg("ok")
	}
	logger.Info().Str("driver", *driver).Msg("smoke test passed")
}
