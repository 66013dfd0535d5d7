// Package cli implements roomctl, the operator command line for the room service.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-rooms/internal/app"
	"github.com/vovakirdan/wirechat-rooms/internal/config"
	"github.com/vovakirdan/wirechat-rooms/internal/log"
	"github.com/vovakirdan/wirechat-rooms/internal/result"
)

// StatusError reports a failed envelope. Its body has already been printed.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("operation failed with status %d", e.Status)
}

type options struct {
	configPath string
	logLevel   string
	driver     string
	path       string
	redisAddr  string
}

// CLI holds the state of one roomctl invocation.
type CLI struct {
	stdout io.Writer
	stderr io.Writer

	opts options
	app  *app.App
	log  *zerolog.Logger
}

// New returns a CLI printing envelopes to stdout and logs to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{stdout: stdout, stderr: stderr, log: log.Nop()}
}

// Run executes roomctl with args and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	root := c.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
	if err == nil {
		return 0
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
	}
	return 1
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "Manage chat rooms and their members",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "path to config file (default ./roomctl.yaml)")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&c.opts.driver, "driver", "", "storage driver: sqlite, badger, memory")
	flags.StringVar(&c.opts.path, "path", "", "storage path (sqlite file or badger directory)")
	flags.StringVar(&c.opts.redisAddr, "redis-addr", "", "redis address for the user cache")

	root.AddCommand(
		c.healthCommand(),
		c.roomsCommand(),
		c.usersCommand(),
		c.chatsCommand(),
	)
	return root
}

func (c *CLI) setup(ctx context.Context) error {
	cfg, path, err := config.Load(log.NewWithWriter(c.stderr, c.opts.logLevel), c.opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(config.Config{
		LogLevel: c.opts.logLevel,
		Storage:  config.Storage{Driver: c.opts.driver, Path: c.opts.path},
		Cache:    config.Cache{RedisAddr: c.opts.redisAddr},
	})

	c.log = log.NewWithWriter(c.stderr, cfg.LogLevel)
	c.log.Debug().Str("config", path).Msg("configuration loaded")

	a, err := app.New(ctx, &cfg, c.log)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

// emit prints the envelope of res and logs the outcome of op.
func emit[T any](c *CLI, op string, res result.Result[T]) error {
	status := res.StatusCode()

	var ev *zerolog.Event
	switch {
	case status >= 500:
		ev = c.log.Error().Err(res.Cause())
	case !res.OK():
		ev = c.log.Warn().Str("reason", res.ErrorMessage())
	default:
		ev = c.log.Info()
	}
	ev.Str("op", op).Str("op_id", uuid.NewString()).Int("status", status).Msg("operation finished")

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Envelope()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if !res.OK() {
		return &StatusError{Status: status}
	}
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
