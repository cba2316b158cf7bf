// quietctl queries the Windows user notification state and reads or toggles
// focus assist.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"winquiet/internal/config"
	"winquiet/internal/logging"
	"winquiet/internal/metrics"
	"winquiet/pkg/quiet"
)

// newClient is replaced in tests.
var newClient = func(opts ...quiet.Option) *quiet.Client {
	return quiet.New(opts...)
}

// exitError carries a non-zero exit status that is not a failure, such as
// "not fullscreen".
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app is the state shared by all commands of one invocation.
type app struct {
	configPath string
	logLevel   string
	metrics    bool

	cfg    *config.Config
	log    *logging.Logger
	stats  *metrics.QuietMetrics
	client *quiet.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.finish(stderr)

	var exit *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.code
	default:
		fmt.Fprintf(stderr, "quietctl: %v\n", err)
		return 1
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "quietctl",
		Short: "Query notification state and control focus assist",
		Long: `quietctl reports whether the user can be interrupted and reads or
toggles focus assist (quiet hours) on Windows 10 and later.

Focus assist is driven through undocumented shell notifications; the
notification state comes from SHQueryUserNotificationState.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: "+config.ConfigPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "Print metrics in Prometheus text format to stderr on exit")

	root.AddCommand(
		newNotificationStateCmd(a),
		newFullscreenCmd(a),
		newFocusAssistCmd(a),
		newStatusCmd(a),
		newWNFCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger and client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.metrics {
		cfg.Metrics.Enabled = true
	}
	a.cfg = cfg

	log, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.log = log

	opts := []quiet.Option{quiet.WithConfig(cfg), quiet.WithLogger(log)}
	if cfg.Metrics.Enabled {
		a.stats = metrics.NewQuietMetrics(nil)
		opts = append(opts, quiet.WithMetrics(a.stats))
	}
	a.client = newClient(opts...)
	return nil
}

// finish prints metrics and releases the log file.
func (a *app) finish(stderr io.Writer) {
	if a.stats != nil {
		if err := a.stats.Registry().WritePrometheus(stderr); err != nil {
			fmt.Fprintf(stderr, "quietctl: write metrics: %v\n", err)
		}
	}
	if a.log != nil {
		a.log.Close()
	}
}

func newLogger(c config.LoggingConfig, stderr io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	lc := &logging.Config{
		Level:      level,
		Format:     format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
		Component:  "quietctl",
	}
	if c.Output == "stderr" {
		lc.Writer = stderr
	}
	return logging.New(lc)
}
