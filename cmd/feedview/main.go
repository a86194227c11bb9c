package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/feedview/internal/adapters/console"
	"github.com/bft-labs/feedview/internal/cliconfig"
	"github.com/bft-labs/feedview/pkg/feedview"
	"github.com/bft-labs/feedview/pkg/log"
	"github.com/bft-labs/feedview/plugins/metricsserver"
)

const longHelp = `Show the entries of your feed reader, newest first, and keep the list live
while the sync engine runs.

Entries come from a JSON file or a PostgreSQL table. Sync status comes from a
JSON file or Redis, and refresh requests go to the sync engine over HTTP or
Redis. Configure via file, env (FEEDVIEW_*), or flags.

Interactive commands (stdin):
  open N, o N   open the link of entry N
  refresh, r    ask the sync engine for an immediate pass
  list, l       draw the list again
  status, s     show viewer and sync state
  quit, q       exit`

var exampleUsage = strings.TrimSpace(`
  feedview --entries-file ~/.feeds/entries.json --status-source file --status-file ~/.feeds/status.json
  feedview --entries-source postgres --postgres-dsn postgres://localhost/feeds --trigger http --sync-url http://localhost:8080
  feedview --config $HOME/.feedview/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "feedview",
		Short:         "Live list of feed entries with a sync indicator",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// FEEDVIEW_* override the file but not explicit flags
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.feedview/config.toml)")

	f.StringVar(&cfg.EntriesSource, "entries-source", cfg.EntriesSource, "where entries come from: file or postgres")
	f.StringVar(&cfg.EntriesFile, "entries-file", cfg.EntriesFile, "JSON file holding the entries")
	f.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	f.StringVar(&cfg.PostgresChannel, "postgres-channel", cfg.PostgresChannel, "LISTEN channel announcing entry changes")

	f.StringVar(&cfg.StatusSource, "status-source", cfg.StatusSource, "where sync status comes from: none, file or redis")
	f.StringVar(&cfg.StatusFile, "status-file", cfg.StatusFile, "JSON file holding the sync status")
	f.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for status and trigger")
	f.StringVar(&cfg.RedisStatusKey, "redis-status-key", cfg.RedisStatusKey, "Redis hash holding the sync status")
	f.StringVar(&cfg.RedisStatusChannel, "redis-status-channel", cfg.RedisStatusChannel, "Redis channel announcing status changes")
	f.StringVar(&cfg.RedisTriggerChannel, "redis-trigger-channel", cfg.RedisTriggerChannel, "Redis channel receiving refresh requests")

	f.StringVar(&cfg.Trigger, "trigger", cfg.Trigger, "how refresh requests are sent: none, http or redis")
	f.StringVar(&cfg.SyncURL, "sync-url", cfg.SyncURL, "base URL of the sync service")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for the sync service")
	f.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "HTTP timeout for refresh requests")
	f.IntVar(&cfg.TriggerMaxRetries, "trigger-max-retries", cfg.TriggerMaxRetries, "attempts per refresh request")

	f.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "coalescing window for file change events")
	f.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "pending notification capacity")
	if err := f.MarkHidden("queue-size"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	f.IntVar(&cfg.Limit, "limit", cfg.Limit, "maximum entries shown (0 shows all)")
	f.StringVar(&cfg.TimeFormat, "time-format", cfg.TimeFormat, "Go time layout of the published column")
	f.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA time zone for dates (default: local)")
	f.StringVar(&cfg.Color, "color", cfg.Color, "color output: auto, always or never")

	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")

	f.BoolVar(&cfg.NoBrowser, "no-browser", cfg.NoBrowser, "print links instead of opening a browser")
	f.BoolVar(&cfg.Once, "once", cfg.Once, "render the list once and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "feedview: %v\n", err)
		os.Exit(1)
	}
}

func run(parent context.Context, cfg cliconfig.Config) error {
	level, _ := log.ParseLevel(cfg.LogLevel)
	format, _ := log.ParseFormat(cfg.LogFormat)
	logger := log.NewZerologAdapter(os.Stderr, format, level)
	logger.Debug("configuration", log.Any("config", cfg.Masked()))

	libCfg, err := cfg.Library()
	if err != nil {
		return err
	}

	colorMode, _ := console.ParseColorMode(cfg.Color)
	renderer := console.NewRenderer(console.Options{Color: colorMode})

	opts := []feedview.Option{
		feedview.WithLogger(logger),
		feedview.WithRenderer(renderer),
	}
	if cfg.NoBrowser {
		opts = append(opts, feedview.WithLinkOpener(console.PrintOpener{}))
	}
	if cfg.MetricsAddr != "" {
		opts = append(opts, metricsserver.WithMetricsServer(cfg.MetricsAddr))
	}

	v, err := feedview.New(libCfg, opts...)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}
	defer func() {
		if err := v.Close(); err != nil {
			logger.Warn("close viewer", log.Err(err))
		}
	}()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := v.Start(ctx); err != nil {
		return fmt.Errorf("start viewer: %w", err)
	}
	if cfg.Once {
		return v.Stop()
	}

	sh := &shell{
		viewer:   v,
		renderer: renderer,
		out:      os.Stdout,
		logger:   logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan string)
	// the scanner blocks on stdin and cannot be cancelled; it exits with the process
	go scanLines(os.Stdin, lines)

	g.Go(func() error {
		return sh.run(gctx, lines)
	})
	g.Go(func() error {
		<-gctx.Done()
		if parent.Err() == nil && ctx.Err() != nil {
			logger.Info("received signal, stopping...")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}

	if err := v.Stop(); err != nil && !errors.Is(err, feedview.ErrNotRunning) {
		return fmt.Errorf("stop viewer: %w", err)
	}
	return nil
}
