package feedview

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bft-labs/feedview/internal/adapters/console"
	"github.com/bft-labs/feedview/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/feedview/internal/adapters/http"
	"github.com/bft-labs/feedview/internal/adapters/memory"
	"github.com/bft-labs/feedview/internal/adapters/postgres"
	redisAdapter "github.com/bft-labs/feedview/internal/adapters/redis"
	"github.com/bft-labs/feedview/internal/ports"
	"github.com/bft-labs/feedview/pkg/log"
)

// adapters holds the collaborators of a viewer and closes the ones it built.
type adapters struct {
	source   ports.DataSource
	monitor  ports.SyncStatusMonitor
	trigger  ports.SyncTrigger
	renderer ports.Renderer
	opener   ports.LinkOpener
	reporter ports.ErrorReporter

	closers []io.Closer
}

func (a *adapters) own(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close closes owned adapters in reverse order of creation.
func (a *adapters) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildAdapters(cfg Config, o options, logger ports.Logger) (*adapters, error) {
	a := &adapters{
		source:   o.source,
		monitor:  o.monitor,
		trigger:  o.trigger,
		renderer: o.renderer,
		opener:   o.opener,
		reporter: o.reporter,
	}
	fail := func(err error) (*adapters, error) {
		a.Close()
		return nil, err
	}

	if a.source == nil {
		switch cfg.EntriesSource {
		case SourceFile:
			f := fs.NewEntryFile(cfg.EntriesFile, fs.EntryFileOptions{
				Debounce: cfg.Debounce,
				Logger:   log.Component(logger, "entries"),
			})
			a.own(f)
			a.source = f
		case SourcePostgres:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			store, err := postgres.Open(ctx, postgres.Options{
				DSN:     cfg.PostgresDSN,
				Channel: cfg.PostgresChannel,
				Logger:  log.Component(logger, "postgres"),
			})
			if err != nil {
				return fail(err)
			}
			a.own(store)
			if err := store.Ensure(ctx); err != nil {
				return fail(err)
			}
			a.source = store
		default:
			store := memory.NewStore()
			a.own(store)
			a.source = store
		}
	}

	var redisClient *goredis.Client
	redisFor := func() (*goredis.Client, error) {
		if redisClient != nil {
			return redisClient, nil
		}
		c, err := redisAdapter.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		redisClient = c
		a.own(c)
		return c, nil
	}

	if a.monitor == nil {
		switch cfg.StatusSource {
		case StatusFile:
			m := fs.NewStatusFile(cfg.StatusFile, cfg.Debounce, log.Component(logger, "status"))
			a.own(m)
			a.monitor = m
		case StatusRedis:
			c, err := redisFor()
			if err != nil {
				return fail(err)
			}
			m := redisAdapter.NewStatusMonitor(c, redisAdapter.StatusOptions{
				Key:     cfg.RedisStatusKey,
				Channel: cfg.RedisStatusChannel,
				Logger:  log.Component(logger, "status"),
			})
			a.own(m)
			a.monitor = m
		}
	}

	if a.trigger == nil {
		switch cfg.Trigger {
		case TriggerHTTP:
			t := httpAdapter.NewTrigger(&http.Client{Timeout: cfg.HTTPTimeout}, httpAdapter.TriggerOptions{
				ServiceURL: cfg.SyncURL,
				AuthKey:    cfg.AuthKey,
				Timeout:    cfg.HTTPTimeout,
				MaxRetries: uint(cfg.TriggerMaxRetries),
				Logger:     log.Component(logger, "trigger"),
			})
			a.own(t)
			a.trigger = t
		case TriggerRedis:
			c, err := redisFor()
			if err != nil {
				return fail(err)
			}
			t := redisAdapter.NewTrigger(c, cfg.RedisTriggerChannel, log.Component(logger, "trigger"))
			a.own(t)
			a.trigger = t
		}
	}

	if a.renderer == nil {
		a.renderer = console.NewRenderer(console.Options{})
	}
	if a.reporter == nil {
		if r, ok := a.renderer.(ports.ErrorReporter); ok {
			a.reporter = r
		} else {
			a.reporter = console.NewRenderer(console.Options{Out: io.Discard})
		}
	}
	if a.opener == nil {
		if op, ok := a.renderer.(ports.LinkOpener); ok {
			a.opener = op
		} else {
			a.opener = console.NewBrowserOpener()
		}
	}
	return a, nil
}
