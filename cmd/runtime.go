package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/zjrosen/hoard/internal/config"
	"github.com/zjrosen/hoard/internal/flags"
	"github.com/zjrosen/hoard/internal/infrastructure/sqlite"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/metrics"
	"github.com/zjrosen/hoard/internal/presentation"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/service"
	"github.com/zjrosen/hoard/internal/store"
	"github.com/zjrosen/hoard/internal/tracing"
)

// runtime bundles a loaded service with the resources it owns.
type runtime struct {
	svc     *service.Service
	store   store.Store
	file    *store.FileStore      // nil for the sqlite backend
	db      *sqlite.DocumentStore // nil for the file backend
	path    string
	broker  *pubsub.Broker[service.Change]
	metrics *metrics.Metrics
	tracer  *tracing.Provider

	closers []func() error
}

// openStore builds the configured document store for path.
func openStore(c config.Config, path string) (store.Store, *store.FileStore, func() error, error) {
	if c.Store.Backend == config.BackendSQLite || strings.EqualFold(filepath.Ext(path), ".db") {
		if ext := filepath.Ext(path); !strings.EqualFold(ext, ".db") {
			path = strings.TrimSuffix(path, ext) + ".db"
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db.DocumentStore(), nil, db.Close, nil
	}

	fs, err := store.NewFileStore(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening document %s: %w", path, err)
	}
	return fs, fs, func() error { return nil }, nil
}

// openRuntime wires store, tracing, metrics and flags into a service and
// loads the document.
func openRuntime(ctx context.Context, c config.Config) (*runtime, error) {
	expected, err := c.ExpectedVersion()
	if err != nil {
		return nil, fmt.Errorf("invalid schema.expected: %w", err)
	}

	rt := &runtime{path: c.DocumentPath()}

	st, fs, closeStore, err := openStore(c, rt.path)
	if err != nil {
		return nil, err
	}
	rt.store, rt.file = st, fs
	if ds, ok := st.(*sqlite.DocumentStore); ok {
		rt.db = ds
	}
	rt.closers = append(rt.closers, closeStore)

	provider, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		log.ErrorErr(log.CatConfig, "tracing disabled", err)
		provider = tracing.Noop()
	}
	rt.tracer = provider
	rt.closers = append(rt.closers, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return provider.Shutdown(shutdownCtx)
	})

	overrides := make(map[string]bool, len(c.Flags)+1)
	for name, on := range c.Flags {
		overrides[name] = on
	}
	if !c.Cache.Enabled {
		overrides[flags.FlagResultCache] = false
	}

	rt.broker = pubsub.NewBroker[service.Change]()
	rt.closers = append(rt.closers, func() error {
		rt.broker.Close()
		return nil
	})
	rt.metrics = metrics.New()

	svc, err := service.New(service.Options{
		Store:             st,
		Expected:          expected,
		AllowIncompatible: c.Schema.AllowIncompatible,
		Broker:            rt.broker,
		Flags:             flags.New(overrides),
		Tracer:            provider.Tracer(),
		Metrics:           rt.metrics,
		CacheTTL:          c.Cache.TTL,
		CacheCleanup:      c.Cache.CleanupInterval,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.svc = svc

	if err := svc.Load(ctx); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("loading %s: %w", rt.path, err)
	}
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() error {
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	rt.closers = nil
	return first
}

// withRuntime opens the runtime from the global config, runs fn and closes it.
func withRuntime(ctx context.Context, fn func(rt *runtime) error) error {
	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	return fn(rt)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newFormatter picks JSON, styled or plain output for w.
func newFormatter(w io.Writer) *presentation.Formatter {
	return presentation.NewFormatter(w, jsonOutput, !jsonOutput && isTerminal(w))
}
