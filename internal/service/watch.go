package service

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/tracing"
	"github.com/zjrosen/hoard/internal/watcher"
)

// WatchAndReload reloads the document whenever the file at path changes,
// until ctx is done. Reload failures are logged and counted, and the
// previous catalog state is kept.
func (s *Service) WatchAndReload(ctx context.Context, path string, debounce time.Duration) error {
	cfg := watcher.DefaultConfig(path)
	if debounce > 0 {
		cfg.Debounce = debounce
	}

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			s.reload(ctx, path)
		}
	}
}

func (s *Service) reload(ctx context.Context, path string) {
	ctx, done := s.begin(ctx, tracing.SpanReload)
	err := s.Load(ctx)
	done(err)
	s.metrics.Reload(err)

	if err != nil {
		log.ErrorErr(log.CatService, "reload failed", err, "path", path)
		return
	}
	log.Info(log.CatService, "document reloaded", "path", path, "assets", s.catalog.Len())
}
