package watch

import (
	"context"
	"errors"
	"time"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/sync"
)

// Options configures a watch session.
type Options struct {
	// Debounce is the local quiet period before an edit triggers a sync.
	Debounce time.Duration

	// PollInterval is how often remote documents are fingerprinted.
	// Zero disables remote polling.
	PollInterval time.Duration
}

// DefaultOptions returns the default watch timings.
func DefaultOptions() Options {
	return Options{
		Debounce:     500 * time.Millisecond,
		PollInterval: 30 * time.Second,
	}
}

// Service runs the combined watch loop: local edits trigger a targeted sync
// of the changed pair, detected remote changes do the same for theirs.
type Service struct {
	syncer  *sync.Service
	watcher *Watcher
	poller  *Poller
}

// NewService wires a watcher and an optional poller to a sync service.
func NewService(syncer *sync.Service, watcher *Watcher, poller *Poller) *Service {
	return &Service{syncer: syncer, watcher: watcher, poller: poller}
}

// Run blocks processing events until the context is cancelled. Conflicts
// are reported and left for an explicit resolve; the loop keeps running.
func (s *Service) Run(ctx context.Context) error {
	go func() {
		if err := s.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("watcher stopped", logging.Err(err))
		}
	}()
	if s.poller != nil {
		go func() {
			if err := s.poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error("poller stopped", logging.Err(err))
			}
		}()
	}
	defer s.watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-s.watcher.Events():
			s.syncPath(ctx, event.Path)

		case change := <-s.pollerChanges():
			s.syncPath(ctx, change.Pair.LocalPath)

		case err := <-s.watcher.Errors():
			logging.Warn("watch error", logging.Err(err))
		}
	}
}

func (s *Service) pollerChanges() <-chan RemoteChange {
	if s.poller == nil {
		return nil
	}
	return s.poller.Changes()
}

// syncPath syncs one pair by local path. Unknown paths are ignored: edits
// to unpaired files are none of our business.
func (s *Service) syncPath(ctx context.Context, path string) {
	result, err := s.syncer.SyncFile(ctx, path, sync.DirectionNone)
	if err != nil {
		if errors.Is(err, sync.ErrPairNotFound) {
			return
		}
		logging.Warn("watch sync failed",
			logging.Path(path),
			logging.Err(err),
		)
		return
	}

	if result.IsConflict() {
		logging.Warn("conflict detected, resolve manually",
			logging.Path(path),
		)
		return
	}
	logging.Info("synced",
		logging.Path(path),
		logging.Decision(string(result.Status)),
	)
}
