package watch

import (
	"context"
	"time"

	"github.com/docsync/docsync/internal/adapter"
	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
)

// PairLister supplies the current pair collection on each poll tick.
type PairLister interface {
	ListPairs() ([]model.SyncPair, error)
}

// RemoteChange reports a remote document whose content no longer matches
// the fingerprint recorded at last sync.
type RemoteChange struct {
	Pair       model.SyncPair
	RemoteHash string
}

// Poller periodically fingerprints remote documents and reports the ones
// that changed since their pair's last sync. Remote platforms offer no push
// notifications, so polling is the only way to notice remote edits.
type Poller struct {
	remote   adapter.Adapter
	pairs    PairLister
	interval time.Duration
	changes  chan RemoteChange
}

// NewPoller creates a poller over a remote adapter and a pair source.
func NewPoller(remote adapter.Adapter, pairs PairLister, interval time.Duration) *Poller {
	return &Poller{
		remote:   remote,
		pairs:    pairs,
		interval: interval,
		changes:  make(chan RemoteChange, 16),
	}
}

// Changes returns the channel of detected remote changes.
func (p *Poller) Changes() <-chan RemoteChange {
	return p.changes
}

// Start polls until the context is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	logging.Info("polling for remote changes",
		logging.Operation(p.interval.String()),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce checks every pair once. Per-pair read failures are logged and
// skipped; one unreachable page must not stall the rest.
func (p *Poller) pollOnce(ctx context.Context) {
	pairs, err := p.pairs.ListPairs()
	if err != nil {
		logging.Warn("poll skipped", logging.Err(err))
		return
	}

	for _, pair := range pairs {
		doc, err := p.remote.Read(ctx, pair.RemoteURI)
		if err != nil {
			logging.Warn("remote poll failed",
				logging.Pair(pair.ID),
				logging.URI(pair.RemoteURI),
				logging.Err(err),
			)
			continue
		}

		lastKnown := ""
		if pair.State != nil {
			lastKnown = pair.State.RemoteHash
		}
		if doc.ContentHash == lastKnown {
			continue
		}

		logging.Debug("remote change detected",
			logging.Pair(pair.ID),
			logging.URI(pair.RemoteURI),
		)

		select {
		case p.changes <- RemoteChange{Pair: pair, RemoteHash: doc.ContentHash}:
		case <-ctx.Done():
			return
		}
	}
}
