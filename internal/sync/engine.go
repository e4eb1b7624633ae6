package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/docsync/docsync/internal/adapter"
	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
)

// Direction is an explicit sync direction override.
type Direction string

const (
	// DirectionNone lets the conflict detector decide.
	DirectionNone Direction = ""

	// DirectionPush writes local content to the remote unconditionally.
	DirectionPush Direction = "push"

	// DirectionPull writes remote content to the local file unconditionally.
	DirectionPull Direction = "pull"
)

// Engine performs one pair's sync attempt end to end using two adapters:
// one for the local side and one for the remote side.
//
// The engine borrows the pair value for the duration of one call and hands
// the mutated value back through the pointer; persisting it is the caller's
// job.
type Engine struct {
	local  adapter.Adapter
	remote adapter.Adapter

	// backupLocal, when set, runs before the local file is overwritten.
	backupLocal func(path string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocalBackup installs a hook invoked with the local path before a pull
// or forced pull overwrites the local file.
func WithLocalBackup(fn func(path string) error) Option {
	return func(e *Engine) {
		e.backupLocal = fn
	}
}

// NewEngine creates a sync engine over the given adapters.
func NewEngine(local, remote adapter.Adapter, opts ...Option) *Engine {
	e := &Engine{local: local, remote: remote}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncPair syncs a single pair. With force set, conflict detection is
// bypassed and the write happens unconditionally in that direction.
//
// It returns *ConflictError when a human decision is required and *Error
// when an adapter operation fails; in both cases the pair's state is updated
// (conflict flag or last error) before the error is returned.
func (e *Engine) SyncPair(ctx context.Context, pair *model.SyncPair, force Direction) (model.SyncResult, error) {
	defer logging.Timer("sync_pair")()

	logging.Debug("syncing pair",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.URI(pair.RemoteURI),
	)

	if force != DirectionNone && force != DirectionPush && force != DirectionPull {
		return model.SyncResult{}, newError(fmt.Sprintf("invalid force direction: %s", force), nil)
	}

	// Local and remote reads have no ordering dependency; run them
	// concurrently.
	type readResult struct {
		doc model.Document
		err error
	}
	remoteCh := make(chan readResult, 1)
	go func() {
		doc, err := e.remote.Read(ctx, pair.RemoteURI)
		remoteCh <- readResult{doc, err}
	}()

	localDoc, localErr := e.local.Read(ctx, pair.LocalPath)
	remoteRes := <-remoteCh

	if localErr != nil {
		return model.SyncResult{}, e.fail(pair, "read local document", localErr)
	}
	if remoteRes.err != nil {
		return model.SyncResult{}, e.fail(pair, "read remote document", remoteRes.err)
	}
	remoteDoc := remoteRes.doc

	localHash := localDoc.ContentHash
	remoteHash := remoteDoc.ContentHash

	if force != DirectionNone {
		return e.syncForced(ctx, pair, localDoc, remoteDoc, force, localHash, remoteHash)
	}

	decision := Detect(localHash, remoteHash, pair.BaseHash())
	logging.Debug("sync decision",
		logging.Pair(pair.ID),
		logging.Decision(string(decision.Status)),
		logging.Operation(decision.Reason),
	)

	switch {
	case decision.Status == model.StatusNoChanges:
		return model.SyncResult{
			Status:    model.StatusNoChanges,
			Message:   "No changes detected",
			LocalPath: pair.LocalPath,
			RemoteURI: pair.RemoteURI,
		}, nil

	case decision.Status == model.StatusConflict:
		if pair.State != nil {
			pair.State.HasConflict = true
		}
		return model.SyncResult{}, &ConflictError{
			LocalPath:  pair.LocalPath,
			LocalHash:  localHash,
			RemoteHash: remoteHash,
		}

	case decision.ShouldPush:
		if err := e.remote.Write(ctx, pair.RemoteURI, localDoc); err != nil {
			return model.SyncResult{}, e.fail(pair, "push to remote", err)
		}
		e.commit(pair, localHash)
		return e.success(pair, "Pushed local changes to remote"), nil

	case decision.ShouldPull:
		if err := e.writeLocal(ctx, pair, remoteDoc); err != nil {
			return model.SyncResult{}, e.fail(pair, "pull to local", err)
		}
		e.commit(pair, remoteHash)
		return e.success(pair, "Pulled remote changes to local"), nil

	default:
		// Unreachable: rule 1 already classifies equal hashes as
		// no-changes. Treat as conflict rather than guess a direction.
		if pair.State != nil {
			pair.State.HasConflict = true
		}
		return model.SyncResult{}, &ConflictError{
			LocalPath:  pair.LocalPath,
			LocalHash:  localHash,
			RemoteHash: remoteHash,
		}
	}
}

// Push forces local content to the remote, ignoring conflicts.
func (e *Engine) Push(ctx context.Context, pair *model.SyncPair) (model.SyncResult, error) {
	return e.SyncPair(ctx, pair, DirectionPush)
}

// Pull forces remote content to the local file, ignoring conflicts.
func (e *Engine) Pull(ctx context.Context, pair *model.SyncPair) (model.SyncResult, error) {
	return e.SyncPair(ctx, pair, DirectionPull)
}

func (e *Engine) syncForced(
	ctx context.Context,
	pair *model.SyncPair,
	localDoc, remoteDoc model.Document,
	direction Direction,
	localHash, remoteHash string,
) (model.SyncResult, error) {
	var newHash, message string

	switch direction {
	case DirectionPush:
		if err := e.remote.Write(ctx, pair.RemoteURI, localDoc); err != nil {
			return model.SyncResult{}, e.fail(pair, "force push to remote", err)
		}
		newHash = localHash
		message = "Force pushed local changes to remote"

	case DirectionPull:
		if err := e.writeLocal(ctx, pair, remoteDoc); err != nil {
			return model.SyncResult{}, e.fail(pair, "force pull to local", err)
		}
		newHash = remoteHash
		message = "Force pulled remote changes to local"

	default:
		return model.SyncResult{}, newError(fmt.Sprintf("invalid force direction: %s", direction), nil)
	}

	e.commit(pair, newHash)

	logging.Info("forced sync",
		logging.Pair(pair.ID),
		logging.Decision(string(direction)),
		logging.Path(pair.LocalPath),
	)

	return e.success(pair, message), nil
}

// writeLocal overwrites the local side, taking a backup first when the
// engine was configured with one.
func (e *Engine) writeLocal(ctx context.Context, pair *model.SyncPair, doc model.Document) error {
	if e.backupLocal != nil {
		if err := e.backupLocal(pair.LocalPath); err != nil {
			return fmt.Errorf("backup local file: %w", err)
		}
	}
	return e.local.Write(ctx, pair.LocalPath, doc)
}

// commit replaces the pair state after a successful write: both sides and
// the base now share the winning fingerprint.
func (e *Engine) commit(pair *model.SyncPair, newHash string) {
	pair.State = &model.SyncPairState{
		LocalHash:      newHash,
		RemoteHash:     newHash,
		LastSyncedHash: newHash,
		LastSync:       time.Now(),
		HasConflict:    false,
	}
}

func (e *Engine) success(pair *model.SyncPair, message string) model.SyncResult {
	return model.SyncResult{
		Status:    model.StatusSuccess,
		Message:   message,
		LocalPath: pair.LocalPath,
		RemoteURI: pair.RemoteURI,
	}
}

// fail records the error on the pair state (when present) and wraps it.
func (e *Engine) fail(pair *model.SyncPair, op string, err error) error {
	wrapped := newError(fmt.Sprintf("%s for %s", op, pair.LocalPath), err)
	if pair.State != nil {
		pair.State.LastError = wrapped.Error()
	}
	logging.Error("sync failed",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.Err(err),
	)
	return wrapped
}
