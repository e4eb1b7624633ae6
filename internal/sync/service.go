package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docsync/docsync/internal/adapter"
	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/store"
)

// ErrPairNotFound reports that no sync pair matches a requested local path.
var ErrPairNotFound = errors.New("no sync pair for path")

// Summary aggregates the outcome of a batch sync run.
type Summary struct {
	Total     int
	Success   int
	NoChanges int
	Conflicts int
	Errors    int

	Results       []model.SyncResult
	ConflictPairs []model.SyncPair
	ErrorMessages []string
}

func (s *Summary) add(result model.SyncResult, pair *model.SyncPair) {
	s.Total++
	s.Results = append(s.Results, result)

	switch result.Status {
	case model.StatusSuccess:
		s.Success++
	case model.StatusNoChanges:
		s.NoChanges++
	case model.StatusConflict:
		s.Conflicts++
		if pair != nil {
			s.ConflictPairs = append(s.ConflictPairs, *pair)
		}
	case model.StatusError:
		s.Errors++
		if result.Err != nil {
			s.ErrorMessages = append(s.ErrorMessages, result.Err.Error())
		}
	}
}

// HasConflicts returns true if any pair ended in conflict.
func (s *Summary) HasConflicts() bool {
	return s.Conflicts > 0
}

// HasErrors returns true if any pair failed.
func (s *Summary) HasErrors() bool {
	return s.Errors > 0
}

// PairStatus is one pair's entry in a status report.
type PairStatus struct {
	ID          string
	LocalPath   string
	RemoteURI   string
	HasConflict bool
	LastSync    time.Time
	LastError   string
}

// Status is a read-only report over the persisted pair collection.
type Status struct {
	Initialized bool
	Pairs       []PairStatus
}

// Service orchestrates the sync engine over every persisted pair, isolating
// per-pair failures so a single bad pair never aborts a batch.
type Service struct {
	store    *store.Store
	engine   *Engine
	local    adapter.Adapter
	remote   adapter.Adapter
	resolver *Resolver
	progress func(done, total int)
}

// NewService creates a sync service over a metadata store and two adapters.
func NewService(st *store.Store, local, remote adapter.Adapter, opts ...Option) *Service {
	engine := NewEngine(local, remote, opts...)
	return &Service{
		store:    st,
		engine:   engine,
		local:    local,
		remote:   remote,
		resolver: NewResolver(engine),
	}
}

// Engine exposes the underlying engine for forced per-pair operations.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Resolver exposes the conflict resolver bound to this service's engine.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// OnProgress registers a callback invoked after each pair during SyncAll.
func (s *Service) OnProgress(fn func(done, total int)) {
	s.progress = fn
}

// SyncAll syncs every persisted pair. Pair mutations accumulate in memory
// and the store is saved exactly once at the end of the batch, so concurrent
// saves can never race on the metadata file.
func (s *Service) SyncAll(ctx context.Context, force Direction) (*Summary, error) {
	defer logging.Timer("sync_all")()

	if !s.store.Exists() {
		return nil, &store.NotInitializedError{Path: s.store.FilePath()}
	}

	meta, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if len(meta.Pairs) == 0 {
		logging.Info("no sync pairs configured")
		return summary, nil
	}

	ids := sortedPairIDs(meta)
	for i, id := range ids {
		pair := meta.Pairs[id]
		result := s.syncPairSafe(ctx, &pair, force)
		meta.Pairs[id] = pair

		var conflicted *model.SyncPair
		if result.Status == model.StatusConflict {
			conflicted = &pair
		}
		summary.add(result, conflicted)

		if s.progress != nil {
			s.progress(i+1, len(ids))
		}
	}

	if err := s.store.Save(meta); err != nil {
		return nil, err
	}

	logging.Info("sync complete",
		logging.Count(summary.Total),
		logging.Operation(fmt.Sprintf("%d success, %d no changes, %d conflicts, %d errors",
			summary.Success, summary.NoChanges, summary.Conflicts, summary.Errors)),
	)

	return summary, nil
}

// SyncFile syncs the single pair whose local path matches the given path.
func (s *Service) SyncFile(ctx context.Context, path string, force Direction) (model.SyncResult, error) {
	if !s.store.Exists() {
		return model.SyncResult{}, &store.NotInitializedError{Path: s.store.FilePath()}
	}

	meta, err := s.store.Load()
	if err != nil {
		return model.SyncResult{}, err
	}

	id, ok := findPairByPath(meta, s.store.BasePath(), path)
	if !ok {
		return model.SyncResult{}, fmt.Errorf("%w: %s", ErrPairNotFound, path)
	}

	pair := meta.Pairs[id]
	result := s.syncPairSafe(ctx, &pair, force)
	meta.Pairs[id] = pair

	if err := s.store.Save(meta); err != nil {
		return model.SyncResult{}, err
	}

	return result, nil
}

// ListConflicts returns the persisted pairs currently flagged as conflicted.
func (s *Service) ListConflicts() ([]model.SyncPair, error) {
	pairs, err := s.store.ListPairs()
	if err != nil {
		return nil, err
	}

	var conflicted []model.SyncPair
	for _, pair := range pairs {
		if pair.State != nil && pair.State.HasConflict {
			conflicted = append(conflicted, pair)
		}
	}
	sort.Slice(conflicted, func(i, j int) bool {
		return conflicted[i].LocalPath < conflicted[j].LocalPath
	})
	return conflicted, nil
}

// Status reports the persisted pair collection without syncing anything.
func (s *Service) Status() (*Status, error) {
	if !s.store.Exists() {
		return &Status{}, nil
	}

	meta, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	status := &Status{Initialized: true}
	for _, id := range sortedPairIDs(meta) {
		pair := meta.Pairs[id]
		ps := PairStatus{
			ID:        pair.ID,
			LocalPath: pair.LocalPath,
			RemoteURI: pair.RemoteURI,
		}
		if pair.State != nil {
			ps.HasConflict = pair.State.HasConflict
			ps.LastSync = pair.State.LastSync
			ps.LastError = pair.State.LastError
		}
		status.Pairs = append(status.Pairs, ps)
	}
	return status, nil
}

// syncPairSafe runs one pair through the engine and converts errors into
// typed results. It always returns a result, never panics the batch.
func (s *Service) syncPairSafe(ctx context.Context, pair *model.SyncPair, force Direction) model.SyncResult {
	result, err := s.engine.SyncPair(ctx, pair, force)
	if err == nil {
		return result
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		if force == DirectionNone && pair.ConflictResolution != model.ResolveManual {
			return s.autoResolve(ctx, pair)
		}

		logging.Warn("conflict requires resolution",
			logging.Pair(pair.ID),
			logging.Path(pair.LocalPath),
		)
		return model.SyncResult{
			Status:    model.StatusConflict,
			Message:   err.Error(),
			LocalPath: pair.LocalPath,
			RemoteURI: pair.RemoteURI,
			Err:       err,
		}
	}

	logging.Error("pair sync errored",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.Err(err),
	)
	return model.SyncResult{
		Status:    model.StatusError,
		Message:   fmt.Sprintf("Sync failed: %v", err),
		LocalPath: pair.LocalPath,
		RemoteURI: pair.RemoteURI,
		Err:       err,
	}
}

// autoResolve applies a pair's configured non-manual resolution policy by
// re-running the sync with a forced direction.
func (s *Service) autoResolve(ctx context.Context, pair *model.SyncPair) model.SyncResult {
	direction, err := s.resolutionDirection(ctx, pair)
	if err != nil {
		return model.SyncResult{
			Status:    model.StatusError,
			Message:   fmt.Sprintf("Auto-resolution failed: %v", err),
			LocalPath: pair.LocalPath,
			RemoteURI: pair.RemoteURI,
			Err:       err,
		}
	}

	logging.Info("auto-resolving conflict",
		logging.Pair(pair.ID),
		logging.Operation(string(pair.ConflictResolution)),
		logging.Decision(string(direction)),
	)

	return s.syncPairSafe(ctx, pair, direction)
}

func (s *Service) resolutionDirection(ctx context.Context, pair *model.SyncPair) (Direction, error) {
	switch pair.ConflictResolution {
	case model.ResolveLocalWins:
		return DirectionPush, nil

	case model.ResolveRemoteWins:
		return DirectionPull, nil

	case model.ResolveLatestWins:
		localDoc, err := s.local.Read(ctx, pair.LocalPath)
		if err != nil {
			return DirectionNone, err
		}
		remoteDoc, err := s.remote.Read(ctx, pair.RemoteURI)
		if err != nil {
			return DirectionNone, err
		}
		if localDoc.Metadata.ModifiedAt.After(remoteDoc.Metadata.ModifiedAt) {
			return DirectionPush, nil
		}
		return DirectionPull, nil

	default:
		return DirectionNone, fmt.Errorf("no automatic direction for resolution %q", pair.ConflictResolution)
	}
}

func sortedPairIDs(meta *store.Metadata) []string {
	ids := make([]string, 0, len(meta.Pairs))
	for id := range meta.Pairs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return meta.Pairs[ids[i]].LocalPath < meta.Pairs[ids[j]].LocalPath
	})
	return ids
}

// findPairByPath matches a pair by local path. Pairs persist base-relative
// paths, while callers hand in whatever they have (a relative CLI argument,
// an absolute watcher event path), so both sides are resolved against the
// store's base directory before comparing.
func findPairByPath(meta *store.Metadata, base, path string) (string, bool) {
	want := absolutePath(base, path)
	for id, pair := range meta.Pairs {
		if absolutePath(base, pair.LocalPath) == want {
			return id, true
		}
	}
	return "", false
}

// relativePath rewrites path into its base-relative form when it sits under
// base. Paths outside base, or already relative ones, are only cleaned.
func relativePath(base, path string) string {
	if base == "" || !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}

// absolutePath resolves a possibly base-relative path for comparison.
func absolutePath(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
