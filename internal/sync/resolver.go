package sync

import (
	"context"
	"strings"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
)

// Strategy is an explicit, human-selected conflict resolution.
type Strategy string

const (
	// UseLocal keeps the local version, force-pushing it to the remote.
	UseLocal Strategy = "local"

	// UseRemote keeps the remote version, force-pulling it to the local
	// file.
	UseRemote Strategy = "remote"

	// MergeManual hands off to an external editing step; nothing is
	// resolved programmatically.
	MergeManual Strategy = "manual"
)

// IsValid returns true if the strategy is recognized.
func (s Strategy) IsValid() bool {
	switch s {
	case UseLocal, UseRemote, MergeManual:
		return true
	default:
		return false
	}
}

// ConflictInfo summarizes a conflict for human review.
type ConflictInfo struct {
	// HasConflict is false when the trimmed contents are actually equal,
	// which can happen when fingerprints diverge on whitespace only.
	HasConflict bool

	// Summary counts line-level additions, deletions, and changes.
	Summary ChangeSummary
}

// Resolver turns a detected conflict into a human-actionable decision and
// applies it through the engine's forced directions.
type Resolver struct {
	engine *Engine
}

// NewResolver creates a resolver over the given engine.
func NewResolver(engine *Engine) *Resolver {
	return &Resolver{engine: engine}
}

// GetConflictInfo inspects both documents and returns a structured conflict
// summary.
func (r *Resolver) GetConflictInfo(localDoc, remoteDoc model.Document) ConflictInfo {
	if strings.TrimSpace(localDoc.Content) == strings.TrimSpace(remoteDoc.Content) {
		return ConflictInfo{}
	}

	hunks := ComputeDiff(
		strings.Split(localDoc.Content, "\n"),
		strings.Split(remoteDoc.Content, "\n"),
	)

	return ConflictInfo{
		HasConflict: true,
		Summary:     Summarize(hunks),
	}
}

// FormatDiffPreview renders a bounded unified-diff-style preview of the two
// versions for review before a resolution decision.
func (r *Resolver) FormatDiffPreview(localDoc, remoteDoc model.Document, maxLines int) string {
	hunks := ComputeDiff(
		strings.Split(localDoc.Content, "\n"),
		strings.Split(remoteDoc.Content, "\n"),
	)
	return FormatUnified(hunks, "LOCAL", "REMOTE", maxLines)
}

// FormatMergeContent renders both versions with conflict markers for a
// manual merge.
func (r *Resolver) FormatMergeContent(localDoc, remoteDoc model.Document) string {
	return ConflictMarkers(localDoc.Content, remoteDoc.Content, "LOCAL", "REMOTE")
}

// Resolve applies an explicit strategy to a conflicted pair. It returns true
// when the conflict was resolved programmatically; MergeManual always
// returns false. Resolution failure leaves the pair's conflict flag set.
func (r *Resolver) Resolve(ctx context.Context, pair *model.SyncPair, strategy Strategy) (bool, error) {
	logging.Info("resolving conflict",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.Operation(string(strategy)),
	)

	switch strategy {
	case UseLocal:
		if _, err := r.engine.Push(ctx, pair); err != nil {
			return false, err
		}
		return true, nil

	case UseRemote:
		if _, err := r.engine.Pull(ctx, pair); err != nil {
			return false, err
		}
		return true, nil

	case MergeManual:
		// Handed off to an external editor; the pair stays conflicted
		// until a later forced sync.
		return false, nil

	default:
		return false, newError("unknown resolution strategy: "+string(strategy), nil)
	}
}
