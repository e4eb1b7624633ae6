package backup

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/docsync/docsync/internal/logging"
)

// CleanupOptions configures backup pruning.
type CleanupOptions struct {
	// MaxBackups limits the number of backups kept per source file
	// (0 = unlimited).
	MaxBackups int

	// MaxAge is the maximum age of backups to keep (0 = unlimited).
	MaxAge time.Duration

	// KeepAtLeastOne always keeps the newest backup per source file even
	// when it exceeds MaxAge.
	KeepAtLeastOne bool

	// DryRun previews what would be deleted without deleting.
	DryRun bool
}

// DefaultCleanupOptions returns the default pruning policy.
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MaxBackups:     10,
		MaxAge:         30 * 24 * time.Hour,
		KeepAtLeastOne: true,
	}
}

// Cleanup prunes backups per the options and returns the IDs removed.
func (m *Manager) Cleanup(opts CleanupOptions) ([]string, error) {
	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}

	bySource := make(map[string][]Metadata)
	for _, meta := range index.Backups {
		bySource[meta.SourcePath] = append(bySource[meta.SourcePath], meta)
	}

	var doomed []Metadata
	now := time.Now()

	for _, backups := range bySource {
		sort.Slice(backups, func(i, j int) bool {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		})

		for i, meta := range backups {
			if i == 0 && opts.KeepAtLeastOne {
				continue
			}
			tooMany := opts.MaxBackups > 0 && i >= opts.MaxBackups
			tooOld := opts.MaxAge > 0 && now.Sub(meta.CreatedAt) > opts.MaxAge
			if tooMany || tooOld {
				doomed = append(doomed, meta)
			}
		}
	}

	removed := make([]string, 0, len(doomed))
	for _, meta := range doomed {
		if opts.DryRun {
			removed = append(removed, meta.ID)
			continue
		}
		if err := os.Remove(meta.BackupPath); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove backup %q: %w", meta.BackupPath, err)
		}
		delete(index.Backups, meta.ID)
		removed = append(removed, meta.ID)
	}

	if !opts.DryRun && len(removed) > 0 {
		if err := m.saveIndex(index); err != nil {
			return removed, err
		}
		logging.Info("pruned backups", logging.Count(len(removed)))
	}

	return removed, nil
}
