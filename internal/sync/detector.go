// Package sync implements three-way document synchronization: conflict
// detection, the sync engine, conflict resolution, and batch orchestration.
package sync

import (
	"fmt"

	"github.com/docsync/docsync/internal/model"
)

// Decision classifies one three-hash comparison. It is computed fresh per
// detection call and never persisted.
type Decision struct {
	// Status is one of no_changes, push, pull, or conflict.
	Status model.SyncStatus

	// Reason explains the classification for logs and diagnostics.
	Reason string

	ShouldPush bool
	ShouldPull bool
}

// Detect classifies a (local, remote, base) fingerprint triple. It is pure,
// deterministic, and total: every triple maps to exactly one decision and it
// never fails.
//
// An empty base encodes "no prior sync". It matches neither side unless a
// side's fingerprint is literally empty, so a first sync with differing
// content is a conflict: the system never guesses which side is
// authoritative on first contact.
func Detect(localHash, remoteHash, baseHash string) Decision {
	// Rule 1: both sides already identical; nothing to do regardless of
	// base.
	if localHash == remoteHash {
		return Decision{
			Status: model.StatusNoChanges,
			Reason: "content identical",
		}
	}

	// Rule 2: only remote changed since last sync.
	if localHash == baseHash && remoteHash != baseHash {
		return Decision{
			Status:     model.StatusPull,
			Reason:     "remote changed since last sync",
			ShouldPull: true,
		}
	}

	// Rule 3: only local changed since last sync.
	if remoteHash == baseHash && localHash != baseHash {
		return Decision{
			Status:     model.StatusPush,
			Reason:     "local changed since last sync",
			ShouldPush: true,
		}
	}

	// Rule 4: both sides diverged from the base and from each other.
	return Decision{
		Status: model.StatusConflict,
		Reason: fmt.Sprintf("both sides changed (local %s, remote %s)", localHash, remoteHash),
	}
}
