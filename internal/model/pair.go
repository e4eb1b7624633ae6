package model

import "time"

// SyncDirection controls which way content is allowed to flow for a pair.
type SyncDirection string

const (
	// Bidirectional syncs changes in whichever direction the three-way
	// comparison decides.
	Bidirectional SyncDirection = "bidirectional"

	// PushOnly only ever writes local content to the remote.
	PushOnly SyncDirection = "push_only"

	// PullOnly only ever writes remote content to the local file.
	PullOnly SyncDirection = "pull_only"
)

// IsValid returns true if the direction is recognized.
func (d SyncDirection) IsValid() bool {
	switch d {
	case Bidirectional, PushOnly, PullOnly:
		return true
	default:
		return false
	}
}

// ConflictResolution selects how conflicts are handled for a pair.
type ConflictResolution string

const (
	// ResolveManual leaves conflicts for an explicit human decision.
	ResolveManual ConflictResolution = "manual"

	// ResolveLocalWins resolves conflicts by pushing local content.
	ResolveLocalWins ConflictResolution = "local_wins"

	// ResolveRemoteWins resolves conflicts by pulling remote content.
	ResolveRemoteWins ConflictResolution = "remote_wins"

	// ResolveLatestWins resolves conflicts in favor of the most recently
	// modified side.
	ResolveLatestWins ConflictResolution = "latest_wins"
)

// IsValid returns true if the resolution strategy is recognized.
func (r ConflictResolution) IsValid() bool {
	switch r {
	case ResolveManual, ResolveLocalWins, ResolveRemoteWins, ResolveLatestWins:
		return true
	default:
		return false
	}
}

// SyncPairState records the three-way-merge base plus the latest observed
// state of each side of a pair.
//
// LastSyncedHash is the fingerprint that was true on both sides immediately
// after the most recent successful non-conflicting sync. It is the common
// ancestor for the next three-way comparison.
type SyncPairState struct {
	LocalHash      string    `json:"local_hash"`
	RemoteHash     string    `json:"remote_hash"`
	LastSyncedHash string    `json:"last_synced_hash"`
	LastSync       time.Time `json:"last_sync"`
	HasConflict    bool      `json:"has_conflict"`
	LastError      string    `json:"last_error,omitempty"`
}

// SyncPair is the durable association between one local file and one remote
// document, plus its sync state. The metadata store owns the persisted
// collection; the sync engine borrows a pair value for one sync attempt and
// hands the mutated value back for persistence.
type SyncPair struct {
	ID                 string             `json:"id"`
	LocalPath          string             `json:"local_path"`
	RemoteURI          string             `json:"remote_uri"`
	RemotePlatform     Platform           `json:"remote_platform"`
	CreatedAt          time.Time          `json:"created_at"`
	SyncDirection      SyncDirection      `json:"sync_direction"`
	ConflictResolution ConflictResolution `json:"conflict_resolution"`

	// State is nil only before the first sync.
	State *SyncPairState `json:"state,omitempty"`
}

// BaseHash returns the last-synced fingerprint, or the empty string before
// the first sync.
func (p *SyncPair) BaseHash() string {
	if p.State == nil {
		return ""
	}
	return p.State.LastSyncedHash
}
