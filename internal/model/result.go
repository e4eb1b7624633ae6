package model

// SyncStatus classifies the outcome of a sync attempt.
type SyncStatus string

const (
	StatusNoChanges SyncStatus = "no_changes"
	StatusPush      SyncStatus = "push"
	StatusPull      SyncStatus = "pull"
	StatusConflict  SyncStatus = "conflict"
	StatusSuccess   SyncStatus = "success"
	StatusError     SyncStatus = "error"
)

// SyncResult is the transient outcome of one sync attempt. It is returned
// to the caller and never persisted.
type SyncResult struct {
	Status    SyncStatus
	Message   string
	LocalPath string
	RemoteURI string
	Err       error
}

// IsSuccess returns true if the attempt completed without conflict or error.
func (r SyncResult) IsSuccess() bool {
	return r.Status == StatusSuccess || r.Status == StatusNoChanges
}

// IsConflict returns true if the attempt ended in a conflict.
func (r SyncResult) IsConflict() bool {
	return r.Status == StatusConflict
}
