package store

import "fmt"

// Reason classifies a store failure.
type Reason string

const (
	// ReasonCorrupt means the persisted file exists but is not well-formed.
	ReasonCorrupt Reason = "corrupt"

	// ReasonPairNotFound means a requested pair id is not present.
	ReasonPairNotFound Reason = "pair_not_found"

	// ReasonIO means an underlying filesystem operation failed.
	ReasonIO Reason = "io"
)

// Error is a metadata store failure. Store errors are never silently
// recovered: a corrupt or unreadable store risks operating on wrong pair
// data, so they propagate to the caller.
type Error struct {
	Reason Reason
	msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("metadata store: %s: %v", e.msg, e.cause)
	}
	return fmt.Sprintf("metadata store: %s", e.msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotInitializedError reports that no metadata store exists yet at the
// expected location.
type NotInitializedError struct {
	Path string
}

func (e *NotInitializedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no sync metadata found at %s (run 'docsync init' first)", e.Path)
	}
	return "no sync metadata found (run 'docsync init' first)"
}
