package sync

import "fmt"

// ConflictError signals that both sides of a pair diverged from the sync
// base and a human decision is required. It is control flow, not a failure:
// the orchestration layer converts it into a conflict-status result and the
// interactive layer converts it into a resolution prompt.
type ConflictError struct {
	LocalPath  string
	LocalHash  string
	RemoteHash string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict detected for %s: local %s, remote %s",
		e.LocalPath, e.LocalHash, e.RemoteHash)
}

// Error is a general sync-operation failure: an adapter read or write
// failed, or a forced direction was invalid. The original cause is preserved
// for diagnostics.
type Error struct {
	msg   string
	cause error
}

func newError(msg string, cause error) *Error {
	return &Error{msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("sync: %s: %v", e.msg, e.cause)
	}
	return fmt.Sprintf("sync: %s", e.msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}
