// Package adapter defines the document adapter boundary and the concrete
// local and Notion implementations.
//
// The sync engine is adapter-agnostic: it holds one adapter for the local
// side and one for the remote side and only ever calls Read and Write.
package adapter

import (
	"context"
	"fmt"

	"github.com/docsync/docsync/internal/model"
)

// Adapter reads and writes documents addressed by platform-specific URIs.
//
// Read returns the document with its content fingerprint populated. Write
// replaces the addressed document wholesale. Both fail with *adapter.Error.
type Adapter interface {
	Read(ctx context.Context, uri string) (model.Document, error)
	Write(ctx context.Context, uri string, doc model.Document) error
}

// Error is an adapter failure. The original cause is preserved for
// diagnostics; the sync engine wraps adapter errors rather than interpreting
// them.
type Error struct {
	Op    string // "read", "write", "create", "delete"
	URI   string
	cause error
}

// NewError builds an adapter error wrapping cause.
func NewError(op, uri string, cause error) *Error {
	return &Error{Op: op, URI: uri, cause: cause}
}

func (e *Error) Error() string {
	return fmt.Sprintf("adapter %s %s: %v", e.Op, e.URI, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}
