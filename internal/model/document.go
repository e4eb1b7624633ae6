// Package model defines the core data types shared across docsync.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Fingerprint returns the hex-encoded SHA-256 digest of content.
// Two documents are content-equal iff their fingerprints match.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// DocumentMetadata holds document attributes carried alongside content.
// It is a value object: replaced wholesale on write, never patched in place.
type DocumentMetadata struct {
	Title      string         `json:"title"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
	Tags       []string       `json:"tags,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Document is the common representation all adapters convert to and from.
type Document struct {
	// Content is the raw markdown body, front matter excluded.
	Content string `json:"content"`

	// Metadata describes the document.
	Metadata DocumentMetadata `json:"metadata"`

	// ContentHash is the fingerprint of Content. Adapters compute it on
	// read; an empty string means it has not been populated.
	ContentHash string `json:"content_hash,omitempty"`
}

// Hash returns the document's content fingerprint, computing it if the
// adapter did not populate one.
func (d Document) Hash() string {
	if d.ContentHash != "" {
		return d.ContentHash
	}
	return Fingerprint(d.Content)
}
