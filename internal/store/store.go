// Package store provides durable, atomic persistence of sync pair metadata.
//
// State lives in a single JSON file under the .docsync directory of a synced
// root. Saves are crash-atomic: content is written to a temp file in the same
// directory and renamed over the canonical file, so a save either fully
// succeeds or has no visible effect.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/util"
)

const (
	// SchemaVersion tags the persisted file layout.
	SchemaVersion = "1.0"

	metadataFileName = "metadata.json"

	dirPerm  = 0o750
	filePerm = 0o644
)

// Metadata is the full persisted document: schema version, the pair
// collection keyed by pair id, and a free-form config map.
type Metadata struct {
	Version string                    `json:"version"`
	Pairs   map[string]model.SyncPair `json:"pairs"`
	Config  map[string]any            `json:"config"`
}

// NewMetadata returns an empty, well-formed metadata document.
func NewMetadata() *Metadata {
	return &Metadata{
		Version: SchemaVersion,
		Pairs:   make(map[string]model.SyncPair),
		Config:  make(map[string]any),
	}
}

// Store manages the metadata file for one synced root.
//
// The convenience helpers (AddPair, RemovePair, SetConfig) are
// load-mutate-save cycles guarded by a mutex, so concurrent callers within
// one process cannot race a save against each other. Each individual save is
// crash-atomic regardless.
type Store struct {
	basePath string

	mu sync.Mutex
}

// New creates a store rooted at basePath. Nothing is read or created until
// Initialize or Load is called.
func New(basePath string) *Store {
	return &Store{basePath: basePath}
}

// BasePath returns the directory this store is rooted at. Pair paths are
// stored relative to it.
func (s *Store) BasePath() string {
	return s.basePath
}

// Dir returns the metadata directory for this store.
func (s *Store) Dir() string {
	return util.MetadataDir(s.basePath)
}

// FilePath returns the canonical metadata file path.
func (s *Store) FilePath() string {
	return filepath.Join(s.Dir(), metadataFileName)
}

// Exists reports whether the metadata directory has been initialized.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Dir())
	return err == nil
}

// Initialize idempotently creates the metadata directory and seeds an empty
// metadata file. An existing file is never overwritten.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir(), dirPerm); err != nil {
		return &Error{Reason: ReasonIO, msg: "create metadata directory", cause: err}
	}

	if _, err := os.Stat(s.FilePath()); err == nil {
		return nil
	}

	logging.Debug("seeding metadata store", logging.Path(s.FilePath()))
	return s.write(NewMetadata())
}

// Load returns the persisted metadata document. If the file does not exist
// yet, a well-formed empty document is returned so callers never need to
// special-case "not yet created" versus "created but empty".
func (s *Store) Load() (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes the full metadata document back atomically.
func (s *Store) Save(meta *Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(meta)
}

// GetPair returns the pair with the given id, or nil if not present.
func (s *Store) GetPair(id string) (*model.SyncPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return nil, err
	}

	pair, ok := meta.Pairs[id]
	if !ok {
		return nil, nil
	}
	return &pair, nil
}

// AddPair adds or updates a pair in the persisted collection.
func (s *Store) AddPair(pair model.SyncPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return err
	}

	meta.Pairs[pair.ID] = pair
	return s.write(meta)
}

// RemovePair removes the pair with the given id. It fails with a not-found
// Error when the id is absent.
func (s *Store) RemovePair(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := meta.Pairs[id]; !ok {
		return &Error{Reason: ReasonPairNotFound, msg: fmt.Sprintf("pair not found: %s", id)}
	}

	delete(meta.Pairs, id)
	return s.write(meta)
}

// ListPairs returns all persisted pairs.
func (s *Store) ListPairs() ([]model.SyncPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return nil, err
	}

	pairs := make([]model.SyncPair, 0, len(meta.Pairs))
	for _, pair := range meta.Pairs {
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// GetConfig returns the config value for key, or def when absent.
func (s *Store) GetConfig(key string, def any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return nil, err
	}

	if v, ok := meta.Config[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetConfig persists a config value under key.
func (s *Store) SetConfig(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load()
	if err != nil {
		return err
	}

	meta.Config[key] = value
	return s.write(meta)
}

func (s *Store) load() (*Metadata, error) {
	data, err := os.ReadFile(s.FilePath()) // #nosec G304 - path is derived from the store root
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewMetadata(), nil
		}
		return nil, &Error{Reason: ReasonIO, msg: "read metadata file", cause: err}
	}

	meta := &Metadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, &Error{Reason: ReasonCorrupt, msg: "metadata file is not valid JSON", cause: err}
	}

	if meta.Pairs == nil {
		meta.Pairs = make(map[string]model.SyncPair)
	}
	if meta.Config == nil {
		meta.Config = make(map[string]any)
	}

	return meta, nil
}

// write performs the atomic temp-file-plus-rename save. On any failure the
// temp file is removed and the canonical file is left untouched.
func (s *Store) write(meta *Metadata) error {
	if err := os.MkdirAll(s.Dir(), dirPerm); err != nil {
		return &Error{Reason: ReasonIO, msg: "create metadata directory", cause: err}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &Error{Reason: ReasonIO, msg: "encode metadata", cause: err}
	}

	tmpPath := s.FilePath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, filePerm); err != nil { // #nosec G306 - metadata should be user readable
		_ = os.Remove(tmpPath)
		return &Error{Reason: ReasonIO, msg: "write temp metadata file", cause: err}
	}

	if err := os.Rename(tmpPath, s.FilePath()); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Reason: ReasonIO, msg: "replace metadata file", cause: err}
	}

	return nil
}
