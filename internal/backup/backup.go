// Package backup snapshots local files before sync overwrites them.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/util"
)

const (
	// DirPerm is the permission for backup directories (rwxr-x---)
	DirPerm = 0o750
	// FilePerm is the permission for backup files (rw-r-----)
	FilePerm = 0o640
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"

	indexFilename = "index.json"
)

// Metadata describes a single backup snapshot.
type Metadata struct {
	ID         string    `json:"id"`
	SourcePath string    `json:"source_path"`
	BackupPath string    `json:"backup_path"`
	CreatedAt  time.Time `json:"created_at"`
	Hash       string    `json:"hash"`
	Size       int64     `json:"size"`
}

// Index is the on-disk record of all backups under one backup directory.
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"`
}

// Manager creates and prunes backups under a base directory's metadata dir.
type Manager struct {
	basePath string
	dir      string
}

// NewManager creates a backup manager rooted at basePath's backup directory.
// Relative source paths resolve against basePath, matching how pairs record
// their local paths.
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath, dir: util.BackupsDir(basePath)}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// BackupFile copies the file at sourcePath into the backup directory. A
// missing source is not an error: there is nothing to protect yet.
func (m *Manager) BackupFile(sourcePath string) (*Metadata, error) {
	readPath := sourcePath
	if !filepath.IsAbs(readPath) && m.basePath != "" {
		readPath = filepath.Join(m.basePath, readPath)
	}

	content, err := os.ReadFile(readPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read source %q: %w", sourcePath, err)
	}

	if err := os.MkdirAll(m.dir, DirPerm); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	hash := model.Fingerprint(string(content))
	id := time.Now().Format("20060102-150405-") + hash[:8]
	backupPath := filepath.Join(m.dir, id+filepath.Ext(sourcePath))

	if err := os.WriteFile(backupPath, content, FilePerm); err != nil {
		return nil, fmt.Errorf("write backup file: %w", err)
	}

	meta := Metadata{
		ID:         id,
		SourcePath: sourcePath,
		BackupPath: backupPath,
		CreatedAt:  time.Now(),
		Hash:       hash,
		Size:       int64(len(content)),
	}

	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}
	index.Backups[id] = meta
	if err := m.saveIndex(index); err != nil {
		return nil, err
	}

	logging.Debug("backed up file",
		logging.Path(sourcePath),
		logging.Operation("backup"),
	)
	return &meta, nil
}

// Hook adapts the manager to the engine's backup hook signature.
func (m *Manager) Hook() func(path string) error {
	return func(path string) error {
		_, err := m.BackupFile(path)
		return err
	}
}

// List returns all recorded backups, newest first.
func (m *Manager) List() ([]Metadata, error) {
	index, err := m.loadIndex()
	if err != nil {
		return nil, err
	}

	backups := make([]Metadata, 0, len(index.Backups))
	for _, meta := range index.Backups {
		backups = append(backups, meta)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

func (m *Manager) loadIndex() (*Index, error) {
	indexPath := filepath.Join(m.dir, indexFilename)

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return &Index{
			Version: IndexVersion,
			Updated: time.Now(),
			Backups: make(map[string]Metadata),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse backup index: %w", err)
	}
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}
	return &index, nil
}

func (m *Manager) saveIndex(index *Index) error {
	if err := os.MkdirAll(m.dir, DirPerm); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	index.Updated = time.Now()
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup index: %w", err)
	}

	indexPath := filepath.Join(m.dir, indexFilename)
	if err := os.WriteFile(indexPath, data, FilePerm); err != nil {
		return fmt.Errorf("write backup index: %w", err)
	}
	return nil
}
