package util

import (
	"os"
	"path/filepath"
)

// MetadataDirName is the directory docsync keeps its state in, relative to
// the synced root.
const MetadataDirName = ".docsync"

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// DocsyncConfigPath returns the user-level docsync config directory
func DocsyncConfigPath() string {
	return filepath.Join(HomeDir(), ".docsync")
}

// MetadataDir returns the metadata directory for a synced root
func MetadataDir(basePath string) string {
	return filepath.Join(basePath, MetadataDirName)
}

// BackupsDir returns the backup directory for a synced root
func BackupsDir(basePath string) string {
	return filepath.Join(MetadataDir(basePath), "backups")
}
