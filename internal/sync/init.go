package sync

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsync/docsync/internal/adapter"
	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/store"
	"github.com/docsync/docsync/internal/util"
)

// PageCreator creates a new remote page and returns its URI. The Notion
// adapter satisfies it; tests provide fakes.
type PageCreator interface {
	CreatePage(ctx context.Context, parentID, title string, doc model.Document) (string, error)
}

// InitResult reports which files were paired by an init run.
type InitResult struct {
	Created []model.SyncPair
	Skipped []string
}

// Initializer seeds the metadata store with sync pairs by scanning local
// markdown and creating matching remote pages.
type Initializer struct {
	store   *store.Store
	local   adapter.Adapter
	creator PageCreator
}

// NewInitializer creates an initializer over a store, a local adapter and a
// remote page creator.
func NewInitializer(st *store.Store, local adapter.Adapter, creator PageCreator) *Initializer {
	return &Initializer{store: st, local: local, creator: creator}
}

// InitDirectory scans dir for markdown files and creates a pair per file,
// pushing each file's content into a fresh remote page under parentID.
// Files that already belong to a pair are skipped, so re-running init picks
// up only new files. The store is saved once at the end.
func (i *Initializer) InitDirectory(ctx context.Context, dir, parentID string) (*InitResult, error) {
	defer logging.Timer("init_directory")()

	if err := i.store.Initialize(); err != nil {
		return nil, err
	}
	meta, err := i.store.Load()
	if err != nil {
		return nil, err
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, newError("resolving "+dir, err)
	}
	paths, err := findMarkdown(dir)
	if err != nil {
		return nil, newError("scanning "+dir, err)
	}

	base := i.store.BasePath()
	result := &InitResult{}
	for _, path := range paths {
		if _, ok := findPairByPath(meta, base, path); ok {
			result.Skipped = append(result.Skipped, relativePath(base, path))
			continue
		}

		pair, err := i.createPair(ctx, path, parentID)
		if err != nil {
			return nil, err
		}
		meta.Pairs[pair.ID] = pair
		result.Created = append(result.Created, pair)
	}

	if err := i.store.Save(meta); err != nil {
		return nil, err
	}

	logging.Info("init complete",
		logging.Path(dir),
		logging.Count(len(result.Created)),
	)
	return result, nil
}

// PairFile pairs a single markdown file with a fresh remote page under
// parentID and persists the pair.
func (i *Initializer) PairFile(ctx context.Context, path, parentID string) (model.SyncPair, error) {
	if err := i.store.Initialize(); err != nil {
		return model.SyncPair{}, err
	}
	meta, err := i.store.Load()
	if err != nil {
		return model.SyncPair{}, err
	}
	if id, ok := findPairByPath(meta, i.store.BasePath(), path); ok {
		return model.SyncPair{}, fmt.Errorf("%s is already paired with %s", path, meta.Pairs[id].RemoteURI)
	}

	pair, err := i.createPair(ctx, path, parentID)
	if err != nil {
		return model.SyncPair{}, err
	}
	meta.Pairs[pair.ID] = pair
	if err := i.store.Save(meta); err != nil {
		return model.SyncPair{}, err
	}
	return pair, nil
}

// AttachFile pairs a local file with an existing remote page without pushing
// anything. The pair starts with no recorded state, so the first sync
// classifies the two sides from scratch.
func (i *Initializer) AttachFile(ctx context.Context, path, remoteURI string) (model.SyncPair, error) {
	if err := i.store.Initialize(); err != nil {
		return model.SyncPair{}, err
	}
	meta, err := i.store.Load()
	if err != nil {
		return model.SyncPair{}, err
	}
	if id, ok := findPairByPath(meta, i.store.BasePath(), path); ok {
		return model.SyncPair{}, fmt.Errorf("%s is already paired with %s", path, meta.Pairs[id].RemoteURI)
	}

	pair := model.SyncPair{
		ID:                 uuid.NewString(),
		LocalPath:          relativePath(i.store.BasePath(), path),
		RemoteURI:          remoteURI,
		RemotePlatform:     model.Notion,
		CreatedAt:          time.Now(),
		SyncDirection:      model.Bidirectional,
		ConflictResolution: model.ResolveManual,
	}
	meta.Pairs[pair.ID] = pair
	if err := i.store.Save(meta); err != nil {
		return model.SyncPair{}, err
	}

	logging.Info("attached pair",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.URI(pair.RemoteURI),
	)
	return pair, nil
}

// createPair reads a local file, creates its remote page, and returns a pair
// whose state already records the pushed content as synced on both sides.
// The pair records the path relative to the store's base so the metadata
// file stays relocatable.
func (i *Initializer) createPair(ctx context.Context, path, parentID string) (model.SyncPair, error) {
	doc, err := i.local.Read(ctx, path)
	if err != nil {
		return model.SyncPair{}, newError("reading "+path, err)
	}

	uri, err := i.creator.CreatePage(ctx, parentID, doc.Metadata.Title, doc)
	if err != nil {
		return model.SyncPair{}, newError("creating remote page for "+path, err)
	}

	now := time.Now()
	pair := model.SyncPair{
		ID:             uuid.NewString(),
		LocalPath:      relativePath(i.store.BasePath(), path),
		RemoteURI:      uri,
		RemotePlatform: model.Notion,
		CreatedAt:      now,

		SyncDirection:      model.Bidirectional,
		ConflictResolution: model.ResolveManual,

		State: &model.SyncPairState{
			LocalHash:      doc.ContentHash,
			RemoteHash:     doc.ContentHash,
			LastSyncedHash: doc.ContentHash,
			LastSync:       now,
		},
	}

	logging.Info("created pair",
		logging.Pair(pair.ID),
		logging.Path(pair.LocalPath),
		logging.URI(pair.RemoteURI),
	)
	return pair, nil
}

// findMarkdown walks dir collecting *.md files, skipping hidden directories
// and the metadata directory.
func findMarkdown(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || name == util.MetadataDirName) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
