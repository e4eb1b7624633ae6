package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/docsync/docsync/internal/model"
)

// memAdapter is an in-memory Adapter for tests.
type memAdapter struct {
	docs     map[string]model.Document
	readErr  map[string]error
	writeErr map[string]error
	writes   int
	onRead   func(uri string)
}

func newMemAdapter() *memAdapter {
	return &memAdapter{
		docs:     make(map[string]model.Document),
		readErr:  make(map[string]error),
		writeErr: make(map[string]error),
	}
}

func (m *memAdapter) set(uri, content string) {
	m.docs[uri] = model.Document{
		Content:     content,
		ContentHash: model.Fingerprint(content),
	}
}

func (m *memAdapter) Read(_ context.Context, uri string) (model.Document, error) {
	if m.onRead != nil {
		m.onRead(uri)
	}
	if err := m.readErr[uri]; err != nil {
		return model.Document{}, err
	}
	doc, ok := m.docs[uri]
	if !ok {
		return model.Document{}, errors.New("not found: " + uri)
	}
	return doc, nil
}

func (m *memAdapter) Write(_ context.Context, uri string, doc model.Document) error {
	if err := m.writeErr[uri]; err != nil {
		return err
	}
	m.writes++
	m.docs[uri] = doc
	return nil
}

func testPair(localPath, remoteURI, baseContent string) *model.SyncPair {
	pair := &model.SyncPair{
		ID:                 "pair-1",
		LocalPath:          localPath,
		RemoteURI:          remoteURI,
		RemotePlatform:     model.Notion,
		SyncDirection:      model.Bidirectional,
		ConflictResolution: model.ResolveManual,
	}
	if baseContent != "" {
		hash := model.Fingerprint(baseContent)
		pair.State = &model.SyncPairState{
			LocalHash:      hash,
			RemoteHash:     hash,
			LastSyncedHash: hash,
		}
	}
	return pair
}

func TestEngineFirstSyncIdenticalContent(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "same content")
	remote.set("notion://p1", "same content")

	pair := testPair("notes.md", "notion://p1", "")
	engine := NewEngine(local, remote)

	result, err := engine.SyncPair(context.Background(), pair, DirectionNone)
	if err != nil {
		t.Fatalf("SyncPair: %v", err)
	}
	if result.Status != model.StatusNoChanges {
		t.Errorf("Status = %v, want no_changes", result.Status)
	}
	if pair.State != nil {
		t.Error("no-changes on a fresh pair should not create state")
	}
}

func TestEngineLocalChangePushes(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "edited locally")
	remote.set("notion://p1", "original")

	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote)

	result, err := engine.SyncPair(context.Background(), pair, DirectionNone)
	if err != nil {
		t.Fatalf("SyncPair: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}

	if got := remote.docs["notion://p1"].Content; got != "edited locally" {
		t.Errorf("remote content = %q, want pushed local content", got)
	}

	wantHash := model.Fingerprint("edited locally")
	st := pair.State
	if st.LocalHash != wantHash || st.RemoteHash != wantHash || st.LastSyncedHash != wantHash {
		t.Errorf("state hashes = (%s, %s, %s), want all %s",
			st.LocalHash, st.RemoteHash, st.LastSyncedHash, wantHash)
	}
	if st.HasConflict {
		t.Error("HasConflict should be false after a successful push")
	}
	if st.LastSync.IsZero() {
		t.Error("LastSync should be set after a successful push")
	}
}

func TestEngineRemoteChangePulls(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "original")
	remote.set("notion://p1", "edited remotely")

	var backedUp []string
	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote, WithLocalBackup(func(path string) error {
		backedUp = append(backedUp, path)
		return nil
	}))

	result, err := engine.SyncPair(context.Background(), pair, DirectionNone)
	if err != nil {
		t.Fatalf("SyncPair: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}

	if got := local.docs["notes.md"].Content; got != "edited remotely" {
		t.Errorf("local content = %q, want pulled remote content", got)
	}
	if len(backedUp) != 1 || backedUp[0] != "notes.md" {
		t.Errorf("backup hook calls = %v, want [notes.md]", backedUp)
	}
	if want := model.Fingerprint("edited remotely"); pair.State.LastSyncedHash != want {
		t.Errorf("LastSyncedHash = %s, want %s", pair.State.LastSyncedHash, want)
	}
}

func TestEngineBothChangedConflicts(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "local edit")
	remote.set("notion://p1", "remote edit")

	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote)

	_, err := engine.SyncPair(context.Background(), pair, DirectionNone)

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if conflictErr.LocalPath != "notes.md" {
		t.Errorf("LocalPath = %q, want notes.md", conflictErr.LocalPath)
	}
	if !pair.State.HasConflict {
		t.Error("HasConflict should be set on the pair state")
	}
	if remote.writes != 0 || local.writes != 0 {
		t.Error("a conflict must not write to either side")
	}
	if pair.State.LastSyncedHash != model.Fingerprint("original") {
		t.Error("base hash must be untouched by a conflict")
	}
}

func TestEngineForcePushOverridesConflict(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "local edit")
	remote.set("notion://p1", "remote edit")

	pair := testPair("notes.md", "notion://p1", "original")
	pair.State.HasConflict = true
	engine := NewEngine(local, remote)

	result, err := engine.SyncPair(context.Background(), pair, DirectionPush)
	if err != nil {
		t.Fatalf("SyncPair: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}
	if got := remote.docs["notion://p1"].Content; got != "local edit" {
		t.Errorf("remote content = %q, want local edit", got)
	}
	if pair.State.HasConflict {
		t.Error("HasConflict should be cleared by a forced sync")
	}
}

func TestEngineForcePullOverridesConflict(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "local edit")
	remote.set("notion://p1", "remote edit")

	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote)

	result, err := engine.Pull(context.Background(), pair)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("Status = %v, want success", result.Status)
	}
	if got := local.docs["notes.md"].Content; got != "remote edit" {
		t.Errorf("local content = %q, want remote edit", got)
	}
}

func TestEngineInvalidForceDirection(t *testing.T) {
	engine := NewEngine(newMemAdapter(), newMemAdapter())
	pair := testPair("notes.md", "notion://p1", "")

	_, err := engine.SyncPair(context.Background(), pair, Direction("sideways"))
	if err == nil {
		t.Fatal("expected an error for an invalid direction")
	}
}

func TestEngineReadFailureRecordsLastError(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "content")
	remote.readErr["notion://p1"] = errors.New("api unavailable")

	pair := testPair("notes.md", "notion://p1", "content")
	engine := NewEngine(local, remote)

	_, err := engine.SyncPair(context.Background(), pair, DirectionNone)

	var syncErr *Error
	if !errors.As(err, &syncErr) {
		t.Fatalf("err = %v, want *sync.Error", err)
	}
	if pair.State.LastError == "" {
		t.Error("LastError should record the failure")
	}
	if pair.State.HasConflict {
		t.Error("a read failure is not a conflict")
	}
}

func TestEngineWriteFailureLeavesStateUncommitted(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "edited locally")
	remote.set("notion://p1", "original")
	remote.writeErr["notion://p1"] = errors.New("permission denied")

	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote)

	_, err := engine.SyncPair(context.Background(), pair, DirectionNone)
	if err == nil {
		t.Fatal("expected push failure")
	}
	if pair.State.LastSyncedHash != model.Fingerprint("original") {
		t.Error("failed push must not advance the base hash")
	}
}

func TestEngineIdempotentAfterSync(t *testing.T) {
	local := newMemAdapter()
	remote := newMemAdapter()
	local.set("notes.md", "edited locally")
	remote.set("notion://p1", "original")

	pair := testPair("notes.md", "notion://p1", "original")
	engine := NewEngine(local, remote)

	if _, err := engine.SyncPair(context.Background(), pair, DirectionNone); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	result, err := engine.SyncPair(context.Background(), pair, DirectionNone)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Status != model.StatusNoChanges {
		t.Errorf("second sync Status = %v, want no_changes", result.Status)
	}
	if remote.writes != 1 {
		t.Errorf("remote writes = %d, want 1", remote.writes)
	}
}
