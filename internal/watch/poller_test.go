package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docsync/docsync/internal/model"
)

type stubRemote struct {
	docs    map[string]model.Document
	readErr map[string]error
}

func (s *stubRemote) Read(_ context.Context, uri string) (model.Document, error) {
	if err := s.readErr[uri]; err != nil {
		return model.Document{}, err
	}
	doc, ok := s.docs[uri]
	if !ok {
		return model.Document{}, errors.New("not found")
	}
	return doc, nil
}

func (s *stubRemote) Write(_ context.Context, uri string, doc model.Document) error {
	s.docs[uri] = doc
	return nil
}

type stubPairs struct {
	pairs []model.SyncPair
}

func (s *stubPairs) ListPairs() ([]model.SyncPair, error) {
	return s.pairs, nil
}

func pollPair(id, uri, knownContent string) model.SyncPair {
	return model.SyncPair{
		ID:        id,
		LocalPath: id + ".md",
		RemoteURI: uri,
		State: &model.SyncPairState{
			RemoteHash: model.Fingerprint(knownContent),
		},
	}
}

func TestPollerDetectsRemoteChange(t *testing.T) {
	remote := &stubRemote{docs: map[string]model.Document{
		"notion://a": {Content: "edited", ContentHash: model.Fingerprint("edited")},
		"notion://b": {Content: "stable", ContentHash: model.Fingerprint("stable")},
	}, readErr: map[string]error{}}

	pairs := &stubPairs{pairs: []model.SyncPair{
		pollPair("a", "notion://a", "original"),
		pollPair("b", "notion://b", "stable"),
	}}

	poller := NewPoller(remote, pairs, time.Hour)
	poller.pollOnce(context.Background())

	select {
	case change := <-poller.Changes():
		if change.Pair.ID != "a" {
			t.Errorf("change for pair %s, want a", change.Pair.ID)
		}
		if change.RemoteHash != model.Fingerprint("edited") {
			t.Errorf("RemoteHash = %s", change.RemoteHash)
		}
	default:
		t.Fatal("expected one remote change")
	}

	select {
	case change := <-poller.Changes():
		t.Errorf("unexpected second change: %+v", change)
	default:
	}
}

func TestPollerSkipsUnreachablePairs(t *testing.T) {
	remote := &stubRemote{
		docs: map[string]model.Document{
			"notion://b": {Content: "edited", ContentHash: model.Fingerprint("edited")},
		},
		readErr: map[string]error{"notion://a": errors.New("api down")},
	}

	pairs := &stubPairs{pairs: []model.SyncPair{
		pollPair("a", "notion://a", "x"),
		pollPair("b", "notion://b", "original"),
	}}

	poller := NewPoller(remote, pairs, time.Hour)
	poller.pollOnce(context.Background())

	select {
	case change := <-poller.Changes():
		if change.Pair.ID != "b" {
			t.Errorf("change for pair %s, want b", change.Pair.ID)
		}
	default:
		t.Fatal("an unreachable pair must not stall the rest")
	}
}

func TestPollerTreatsNilStateAsChanged(t *testing.T) {
	remote := &stubRemote{docs: map[string]model.Document{
		"notion://a": {Content: "content", ContentHash: model.Fingerprint("content")},
	}, readErr: map[string]error{}}

	pairs := &stubPairs{pairs: []model.SyncPair{{
		ID:        "a",
		LocalPath: "a.md",
		RemoteURI: "notion://a",
	}}}

	poller := NewPoller(remote, pairs, time.Hour)
	poller.pollOnce(context.Background())

	select {
	case <-poller.Changes():
	default:
		t.Fatal("a never-synced pair should always report as changed")
	}
}
