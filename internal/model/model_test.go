package model

import (
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("# Hello\n\nworld")
		b := Fingerprint("# Hello\n\nworld")
		if a != b {
			t.Errorf("same content produced different fingerprints: %s vs %s", a, b)
		}
	})

	t.Run("distinct content", func(t *testing.T) {
		if Fingerprint("a") == Fingerprint("b") {
			t.Error("different content produced the same fingerprint")
		}
	})

	t.Run("hex sha256 length", func(t *testing.T) {
		fp := Fingerprint("")
		if len(fp) != 64 {
			t.Errorf("fingerprint length = %d, want 64", len(fp))
		}
	})
}

func TestDocumentHash(t *testing.T) {
	doc := Document{Content: "content"}
	if doc.Hash() != Fingerprint("content") {
		t.Error("Hash() did not compute fingerprint of content")
	}

	// A populated ContentHash takes precedence over recomputation.
	doc.ContentHash = "abc"
	if doc.Hash() != "abc" {
		t.Errorf("Hash() = %q, want precomputed %q", doc.Hash(), "abc")
	}
}

func TestPlatformIsValid(t *testing.T) {
	if !Notion.IsValid() {
		t.Error("notion should be valid")
	}
	if Platform("gdocs").IsValid() {
		t.Error("unknown platform should be invalid")
	}
}

func TestSyncDirectionIsValid(t *testing.T) {
	for _, d := range []SyncDirection{Bidirectional, PushOnly, PullOnly} {
		if !d.IsValid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if SyncDirection("sideways").IsValid() {
		t.Error("unknown direction should be invalid")
	}
}

func TestConflictResolutionIsValid(t *testing.T) {
	for _, r := range []ConflictResolution{ResolveManual, ResolveLocalWins, ResolveRemoteWins, ResolveLatestWins} {
		if !r.IsValid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if ConflictResolution("coin_flip").IsValid() {
		t.Error("unknown resolution should be invalid")
	}
}

func TestPairBaseHash(t *testing.T) {
	pair := &SyncPair{ID: "p1"}
	if pair.BaseHash() != "" {
		t.Errorf("BaseHash() before first sync = %q, want empty", pair.BaseHash())
	}

	pair.State = &SyncPairState{
		LocalHash:      "h",
		RemoteHash:     "h",
		LastSyncedHash: "h",
		LastSync:       time.Now(),
	}
	if pair.BaseHash() != "h" {
		t.Errorf("BaseHash() = %q, want %q", pair.BaseHash(), "h")
	}
}

func TestSyncResultStatus(t *testing.T) {
	tests := []struct {
		status   SyncStatus
		success  bool
		conflict bool
	}{
		{StatusSuccess, true, false},
		{StatusNoChanges, true, false},
		{StatusConflict, false, true},
		{StatusError, false, false},
	}

	for _, tt := range tests {
		r := SyncResult{Status: tt.status}
		if r.IsSuccess() != tt.success {
			t.Errorf("%s: IsSuccess() = %v, want %v", tt.status, r.IsSuccess(), tt.success)
		}
		if r.IsConflict() != tt.conflict {
			t.Errorf("%s: IsConflict() = %v, want %v", tt.status, r.IsConflict(), tt.conflict)
		}
	}
}
