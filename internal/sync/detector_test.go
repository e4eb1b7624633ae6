package sync

import (
	"testing"

	"github.com/docsync/docsync/internal/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		local      string
		remote     string
		base       string
		wantStatus model.SyncStatus
		wantPush   bool
		wantPull   bool
	}{
		{
			name:       "all equal",
			local:      "aaa",
			remote:     "aaa",
			base:       "aaa",
			wantStatus: model.StatusNoChanges,
		},
		{
			name:       "equal sides diverged base",
			local:      "aaa",
			remote:     "aaa",
			base:       "bbb",
			wantStatus: model.StatusNoChanges,
		},
		{
			name:       "local changed only",
			local:      "bbb",
			remote:     "aaa",
			base:       "aaa",
			wantStatus: model.StatusPush,
			wantPush:   true,
		},
		{
			name:       "remote changed only",
			local:      "aaa",
			remote:     "bbb",
			base:       "aaa",
			wantStatus: model.StatusPull,
			wantPull:   true,
		},
		{
			name:       "both changed",
			local:      "bbb",
			remote:     "ccc",
			base:       "aaa",
			wantStatus: model.StatusConflict,
		},
		{
			name:       "first sync identical",
			local:      "aaa",
			remote:     "aaa",
			base:       "",
			wantStatus: model.StatusNoChanges,
		},
		{
			name:       "first sync differing content is a conflict",
			local:      "aaa",
			remote:     "bbb",
			base:       "",
			wantStatus: model.StatusConflict,
		},
		{
			name:       "empty local hash matches empty base",
			local:      "",
			remote:     "bbb",
			base:       "",
			wantStatus: model.StatusPull,
			wantPull:   true,
		},
		{
			name:       "empty remote hash matches empty base",
			local:      "aaa",
			remote:     "",
			base:       "",
			wantStatus: model.StatusPush,
			wantPush:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.local, tt.remote, tt.base)
			if got.Status != tt.wantStatus {
				t.Errorf("Detect(%q, %q, %q).Status = %v, want %v",
					tt.local, tt.remote, tt.base, got.Status, tt.wantStatus)
			}
			if got.ShouldPush != tt.wantPush {
				t.Errorf("ShouldPush = %v, want %v", got.ShouldPush, tt.wantPush)
			}
			if got.ShouldPull != tt.wantPull {
				t.Errorf("ShouldPull = %v, want %v", got.ShouldPull, tt.wantPull)
			}
			if got.Reason == "" {
				t.Error("Reason should never be empty")
			}
		})
	}
}

func TestDetectEqualSidesAlwaysNoChanges(t *testing.T) {
	hashes := []string{"", "aaa", "bbb", model.Fingerprint("content")}
	bases := []string{"", "aaa", "ccc"}

	for _, h := range hashes {
		for _, base := range bases {
			got := Detect(h, h, base)
			if got.Status != model.StatusNoChanges {
				t.Errorf("Detect(%q, %q, %q) = %v, want no_changes", h, h, base, got.Status)
			}
		}
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	first := Detect("aaa", "bbb", "ccc")
	for i := 0; i < 10; i++ {
		if got := Detect("aaa", "bbb", "ccc"); got != first {
			t.Fatalf("Detect returned %+v, previously %+v", got, first)
		}
	}
}
