package sync

import (
	"strings"
	"testing"
)

func TestComputeDiffNoDifferences(t *testing.T) {
	lines := []string{"one", "two", "three"}
	if hunks := ComputeDiff(lines, lines); len(hunks) != 0 {
		t.Errorf("identical inputs produced %d hunks, want 0", len(hunks))
	}
}

func TestComputeDiffSingleChange(t *testing.T) {
	local := []string{"one", "two", "three"}
	remote := []string{"one", "2", "three"}

	hunks := ComputeDiff(local, remote)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}

	hunk := hunks[0]
	if hunk.LocalStart != 2 || hunk.RemoteStart != 2 {
		t.Errorf("hunk starts at (%d, %d), want (2, 2)", hunk.LocalStart, hunk.RemoteStart)
	}

	var removed, added []string
	for _, line := range hunk.Lines {
		switch line.Type {
		case DiffLineRemoved:
			removed = append(removed, line.Content)
		case DiffLineAdded:
			added = append(added, line.Content)
		}
	}
	if len(removed) != 1 || removed[0] != "two" {
		t.Errorf("removed = %v, want [two]", removed)
	}
	if len(added) != 1 || added[0] != "2" {
		t.Errorf("added = %v, want [2]", added)
	}
}

func TestComputeDiffPureAddition(t *testing.T) {
	local := []string{"one", "two"}
	remote := []string{"one", "two", "three"}

	summary := Summarize(ComputeDiff(local, remote))
	if summary.Additions != 1 || summary.Deletions != 0 || summary.Changes != 0 {
		t.Errorf("summary = %+v, want one addition", summary)
	}
}

func TestComputeDiffPureDeletion(t *testing.T) {
	local := []string{"one", "two", "three"}
	remote := []string{"one", "three"}

	summary := Summarize(ComputeDiff(local, remote))
	if summary.Deletions != 1 || summary.Additions != 0 || summary.Changes != 0 {
		t.Errorf("summary = %+v, want one deletion", summary)
	}
}

func TestSummarizePairsRemovedWithAdded(t *testing.T) {
	hunks := []DiffHunk{{
		Lines: []DiffLine{
			{Type: DiffLineRemoved, Content: "old a"},
			{Type: DiffLineRemoved, Content: "old b"},
			{Type: DiffLineAdded, Content: "new a"},
		},
	}}

	summary := Summarize(hunks)
	if summary.Changes != 1 || summary.Deletions != 1 || summary.Additions != 0 {
		t.Errorf("summary = %+v, want 1 change and 1 deletion", summary)
	}
	if summary.Total() != 2 {
		t.Errorf("Total() = %d, want 2", summary.Total())
	}
}

func TestComputeDiffDisjointContent(t *testing.T) {
	local := []string{"entirely", "local"}
	remote := []string{"fully", "remote", "lines"}

	summary := Summarize(ComputeDiff(local, remote))
	if summary.Total() != 3 {
		t.Errorf("Total() = %d, want 3 (2 changes + 1 addition)", summary.Total())
	}
}

func TestFormatUnified(t *testing.T) {
	hunks := ComputeDiff(
		[]string{"one", "two", "three"},
		[]string{"one", "2", "three"},
	)

	out := FormatUnified(hunks, "LOCAL", "REMOTE", 0)

	for _, want := range []string{"--- LOCAL", "+++ REMOTE", "@@ -2,1 +2,1 @@", "-two", "+2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatUnifiedTruncates(t *testing.T) {
	var local, remote []string
	for i := 0; i < 50; i++ {
		local = append(local, "local")
		remote = append(remote, "remote")
	}

	out := FormatUnified(ComputeDiff(local, remote), "a", "b", 5)
	if !strings.Contains(out, "(diff truncated)") {
		t.Error("long diff should be truncated")
	}
	if n := len(strings.Split(out, "\n")); n > 10 {
		t.Errorf("truncated output has %d lines", n)
	}
}

func TestConflictMarkers(t *testing.T) {
	out := ConflictMarkers("local text", "remote text", "LOCAL", "REMOTE")

	want := "<<<<<<< LOCAL\nlocal text\n=======\nremote text\n>>>>>>> REMOTE\n"
	if out != want {
		t.Errorf("ConflictMarkers = %q, want %q", out, want)
	}
}

func TestLongestCommonSubsequence(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		remote []string
		want   []string
	}{
		{"empty local", nil, []string{"a"}, nil},
		{"empty remote", []string{"a"}, nil, nil},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, []string{"a", "b"}},
		{"interleaved", []string{"a", "x", "b"}, []string{"a", "b", "y"}, []string{"a", "b"}},
		{"disjoint", []string{"a"}, []string{"b"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longestCommonSubsequence(tt.local, tt.remote)
			if len(got) != len(tt.want) {
				t.Fatalf("lcs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("lcs = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
