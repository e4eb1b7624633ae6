package sync

import (
	"fmt"
	"strings"
)

// DiffLineType indicates the type of a diff line.
type DiffLineType string

const (
	// DiffLineContext is an unchanged line (context).
	DiffLineContext DiffLineType = " "

	// DiffLineAdded is a line present only in the remote version.
	DiffLineAdded DiffLineType = "+"

	// DiffLineRemoved is a line present only in the local version.
	DiffLineRemoved DiffLineType = "-"
)

// DiffLine is a single line in a diff.
type DiffLine struct {
	Type    DiffLineType
	Content string
}

// String returns the prefixed representation of the diff line.
func (dl DiffLine) String() string {
	return string(dl.Type) + dl.Content
}

// DiffHunk is a contiguous block of changes.
type DiffHunk struct {
	LocalStart  int
	LocalCount  int
	RemoteStart int
	RemoteCount int
	Lines       []DiffLine
}

// ChangeSummary counts line-level differences between two versions.
type ChangeSummary struct {
	Additions int
	Deletions int
	Changes   int
}

// Total returns the total number of changed lines.
func (c ChangeSummary) Total() int {
	return c.Additions + c.Deletions + c.Changes
}

// ComputeDiff computes diff hunks between local and remote line slices using
// a longest-common-subsequence guide.
func ComputeDiff(local, remote []string) []DiffHunk {
	lcs := longestCommonSubsequence(local, remote)

	var hunks []DiffHunk
	var current *DiffHunk

	localIdx, remoteIdx, lcsIdx := 0, 0, 0

	for localIdx < len(local) || remoteIdx < len(remote) {
		inLCS := lcsIdx < len(lcs) &&
			localIdx < len(local) &&
			remoteIdx < len(remote) &&
			local[localIdx] == lcs[lcsIdx] &&
			remote[remoteIdx] == lcs[lcsIdx]

		if inLCS {
			// Common line closes any open hunk with one context line.
			if current != nil {
				current.Lines = append(current.Lines, DiffLine{
					Type:    DiffLineContext,
					Content: local[localIdx],
				})
				hunks = append(hunks, *current)
				current = nil
			}
			localIdx++
			remoteIdx++
			lcsIdx++
			continue
		}

		if current == nil {
			current = &DiffHunk{
				LocalStart:  localIdx + 1,
				RemoteStart: remoteIdx + 1,
			}
		}

		if localIdx < len(local) && (lcsIdx >= len(lcs) || local[localIdx] != lcs[lcsIdx]) {
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineRemoved,
				Content: local[localIdx],
			})
			current.LocalCount++
			localIdx++
		}

		if remoteIdx < len(remote) && (lcsIdx >= len(lcs) || remote[remoteIdx] != lcs[lcsIdx]) {
			current.Lines = append(current.Lines, DiffLine{
				Type:    DiffLineAdded,
				Content: remote[remoteIdx],
			})
			current.RemoteCount++
			remoteIdx++
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}

	return hunks
}

// Summarize reduces hunks to addition/deletion/change counts. A removed line
// paired with an added line in the same hunk counts as one change.
func Summarize(hunks []DiffHunk) ChangeSummary {
	var summary ChangeSummary
	for _, hunk := range hunks {
		removed, added := 0, 0
		for _, line := range hunk.Lines {
			switch line.Type {
			case DiffLineRemoved:
				removed++
			case DiffLineAdded:
				added++
			}
		}
		paired := min(removed, added)
		summary.Changes += paired
		summary.Deletions += removed - paired
		summary.Additions += added - paired
	}
	return summary
}

// FormatUnified renders hunks in a unified-diff-like form, truncated to at
// most maxLines lines of diff output. maxLines <= 0 means unbounded.
func FormatUnified(hunks []DiffHunk, localLabel, remoteLabel string, maxLines int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- %s\n", localLabel))
	sb.WriteString(fmt.Sprintf("+++ %s\n", remoteLabel))

	written := 0
	for _, hunk := range hunks {
		if maxLines > 0 && written >= maxLines {
			sb.WriteString("... (diff truncated)\n")
			return sb.String()
		}

		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.LocalStart, hunk.LocalCount,
			hunk.RemoteStart, hunk.RemoteCount))
		written++

		for _, line := range hunk.Lines {
			if maxLines > 0 && written >= maxLines {
				sb.WriteString("... (diff truncated)\n")
				return sb.String()
			}
			sb.WriteString(line.String())
			sb.WriteString("\n")
			written++
		}
	}

	return sb.String()
}

// ConflictMarkers renders both versions with git-style markers for a manual
// merge in an external editor.
func ConflictMarkers(localContent, remoteContent, localLabel, remoteLabel string) string {
	return fmt.Sprintf("<<<<<<< %s\n%s\n=======\n%s\n>>>>>>> %s\n",
		localLabel, localContent, remoteContent, remoteLabel)
}

// longestCommonSubsequence finds the LCS of two string slices.
func longestCommonSubsequence(local, remote []string) []string {
	m, n := len(local), len(remote)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if local[i-1] == remote[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	lcs := make([]string, dp[m][n])
	i, j, idx := m, n, dp[m][n]-1

	for i > 0 && j > 0 {
		if local[i-1] == remote[j-1] {
			lcs[idx] = local[i-1]
			i--
			j--
			idx--
		} else if dp[i-1][j] > dp[i][j-1] {
			i--
		} else {
			j--
		}
	}

	return lcs
}
