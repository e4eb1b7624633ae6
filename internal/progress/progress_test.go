package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsync/docsync/internal/ui"
)

func TestBarDisabledForNonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer

	b := New(Options{Max: 10, Description: "Syncing", Writer: &buf})
	assert.False(t, b.enabled)

	// All operations are no-ops when the bar is hidden.
	require.NoError(t, b.Set(5))
	require.NoError(t, b.Add(1))
	b.Describe("still syncing")
	require.NoError(t, b.Finish())
	require.NoError(t, b.Clear())
	assert.Empty(t, buf.String())
}

func TestBarDisabledWhenColorsOff(t *testing.T) {
	ui.DisableColors()
	t.Cleanup(ui.EnableColors)

	b := Simple(3, "Syncing")
	assert.False(t, b.enabled)
	assert.Equal(t, "Syncing", b.desc)
}

func TestDescribeUpdatesHiddenBar(t *testing.T) {
	var buf bytes.Buffer

	b := New(Options{Max: 2, Description: "first", Writer: &buf})
	b.Describe("second")
	assert.Equal(t, "second", b.desc)
}
