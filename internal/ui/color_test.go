package ui

import (
	"strings"
	"testing"

	"github.com/docsync/docsync/internal/model"
)

func TestStatusHelpers(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name string
		fn   func(string) string
		sym  string
	}{
		{"success", StatusSuccess, SymbolSuccess},
		{"error", StatusError, SymbolError},
		{"conflict", StatusConflict, SymbolConflict},
		{"skipped", StatusSkipped, SymbolSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(""); got != tt.sym {
				t.Errorf("bare symbol = %q, want %q", got, tt.sym)
			}
			if got := tt.fn("details"); !strings.HasPrefix(got, tt.sym+" ") || !strings.HasSuffix(got, "details") {
				t.Errorf("with message = %q", got)
			}
		})
	}
}

func TestStatusSymbol(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		status model.SyncStatus
		want   string
	}{
		{model.StatusSuccess, SymbolSuccess},
		{model.StatusConflict, SymbolConflict},
		{model.StatusError, SymbolError},
		{model.StatusNoChanges, SymbolSkipped},
	}
	for _, tt := range tests {
		if got := StatusSymbol(tt.status); got != tt.want {
			t.Errorf("StatusSymbol(%v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPlatformLabel(t *testing.T) {
	if got := PlatformLabel(model.Notion); got != "Notion" {
		t.Errorf("PlatformLabel = %q, want Notion", got)
	}
}

func TestColorToggles(t *testing.T) {
	EnableColors()
	if !IsColorEnabled() {
		t.Error("colors should be enabled")
	}
	DisableColors()
	if IsColorEnabled() {
		t.Error("colors should be disabled")
	}
	EnableColors()
}
