package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Output: &buf,
	})

	logger.Debug("debug message", Path("notes/a.md"))

	out := buf.String()
	if !strings.Contains(out, "debug message") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "path=notes/a.md") {
		t.Errorf("output missing path attribute: %s", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelInfo,
		Output: &buf,
		JSON:   true,
	})

	logger.Info("sync complete", Pair("p1"), Count(3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "sync complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "sync complete")
	}
	if entry[KeyPair] != "p1" {
		t.Errorf("pair = %v, want %q", entry[KeyPair], "p1")
	}
	if entry[KeyCount] != float64(3) {
		t.Errorf("count = %v, want 3", entry[KeyCount])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelWarn,
		Output: &buf,
	})

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn message missing at warn level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf})

	ctx := NewContext(context.Background(), logger)
	got := FromContext(ctx)
	if got != logger {
		t.Error("FromContext did not return the attached logger")
	}

	if FromContext(context.Background()) != nil {
		t.Error("FromContext on bare context should return nil")
	}

	if WithContext(ctx) != logger {
		t.Error("WithContext did not prefer the context logger")
	}
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"pair", Pair("abc"), KeyPair, "abc"},
		{"platform", Platform("notion"), KeyPlatform, "notion"},
		{"path", Path("a.md"), KeyPath, "a.md"},
		{"uri", URI("notion://xyz"), KeyURI, "notion://xyz"},
		{"operation", Operation("sync"), KeyOperation, "sync"},
		{"decision", Decision("push"), KeyDecision, "push"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value.String() != tt.want {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.want)
			}
		})
	}
}

func TestErrNil(t *testing.T) {
	attr := Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) should return empty attribute, got key %q", attr.Key)
	}
}
