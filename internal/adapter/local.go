package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docsync/docsync/internal/model"
)

const frontMatterDelimiter = "---"

// Local reads and writes markdown files with YAML front matter on the local
// filesystem. URIs are plain paths or file:// paths; relative paths resolve
// against the adapter's base directory.
type Local struct {
	basePath string
}

// NewLocal creates a local adapter rooted at basePath. An empty basePath
// resolves relative URIs against the working directory.
func NewLocal(basePath string) *Local {
	return &Local{basePath: basePath}
}

// Read loads a markdown file, splits off its front matter, and returns the
// document with the content fingerprint computed over the body only.
func (l *Local) Read(ctx context.Context, uri string) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	path := l.resolve(uri)

	info, err := os.Stat(path)
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}
	if info.IsDir() {
		return model.Document{}, NewError("read", uri, fmt.Errorf("not a file: %s", path))
	}

	raw, err := os.ReadFile(path) // #nosec G304 - path comes from the pair configuration
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	front, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return model.Document{}, NewError("read", uri, err)
	}

	meta := metadataFromFrontMatter(front)
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if meta.ModifiedAt.IsZero() {
		meta.ModifiedAt = info.ModTime()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = meta.ModifiedAt
	}

	return model.Document{
		Content:     body,
		Metadata:    meta,
		ContentHash: model.Fingerprint(body),
	}, nil
}

// Write renders the document with YAML front matter and writes it to the
// addressed path, creating parent directories as needed.
func (l *Local) Write(ctx context.Context, uri string, doc model.Document) error {
	if err := ctx.Err(); err != nil {
		return NewError("write", uri, err)
	}

	path := l.resolve(uri)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return NewError("write", uri, err)
	}

	rendered, err := renderFrontMatter(doc)
	if err != nil {
		return NewError("write", uri, err)
	}

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil { // #nosec G306 - documents should be user readable
		return NewError("write", uri, err)
	}
	return nil
}

// Exists reports whether the addressed file exists.
func (l *Local) Exists(uri string) bool {
	info, err := os.Stat(l.resolve(uri))
	return err == nil && !info.IsDir()
}

func (l *Local) resolve(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if filepath.IsAbs(path) || l.basePath == "" {
		return path
	}
	return filepath.Join(l.basePath, path)
}

// splitFrontMatter separates a leading YAML front matter block from the
// markdown body. Content without front matter is returned unchanged.
func splitFrontMatter(raw string) (map[string]any, string, error) {
	if !strings.HasPrefix(raw, frontMatterDelimiter+"\n") {
		return nil, raw, nil
	}

	rest := raw[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		// Unterminated front matter is treated as body content.
		return nil, raw, nil
	}

	var front map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &front); err != nil {
		return nil, "", fmt.Errorf("parse front matter: %w", err)
	}

	body := rest[end+len(frontMatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")
	return front, body, nil
}

func metadataFromFrontMatter(front map[string]any) model.DocumentMetadata {
	meta := model.DocumentMetadata{}
	if len(front) == 0 {
		return meta
	}

	props := make(map[string]any)
	for key, value := range front {
		switch key {
		case "title":
			if s, ok := value.(string); ok {
				meta.Title = s
			}
		case "created_at":
			meta.CreatedAt = parseTimeValue(value)
		case "modified_at":
			meta.ModifiedAt = parseTimeValue(value)
		case "tags":
			meta.Tags = toStringSlice(value)
		default:
			props[key] = value
		}
	}
	if len(props) > 0 {
		meta.Properties = props
	}
	return meta
}

func renderFrontMatter(doc model.Document) (string, error) {
	front := map[string]any{
		"title":       doc.Metadata.Title,
		"created_at":  doc.Metadata.CreatedAt.Format(time.RFC3339),
		"modified_at": doc.Metadata.ModifiedAt.Format(time.RFC3339),
	}
	if len(doc.Metadata.Tags) > 0 {
		front["tags"] = doc.Metadata.Tags
	}
	for key, value := range doc.Metadata.Properties {
		front[key] = value
	}

	encoded, err := yaml.Marshal(front)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(encoded)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(doc.Content)
	return sb.String(), nil
}

func parseTimeValue(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
