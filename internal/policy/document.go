package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the opaque handle minted when a raw configuration is
// loaded. The cache keys compiled policies by handle identity, so two
// loads of the same file are independent cache entries and a reload
// naturally picks up edits.
type Document struct {
	raw    map[string]any
	source string
}

// NewDocument wraps an in-memory raw configuration in a fresh handle.
func NewDocument(raw map[string]any) *Document {
	return &Document{raw: raw}
}

// LoadDocument reads a YAML policy document and mints a handle for it.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing policy %s: %w", path, err)
	}

	return &Document{raw: raw, source: path}, nil
}

// Raw returns the underlying configuration map. Callers must treat it
// as read-only; the compiler reads it, nothing writes it.
func (d *Document) Raw() map[string]any {
	if d == nil {
		return nil
	}
	return d.raw
}

// Source returns the file the document was loaded from, if any.
func (d *Document) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}
