// Package outcome persists evaluated decisions as compressed JSON
// records so reports and comparisons can be produced later without
// re-running the engine.
package outcome

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// FileExt is the extension decision records are stored under.
const FileExt = ".json.zst"

// Shared stateless codecs; EncodeAll/DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Store reads and writes decision records under a single directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating outcome directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path a decision ID is stored at.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+FileExt)
}

// Write persists a decision and returns the path it was written to.
// A missing ID or timestamp is filled in here; the engine itself never
// sets either, so repeated evaluations stay bit-identical.
func (s *Store) Write(d *models.Decision) (string, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.EvaluatedAt.IsZero() {
		d.EvaluatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshaling decision %s: %w", d.ID, err)
	}

	path := s.Path(d.ID)
	compressed := encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return "", fmt.Errorf("writing decision %s: %w", d.ID, err)
	}
	return path, nil
}

// Load reads one decision record by ID.
func (s *Store) Load(id string) (*models.Decision, error) {
	return ReadFile(s.Path(id))
}

// List returns every readable decision in the store, newest first.
// Unreadable entries are skipped rather than failing the whole listing.
func (s *Store) List() ([]*models.Decision, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading outcome directory: %w", err)
	}

	var decisions []*models.Decision
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExt) {
			continue
		}
		d, err := ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		decisions = append(decisions, d)
	}

	sort.Slice(decisions, func(i, j int) bool {
		if !decisions[i].EvaluatedAt.Equal(decisions[j].EvaluatedAt) {
			return decisions[i].EvaluatedAt.After(decisions[j].EvaluatedAt)
		}
		return decisions[i].ID < decisions[j].ID
	})
	return decisions, nil
}

// ReadFile reads a single decision record from an arbitrary path.
func ReadFile(path string) (*models.Decision, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}

	var d models.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &d, nil
}
