package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// CacheFilename is the name of the persisted catalog document inside the
// cache directory.
const CacheFilename = "metadata.json"

// Document is the persisted catalog schema. It round-trips losslessly: a
// Save followed by a Load yields equal books and progress.
type Document struct {
	SavedAt  time.Time        `json:"mtime"`
	Progress Progress         `json:"enrich_progress"`
	Books    map[string]Entry `json:"books"`
}

// Store persists the catalog document with full-overwrite semantics. Saves
// are serialized against each other (single writer); they are independent of
// in-memory catalog reads.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store writing to cacheDir/metadata.json.
func NewStore(cacheDir string) *Store {
	return &Store{path: filepath.Join(cacheDir, CacheFilename)}
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted document. A missing file returns (nil, nil); an
// unreadable or unparseable file returns an error. Callers treat both as "no
// cache" and fall back to a fresh quick scan.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.WithStack(err)
	}
	for filename, entry := range doc.Books {
		entry.Filename = filename
		doc.Books[filename] = entry
	}

	return doc, nil
}

// Save overwrites the persisted document, creating the cache directory if
// needed.
func (s *Store) Save(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.WithStack(err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.WriteFile(s.path, data, 0644)) //nolint:gosec
}
