// Package catalog implements the two-phase catalog builder: a quick
// filename-only scan that makes the whole books directory browsable at once,
// and a background enrichment pass that progressively replaces the
// filename-derived metadata with metadata extracted from file contents.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/dropshelf/dropshelf/pkg/extract"
	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"golang.org/x/sync/singleflight"
)

// Service owns the in-memory catalog and its persisted store. The entries
// map is the one resource shared between the reader path and the enrichment
// pass; it is guarded by mu, and entries are stored by value so readers only
// ever observe whole entries.
type Service struct {
	log        logger.Logger
	store      *Store
	booksDir   string
	allowedExt map[string]struct{}
	runner     *extract.Runner
	saveEvery  int

	// scans collapses concurrent quick-scan requests into one directory walk.
	scans singleflight.Group

	mu        sync.RWMutex
	entries   map[string]Entry
	enriching bool
	progress  Progress
}

// NewService builds a catalog service for the configured books directory.
func NewService(cfg *config.Config) *Service {
	return &Service{
		log:        logger.New(),
		store:      NewStore(cfg.CacheDir),
		booksDir:   cfg.BooksDir,
		allowedExt: cfg.ExtensionSet(),
		runner:     extract.NewRunner(cfg.EnrichTimeout),
		saveEvery:  cfg.EnrichSaveEvery,
		entries:    map[string]Entry{},
	}
}

// Init populates the catalog at startup: from the persisted store when one
// is present and readable, otherwise via a fresh quick scan. It then starts
// the background enrichment pass.
func (s *Service) Init(ctx context.Context) error {
	log := logger.FromContext(ctx)

	doc, err := s.store.Load()
	if err != nil {
		// A corrupt cache is not fatal; rebuild it from the directory.
		log.Err(err).Warn("cache load error", logger.Data{"path": s.store.Path()})
		doc = nil
	}

	if doc != nil && len(doc.Books) > 0 {
		s.mu.Lock()
		s.entries = doc.Books
		s.progress = doc.Progress
		s.mu.Unlock()
		log.Info("loaded catalog from cache", logger.Data{"books": len(doc.Books), "saved_at": doc.SavedAt})
	} else {
		books, err := s.QuickScan(ctx)
		if err != nil {
			return err
		}
		log.Info("initial quick scan complete", logger.Data{"books": len(books)})
	}

	s.StartEnrichment()
	return nil
}

// Snapshot returns the current in-memory catalog, sorted by filename. It
// never triggers I/O.
func (s *Service) Snapshot() []Entry {
	s.mu.RLock()
	books := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		books = append(books, entry)
	}
	s.mu.RUnlock()

	sort.Slice(books, func(i, j int) bool { return books[i].Filename < books[j].Filename })
	return books
}

// Entry returns the catalog entry for a filename.
func (s *Service) Entry(filename string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[filename]
	return entry, ok
}

// QuickScan synchronously rebuilds the catalog from the directory listing
// alone (no content I/O) and persists it. Concurrent callers share a single
// walk. On walk failure the prior catalog remains authoritative.
func (s *Service) QuickScan(ctx context.Context) ([]Entry, error) {
	v, err, _ := s.scans.Do("quick-scan", func() (interface{}, error) {
		return s.quickScan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

func (s *Service) quickScan(ctx context.Context) ([]Entry, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	dirents, err := os.ReadDir(s.booksDir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	entries := make(map[string]Entry)
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := s.allowedExt[ext]; !ok {
			continue
		}
		format, ok := mediafile.ParseFormat(ext)
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// File vanished between listing and stat.
			log.Warn("stat error during scan", logger.Data{"filename": name, "err": err.Error()})
			continue
		}

		title, author := mediafile.ParseFilename(name)
		entries[name] = Entry{
			Filename:        name,
			Title:           title,
			Author:          author,
			Format:          format,
			ModifiedAt:      info.ModTime(),
			HasFullMetadata: false,
		}
	}

	s.mu.Lock()
	s.entries = entries
	doc := s.documentLocked()
	s.mu.Unlock()

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}

	log.Info("quick scan complete", logger.Data{"books": len(entries), "elapsed": time.Since(start).String()})
	return s.Snapshot(), nil
}

// StartEnrichment starts the background enrichment pass if one isn't already
// running and returns immediately. The second of two quick successive calls
// is a no-op.
func (s *Service) StartEnrichment() bool {
	s.mu.Lock()
	if s.enriching {
		s.mu.Unlock()
		return false
	}
	s.enriching = true

	candidates := make([]string, 0, len(s.entries))
	for filename, entry := range s.entries {
		if !entry.HasFullMetadata {
			candidates = append(candidates, filename)
		}
	}
	s.progress = Progress{Total: len(candidates)}
	s.mu.Unlock()

	go s.enrich(candidates)
	return true
}

// Status reports whether enrichment is running and how far along it is.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enriched := 0
	for _, entry := range s.entries {
		if entry.HasFullMetadata {
			enriched++
		}
	}
	return Status{
		Enriching:     s.enriching,
		Progress:      s.progress,
		TotalBooks:    len(s.entries),
		EnrichedBooks: enriched,
	}
}

// enrich works through the candidate set sequentially: the books directory
// is typically a network mount that penalizes concurrent access. Entries
// that fail extraction are left as-is and stay eligible for a future pass.
func (s *Service) enrich(candidates []string) {
	log := s.log.Data(logger.Data{"task": "enrichment"})
	ctx := log.WithContext(context.Background())

	defer func() {
		s.mu.Lock()
		s.enriching = false
		s.mu.Unlock()
	}()

	log.Info("enrichment started", logger.Data{"candidates": len(candidates)})

	successes := 0
	for _, filename := range candidates {
		s.mu.RLock()
		entry, ok := s.entries[filename]
		s.mu.RUnlock()
		if !ok || entry.HasFullMetadata {
			// Superseded by a concurrent quick scan.
			continue
		}

		metadata, mtime, ok := s.runExtraction(ctx, entry)
		if !ok {
			s.mu.Lock()
			s.progress.Errors++
			s.mu.Unlock()
			continue
		}

		s.mu.Lock()
		if current, exists := s.entries[filename]; exists {
			current.Title = metadata.Title
			if metadata.Author != "" {
				current.Author = metadata.Author
			}
			current.ModifiedAt = mtime
			current.HasFullMetadata = true
			s.entries[filename] = current
			s.progress.Processed++
		}
		s.mu.Unlock()

		successes++
		if successes%s.saveEvery == 0 {
			if err := s.save(); err != nil {
				log.Err(err).Warn("cache save error")
			}
			s.mu.RLock()
			progress := s.progress
			s.mu.RUnlock()
			log.Info("enrichment progress", logger.Data{"processed": progress.Processed, "total": progress.Total, "errors": progress.Errors})
		}
	}

	if err := s.save(); err != nil {
		log.Err(err).Warn("cache save error")
	}

	s.mu.RLock()
	progress := s.progress
	s.mu.RUnlock()
	log.Info("enrichment complete", logger.Data{"processed": progress.Processed, "errors": progress.Errors})
}

// runExtraction performs one bounded extraction attempt. The stat and
// content-type sniff run inside the deadline too; on a hung mount they are
// just as capable of stalling as the extractor itself.
func (s *Service) runExtraction(ctx context.Context, entry Entry) (*mediafile.ParsedMetadata, time.Time, bool) {
	fn, ok := extract.ForFormat(entry.Format)
	if !ok {
		return nil, time.Time{}, false
	}

	path := filepath.Join(s.booksDir, entry.Filename)
	var mtime time.Time
	wrapped := func(p string) (*mediafile.ParsedMetadata, error) {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		mtime = info.ModTime()

		mtype, err := mimetype.DetectFile(p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if !formatMatchesMime(entry.Format, mtype) {
			return nil, errors.Errorf("unexpected content type %s for %s file", mtype.String(), entry.Format)
		}

		return fn(p)
	}

	metadata, ok := s.runner.Run(ctx, wrapped, path)
	return metadata, mtime, ok
}

func formatMatchesMime(format mediafile.Format, mtype *mimetype.MIME) bool {
	switch format {
	case mediafile.FormatEPUB:
		return mtype.Is("application/epub+zip") || mtype.Is("application/zip")
	case mediafile.FormatPDF:
		return mtype.Is("application/pdf")
	default:
		return false
	}
}

// save persists the current catalog and progress.
func (s *Service) save() error {
	s.mu.RLock()
	doc := s.documentLocked()
	s.mu.RUnlock()
	return s.store.Save(doc)
}

// documentLocked builds the persisted document from the in-memory state.
// Callers must hold mu.
func (s *Service) documentLocked() *Document {
	books := make(map[string]Entry, len(s.entries))
	for filename, entry := range s.entries {
		books[filename] = entry
	}
	return &Document{
		SavedAt:  time.Now().UTC(),
		Progress: s.progress,
		Books:    books,
	}
}
