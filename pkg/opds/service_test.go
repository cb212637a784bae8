package opds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dropshelf/dropshelf/internal/testgen"
	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCatalog builds a quick-scanned catalog over three fixture files.
// Phase 2 never runs here, so file contents don't matter.
func newTestCatalog(t *testing.T) (*catalog.Service, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		BooksDir:          t.TempDir(),
		CacheDir:          t.TempDir(),
		MaxResults:        2,
		FeedTitle:         "Test Library",
		FeedAuthor:        "DropShelf OPDS Server",
		AllowedExtensions: []string{".epub", ".pdf", ".mobi"},
		ScanTimeout:       500 * time.Millisecond,
		EnrichTimeout:     time.Second,
		EnrichSaveEvery:   50,
	}

	testgen.WriteFile(t, cfg.BooksDir, "Dune by Frank Herbert.epub", []byte("x"))
	testgen.WriteFile(t, cfg.BooksDir, "Hyperion by Dan Simmons.epub", []byte("x"))
	testgen.WriteFile(t, cfg.BooksDir, "report.pdf", []byte("x"))

	// Give report.pdf the newest mtime so recency ordering is deterministic.
	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(cfg.BooksDir, "Dune by Frank Herbert.epub"), now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(cfg.BooksDir, "Hyperion by Dan Simmons.epub"), now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(cfg.BooksDir, "report.pdf"), now, now))

	catalogService := catalog.NewService(cfg)
	ctx := logger.New().WithContext(context.Background())
	_, err := catalogService.QuickScan(ctx)
	require.NoError(t, err)

	return catalogService, cfg
}

func findLink(links []Link, rel string) *Link {
	for i := range links {
		if links[i].Rel == rel {
			return &links[i]
		}
	}
	return nil
}

func TestBuildRootFeed(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	feed := svc.BuildRootFeed("http://example.com")

	assert.Equal(t, "Test Library", feed.Title)
	require.NotNil(t, feed.Author)
	assert.Equal(t, "DropShelf OPDS Server", feed.Author.Name)

	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "All Books", feed.Entries[0].Title)
	assert.Equal(t, "Recently Added", feed.Entries[1].Title)
	assert.Equal(t, "http://example.com/opds/all", feed.Entries[0].Links[0].Href)
	assert.Equal(t, "http://example.com/opds/recent", feed.Entries[1].Links[0].Href)

	require.NotNil(t, findLink(feed.Links, RelSelf))
	require.NotNil(t, findLink(feed.Links, RelStart))
	search := findLink(feed.Links, RelSearch)
	require.NotNil(t, search)
	assert.Equal(t, "http://example.com/opds/opensearch.xml", search.Href)
}

func TestBuildAllBooksFeed(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	feed := svc.BuildAllBooksFeed("http://example.com", 1)

	// Page size is 2; three books means two pages.
	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "Dune", feed.Entries[0].Title)
	assert.Equal(t, "Hyperion", feed.Entries[1].Title)
	require.Len(t, feed.Entries[0].Authors, 1)
	assert.Equal(t, "Frank Herbert", feed.Entries[0].Authors[0].Name)
	assert.Contains(t, feed.Entries[0].ID, "urn:uuid:")

	acq := findLink(feed.Entries[0].Links, RelAcquisition)
	require.NotNil(t, acq)
	assert.Equal(t, "http://example.com/download/Dune%20by%20Frank%20Herbert.epub", acq.Href)
	assert.Equal(t, "application/epub+zip", acq.Type)

	cover := findLink(feed.Entries[0].Links, RelImage)
	require.NotNil(t, cover)
	assert.Equal(t, MimeTypePNG, cover.Type)

	assert.Nil(t, findLink(feed.Links, RelPrevious))
	next := findLink(feed.Links, RelNext)
	require.NotNil(t, next)
	assert.Equal(t, "http://example.com/opds/all?page=2", next.Href)
}

func TestBuildAllBooksFeed_LastPage(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	feed := svc.BuildAllBooksFeed("http://example.com", 2)

	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "report", feed.Entries[0].Title)

	prev := findLink(feed.Links, RelPrevious)
	require.NotNil(t, prev)
	assert.Equal(t, "http://example.com/opds/all?page=1", prev.Href)
	assert.Nil(t, findLink(feed.Links, RelNext))
}

func TestBuildAllBooksFeed_PagePastEnd(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	feed := svc.BuildAllBooksFeed("http://example.com", 7)
	assert.Empty(t, feed.Entries)
}

func TestBuildRecentFeed(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	feed := svc.BuildRecentFeed("http://example.com", 1)

	require.Len(t, feed.Entries, 2)
	assert.Equal(t, "report", feed.Entries[0].Title)
	assert.Equal(t, "Hyperion", feed.Entries[1].Title)
}

func TestBuildSearchFeed(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	t.Run("matches title case-insensitively", func(t *testing.T) {
		feed := svc.BuildSearchFeed("http://example.com", "DUNE", 1)
		require.Len(t, feed.Entries, 1)
		assert.Equal(t, "Dune", feed.Entries[0].Title)
	})

	t.Run("matches author", func(t *testing.T) {
		feed := svc.BuildSearchFeed("http://example.com", "simmons", 1)
		require.Len(t, feed.Entries, 1)
		assert.Equal(t, "Hyperion", feed.Entries[0].Title)
	})

	t.Run("no matches", func(t *testing.T) {
		feed := svc.BuildSearchFeed("http://example.com", "zzzz", 1)
		assert.Empty(t, feed.Entries)
	})

	t.Run("pagination links keep the query", func(t *testing.T) {
		feed := svc.BuildSearchFeed("http://example.com", "e", 1)
		next := findLink(feed.Links, RelNext)
		require.NotNil(t, next)
		assert.Equal(t, "http://example.com/opds/search?q=e&page=2", next.Href)
	})
}

func TestBuildOpenSearchDescription(t *testing.T) {
	t.Parallel()

	catalogService, cfg := newTestCatalog(t)
	svc := NewService(catalogService, cfg)

	desc := svc.BuildOpenSearchDescription("http://example.com")

	assert.Equal(t, "Test Library", desc.ShortName)
	require.Len(t, desc.URLs, 1)
	assert.Equal(t, "http://example.com/opds/search?q={searchTerms}", desc.URLs[0].Template)
}
