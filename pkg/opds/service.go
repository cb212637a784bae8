package opds

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/google/uuid"
)

// Service handles OPDS feed generation.
type Service struct {
	catalogService *catalog.Service
	feedTitle      string
	feedAuthor     string
	pageSize       int
}

// NewService creates a new OPDS service.
func NewService(catalogService *catalog.Service, cfg *config.Config) *Service {
	return &Service{
		catalogService: catalogService,
		feedTitle:      cfg.FeedTitle,
		feedAuthor:     cfg.FeedAuthor,
		pageSize:       cfg.MaxResults,
	}
}

// feedID derives a stable urn:uuid identifier for a feed.
func feedID(name string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("dropshelf:feed:"+name)).String()
}

// BuildRootFeed builds the navigation feed listing the available catalogs.
func (svc *Service) BuildRootFeed(baseURL string) *Feed {
	feed := NewFeed(feedID("root"), svc.feedTitle)
	feed.Author = &Author{Name: svc.feedAuthor}

	feed.AddLink(RelSelf, baseURL+"/opds", MimeTypeNavigation)
	feed.AddLink(RelStart, baseURL+"/opds", MimeTypeNavigation)
	feed.AddLink(RelSearch, baseURL+"/opds/opensearch.xml", MimeTypeOpenSearch)

	all := NewEntry(feedID("all"), "All Books")
	all.Content = &Content{Type: "text", Value: "All books sorted by filename"}
	all.AddLink(RelSubsection, baseURL+"/opds/all", MimeTypeAcquisition)
	feed.AddEntry(all)

	recent := NewEntry(feedID("recent"), "Recently Added")
	recent.Content = &Content{Type: "text", Value: "Books sorted by most recently added"}
	recent.AddLink(RelSubsection, baseURL+"/opds/recent", MimeTypeAcquisition)
	feed.AddEntry(recent)

	return feed
}

// BuildAllBooksFeed builds an acquisition feed with every book, sorted by
// filename.
func (svc *Service) BuildAllBooksFeed(baseURL string, page int) *Feed {
	books := svc.catalogService.Snapshot()

	feed := NewFeed(feedID("all"), "All Books - "+svc.feedTitle)
	feed.Author = &Author{Name: svc.feedAuthor}
	svc.fillAcquisitionFeed(feed, baseURL, baseURL+"/opds/all", "", books, page)
	return feed
}

// BuildRecentFeed builds an acquisition feed sorted by file modification
// time, newest first.
func (svc *Service) BuildRecentFeed(baseURL string, page int) *Feed {
	books := svc.catalogService.Snapshot()
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].ModifiedAt.After(books[j].ModifiedAt)
	})

	feed := NewFeed(feedID("recent"), "Recently Added - "+svc.feedTitle)
	feed.Author = &Author{Name: svc.feedAuthor}
	svc.fillAcquisitionFeed(feed, baseURL, baseURL+"/opds/recent", "", books, page)
	return feed
}

// BuildSearchFeed builds an acquisition feed with books whose title or author
// contains the query, case-insensitively.
func (svc *Service) BuildSearchFeed(baseURL, query string, page int) *Feed {
	needle := strings.ToLower(query)

	books := []catalog.Entry{}
	for _, book := range svc.catalogService.Snapshot() {
		if strings.Contains(strings.ToLower(book.Title), needle) ||
			strings.Contains(strings.ToLower(book.Author), needle) {
			books = append(books, book)
		}
	}

	feed := NewFeed(feedID("search:"+needle), fmt.Sprintf("Search Results for %q - %s", query, svc.feedTitle))
	feed.Author = &Author{Name: svc.feedAuthor}
	svc.fillAcquisitionFeed(feed, baseURL, baseURL+"/opds/search", "q="+url.QueryEscape(query), books, page)
	return feed
}

// BuildOpenSearchDescription builds the OpenSearch description document that
// OPDS clients use to discover the search endpoint.
func (svc *Service) BuildOpenSearchDescription(baseURL string) *OpenSearchDescription {
	return NewOpenSearchDescription(
		svc.feedTitle,
		"Search books by title or author",
		baseURL+"/opds/search?q={searchTerms}",
	)
}

// fillAcquisitionFeed pages the book list and adds the standard link set and
// one entry per book on the requested page.
func (svc *Service) fillAcquisitionFeed(feed *Feed, baseURL, feedURL, query string, books []catalog.Entry, page int) {
	feed.AddLink(RelSelf, pageHref(feedURL, query, page), MimeTypeAcquisition)
	feed.AddLink(RelStart, baseURL+"/opds", MimeTypeNavigation)
	feed.AddLink(RelUp, baseURL+"/opds", MimeTypeNavigation)
	addPaginationLinks(feed, feedURL, query, page, svc.pageSize, len(books))

	for _, book := range paginate(books, page, svc.pageSize) {
		feed.AddEntry(svc.bookEntry(baseURL, book))
	}
}

// bookEntry converts a catalog entry into an OPDS acquisition entry.
func (svc *Service) bookEntry(baseURL string, book catalog.Entry) Entry {
	entry := NewEntry(book.ID(), book.Title)
	entry.Updated = book.ModifiedAt
	entry.Identifier = book.ID()
	if book.Author != "" {
		entry.Authors = []Author{{Name: book.Author}}
	}
	entry.Content = &Content{
		Type:  "text",
		Value: fmt.Sprintf("Format: %s", strings.ToUpper(string(book.Format))),
	}

	escaped := url.PathEscape(book.Filename)
	entry.AddAcquisitionLink(baseURL+"/download/"+escaped, book.Format.MimeType())
	entry.AddImageLink(baseURL+"/cover/"+escaped, MimeTypePNG)
	entry.AddThumbnailLink(baseURL+"/cover/"+escaped, MimeTypePNG)

	return entry
}

// paginate returns the slice of books belonging to the 1-based page. Pages
// past the end are empty, not errors.
func paginate(books []catalog.Entry, page, size int) []catalog.Entry {
	start := (page - 1) * size
	if start >= len(books) {
		return nil
	}
	end := start + size
	if end > len(books) {
		end = len(books)
	}
	return books[start:end]
}

// addPaginationLinks adds previous/next links around the current page.
func addPaginationLinks(feed *Feed, feedURL, query string, page, size, total int) {
	if page > 1 {
		feed.AddLink(RelPrevious, pageHref(feedURL, query, page-1), MimeTypeAcquisition)
	}
	if page*size < total {
		feed.AddLink(RelNext, pageHref(feedURL, query, page+1), MimeTypeAcquisition)
	}
}

func pageHref(feedURL, query string, page int) string {
	if query != "" {
		return fmt.Sprintf("%s?%s&page=%d", feedURL, query, page)
	}
	return fmt.Sprintf("%s?page=%d", feedURL, page)
}
