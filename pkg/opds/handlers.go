package opds

import (
	"bytes"
	"encoding/xml"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	opdsService    *Service
	catalogService *catalog.Service
	booksDir       string
}

// coverPlaceholder is a 1x1 transparent PNG served for every cover request.
// Cover extraction is out of scope, but some OPDS clients render broken
// images when the cover link 404s.
var coverPlaceholder = func() []byte {
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// getBaseURL returns the base URL for OPDS feeds.
func getBaseURL(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	// Check for X-Forwarded-Proto header (for reverse proxies)
	if proto := c.Request().Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// Check for X-Forwarded-Prefix header (set by reverse proxies that strip path prefixes)
	prefix := c.Request().Header.Get("X-Forwarded-Prefix")

	return scheme + "://" + c.Request().Host + prefix
}

// root handles the root navigation feed.
func (h *handler) root(c echo.Context) error {
	feed := h.opdsService.BuildRootFeed(getBaseURL(c))
	return respondXML(c, feed)
}

// allBooks handles the acquisition feed of every book, sorted by filename.
func (h *handler) allBooks(c echo.Context) error {
	params := PaginationQuery{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	feed := h.opdsService.BuildAllBooksFeed(getBaseURL(c), params.Page)
	return respondXML(c, feed)
}

// recentBooks handles the acquisition feed sorted by modification time.
func (h *handler) recentBooks(c echo.Context) error {
	params := PaginationQuery{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	feed := h.opdsService.BuildRecentFeed(getBaseURL(c), params.Page)
	return respondXML(c, feed)
}

// search handles the search acquisition feed.
func (h *handler) search(c echo.Context) error {
	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return err
	}

	feed := h.opdsService.BuildSearchFeed(getBaseURL(c), params.Q, params.Page)
	return respondXML(c, feed)
}

// openSearch handles the OpenSearch description document.
func (h *handler) openSearch(c echo.Context) error {
	desc := h.opdsService.BuildOpenSearchDescription(getBaseURL(c))

	c.Response().Header().Set(echo.HeaderContentType, MimeTypeOpenSearch)
	return c.XML(http.StatusOK, desc)
}

// download serves a book file from the books directory.
func (h *handler) download(c echo.Context) error {
	filename := c.Param("filename")

	if err := rejectTraversal(filename); err != nil {
		return err
	}

	entry, ok := h.catalogService.Entry(filename)
	if !ok {
		return errcodes.NotFound("Book")
	}

	path := filepath.Join(h.booksDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errcodes.NotFound("Book")
	} else if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(echo.HeaderContentType, entry.Format.MimeType())
	c.Response().Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.File(path)
}

// cover serves a placeholder cover image for a book.
func (h *handler) cover(c echo.Context) error {
	filename := c.Param("filename")

	if err := rejectTraversal(filename); err != nil {
		return err
	}

	if _, ok := h.catalogService.Entry(filename); !ok {
		return errcodes.NotFound("Book")
	}

	return c.Blob(http.StatusOK, MimeTypePNG, coverPlaceholder)
}

// rejectTraversal refuses filenames that could escape the books directory.
// Catalog keys are plain basenames, so anything with separators or a leading
// dot never matches a real entry anyway; this rejects them before any
// filesystem access happens.
func rejectTraversal(filename string) error {
	if filename == "" ||
		strings.HasPrefix(filename, ".") ||
		strings.ContainsAny(filename, `/\`) ||
		filename != filepath.Base(filename) {
		return errcodes.Forbidden("Accessing paths outside the books directory")
	}
	return nil
}

// respondXML sends an XML response with the correct content type.
func respondXML(c echo.Context, data interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, MimeTypeAtom+"; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)

	// Write XML declaration
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return errors.WithStack(err)
	}

	// Encode the feed
	encoder := xml.NewEncoder(c.Response())
	encoder.Indent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
