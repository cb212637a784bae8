package opds

import (
	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all OPDS routes.
func RegisterRoutes(e *echo.Echo, catalogService *catalog.Service, cfg *config.Config) {
	opdsService := NewService(catalogService, cfg)

	h := &handler{
		opdsService:    opdsService,
		catalogService: catalogService,
		booksDir:       cfg.BooksDir,
	}

	// OPDS 1.2 feeds
	e.GET("/opds", h.root)
	e.GET("/opds/all", h.allBooks)
	e.GET("/opds/recent", h.recentBooks)
	e.GET("/opds/search", h.search)
	e.GET("/opds/opensearch.xml", h.openSearch)

	// File downloads and covers
	e.GET("/download/:filename", h.download)
	e.GET("/cover/:filename", h.cover)
}
