package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	catalogService *Service
}

// RefreshResponse is the body returned by the cache refresh endpoint.
type RefreshResponse struct {
	Status            string `json:"status"`
	Books             int    `json:"books"`
	EnrichmentStarted bool   `json:"enrichment_started"`
}

func (h *handler) refreshCache(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.catalogService.QuickScan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	started := h.catalogService.StartEnrichment()

	return c.JSON(http.StatusOK, RefreshResponse{
		Status:            "refreshed",
		Books:             len(books),
		EnrichmentStarted: started,
	})
}

func (h *handler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogService.Status())
}
