package catalog

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the catalog admin routes.
func RegisterRoutes(e *echo.Echo, catalogService *Service) {
	h := &handler{
		catalogService: catalogService,
	}

	e.POST("/admin/cache/refresh", h.refreshCache)
	e.GET("/admin/stats", h.stats)
}
