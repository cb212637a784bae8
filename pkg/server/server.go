package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dropshelf/dropshelf/pkg/binder"
	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/dropshelf/dropshelf/pkg/errcodes"
	"github.com/dropshelf/dropshelf/pkg/opds"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
)

func New(cfg *config.Config, catalogService *catalog.Service) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	if cfg.AuthEnabled {
		e.Use(basicAuthMiddleware(cfg))
	}

	health.RegisterRoutes(e)

	registerLandingPage(e, cfg, catalogService)
	opds.RegisterRoutes(e, catalogService, cfg)
	catalog.RegisterRoutes(e, catalogService)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
