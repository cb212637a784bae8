package server

import (
	"html/template"
	"net/http"

	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const landingHTML = `<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; margin: 40px auto; max-width: 640px; padding: 0 16px; }
    h1 { font-size: 1.6em; }
    code { background: #eee; padding: 2px 6px; }
    .stats { color: #666; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>Point your OPDS client at <code>{{.OPDSPath}}</code> to browse this library.</p>
  <p class="stats">
    {{.Status.TotalBooks}} books ({{.Status.EnrichedBooks}} with full metadata)
    {{- if .Status.Enriching}}, metadata scan in progress{{end}}
  </p>
  <p><a href="{{.OPDSPath}}">OPDS catalog</a></p>
</body>
</html>`

var landingTemplate = template.Must(template.New("landing").Parse(landingHTML))

type landingData struct {
	Title    string
	OPDSPath string
	Status   catalog.Status
}

func registerLandingPage(e *echo.Echo, cfg *config.Config, catalogService *catalog.Service) {
	e.GET("/", func(c echo.Context) error {
		data := landingData{
			Title:    cfg.FeedTitle,
			OPDSPath: "/opds",
			Status:   catalogService.Status(),
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		if err := landingTemplate.Execute(c.Response(), data); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
}
