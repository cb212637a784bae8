package server

import (
	"crypto/subtle"
	"strings"

	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// basicAuthMiddleware protects every route except the health check with HTTP
// Basic Auth. The password check is either a bcrypt hash comparison or a
// constant-time plaintext comparison depending on what's configured.
func basicAuthMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health")
		},
		Realm: "dropshelf",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			// A half-configured setup (no password and no hash) denies
			// everything rather than accepting the empty password.
			if cfg.AuthPassword == "" && cfg.AuthPasswordHash == "" {
				return false, nil
			}

			usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.AuthUsername)) == 1

			passwordOK := false
			if cfg.AuthPasswordHash != "" {
				passwordOK = bcrypt.CompareHashAndPassword([]byte(cfg.AuthPasswordHash), []byte(password)) == nil
			} else {
				passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(cfg.AuthPassword)) == 1
			}

			return usernameOK && passwordOK, nil
		},
	})
}
