package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dropshelf/dropshelf/pkg/catalog"
	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/dropshelf/dropshelf/pkg/server"
	"github.com/dropshelf/dropshelf/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	log := logger.New()
	ctx := log.WithContext(context.Background())

	log.Info("starting dropshelf", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}
	if err := cfg.Validate(); err != nil {
		log.Err(err).Fatal("config validation error")
	}

	if err := initCacheDir(cfg.CacheDir); err != nil {
		log.Err(err).Fatal("cache directory error")
	}
	log.Info("cache directory initialized", logger.Data{"path": cfg.CacheDir})

	catalogService := catalog.NewService(cfg)
	if err := catalogService.Init(ctx); err != nil {
		log.Err(err).Fatal("catalog init error")
	}

	srv, err := server.New(cfg, catalogService)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		// Extract actual port (useful when ServerPort is 0)
		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort})

		if err := writePortFile(actualPort); err != nil {
			log.Err(err).Error("failed to write port file")
		}

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")
}

// initCacheDir creates the cache directory and verifies write permissions.
func initCacheDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create cache directory: %s", dir)
	}

	// Verify write permissions by creating and removing a temp file
	testFile := filepath.Join(dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return errors.Wrapf(err, "cache directory is not writable: %s", dir)
	}
	f.Close()

	if err := os.Remove(testFile); err != nil {
		return errors.Wrapf(err, "failed to clean up write test file: %s", testFile)
	}

	return nil
}

// writePortFile writes the server's actual port to tmp/api.port for local
// tooling. Skips silently if tmp/ directory doesn't exist (e.g., in Docker).
func writePortFile(port int) error {
	if _, err := os.Stat("tmp"); os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile("tmp/api.port", []byte(strconv.Itoa(port)), 0600)
}
