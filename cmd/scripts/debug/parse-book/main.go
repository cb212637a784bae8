package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dropshelf/dropshelf/pkg/config"
	"github.com/dropshelf/dropshelf/pkg/extract"
	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
)

func main() {
	log := logger.New()

	var opts struct {
		Timeout time.Duration `short:"t" long:"timeout" description:"How long the extraction may take before it's abandoned (defaults to scan_timeout)"`
	}

	args, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	// The flag overrides the configured foreground budget.
	if opts.Timeout == 0 {
		cfg, err := config.New()
		if err != nil {
			log.Err(err).Fatal("config error")
		}
		opts.Timeout = cfg.ScanTimeout
	}

	if len(args) != 1 {
		fmt.Println("go run ./cmd/scripts/debug/parse-book <path/to/book>")
		os.Exit(1)
	}

	path := args[0]
	format, ok := mediafile.ParseFormat(filepath.Ext(path))
	if !ok {
		log.Fatal("unsupported file extension", logger.Data{"path": path})
	}

	fnTitle, fnAuthor := mediafile.ParseFilename(filepath.Base(path))
	fmt.Printf("Filename Title: %s\nFilename Author: %s\n", fnTitle, fnAuthor)

	fn, ok := extract.ForFormat(format)
	if !ok {
		fmt.Printf("No extractor for format %s\n", format)
		return
	}

	runner := extract.NewRunner(opts.Timeout)
	ctx := log.WithContext(context.Background())

	metadata, ok := runner.Run(ctx, fn, path)
	if !ok {
		fmt.Println("No embedded metadata extracted within the deadline")
		return
	}
	fmt.Printf("Embedded Title: %s\nEmbedded Author: %s\n", metadata.Title, metadata.Author)
}
