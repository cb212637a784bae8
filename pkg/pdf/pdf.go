// Package pdf extracts bibliographic metadata from a PDF's document info
// dictionary using pdfcpu.
package pdf

import (
	"os"
	"strings"

	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// Parse opens path as a PDF and returns Title and Author from the document
// info dictionary. Documents without an info dictionary produce empty fields;
// unreadable or invalid documents produce an error. Callers treat both as
// metadata absence.
func Parse(path string) (*mediafile.ParsedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, errors.Wrap(err, "pdfcpu read")
	}

	// Validation lifts the info dictionary entries onto the xref table.
	return &mediafile.ParsedMetadata{
		Title:  strings.TrimSpace(ctx.Title),
		Author: strings.TrimSpace(ctx.Author),
	}, nil
}
