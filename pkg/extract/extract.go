// Package extract binds each supported book format to its content metadata
// extractor and runs extractions under a hard wall-clock deadline.
package extract

import (
	"github.com/dropshelf/dropshelf/pkg/epub"
	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/dropshelf/dropshelf/pkg/pdf"
)

// Func is a content metadata extractor. It opens the file at path, reads its
// embedded bibliographic metadata, and returns without retaining the handle.
// An error means the file yielded no usable metadata; it is never fatal to
// the caller.
type Func func(path string) (*mediafile.ParsedMetadata, error)

// extractors is the closed format→extractor table. MOBI has no entry: its
// catalog entries stay filename-derived.
var extractors = map[mediafile.Format]Func{
	mediafile.FormatEPUB: epub.Parse,
	mediafile.FormatPDF:  pdf.Parse,
}

// ForFormat returns the extractor for a format. ok is false for formats
// without content extraction support.
func ForFormat(format mediafile.Format) (Func, bool) {
	fn, ok := extractors[format]
	return fn, ok
}
