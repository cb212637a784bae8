// Package testgen generates real book files (EPUB, PDF) with configurable
// metadata for exercising the extractors and the catalog builder in tests.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
)

// EPUBOptions configures the generated EPUB file.
type EPUBOptions struct {
	Title  string
	Author string
	// SkipContainer omits META-INF/container.xml so the parser has to fall
	// back to locating the .opf entry directly.
	SkipContainer bool
}

// PDFOptions configures the generated PDF file.
type PDFOptions struct {
	Title  string
	Author string
	// SkipInfoDict omits the document info dictionary entirely.
	SkipInfoDict bool
}

// WriteFile creates a file with the given content in the specified directory.
// Returns the full path to the created file.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}
