package mediafile

import (
	"path/filepath"
	"strings"
)

// Sentinel values used when no metadata is recoverable at all.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// Format is the closed set of supported book formats, keyed by normalized
// file extension.
type Format string

const (
	// FormatEPUB is a zip container with an OPF package document inside.
	FormatEPUB Format = "epub"
	// FormatPDF carries bibliographic metadata in its document info dictionary.
	FormatPDF Format = "pdf"
	// FormatMOBI has no extractor; its entries are filename-derived only.
	FormatMOBI Format = "mobi"
)

// ParseFormat maps a file extension (with or without the leading dot,
// any case) to a Format. ok is false for unsupported extensions.
func ParseFormat(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "epub":
		return FormatEPUB, true
	case "pdf":
		return FormatPDF, true
	case "mobi":
		return FormatMOBI, true
	}
	return "", false
}

// FormatForFilename derives the Format from a filename's extension.
func FormatForFilename(filename string) (Format, bool) {
	return ParseFormat(filepath.Ext(filename))
}

// MimeType returns the download MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatEPUB:
		return "application/epub+zip"
	case FormatPDF:
		return "application/pdf"
	case FormatMOBI:
		return "application/x-mobipocket-ebook"
	}
	return "application/octet-stream"
}

// ParsedMetadata is the result of a content metadata extraction. Extractors
// return nil rather than a partially-filled struct when a file yields no
// usable metadata.
type ParsedMetadata struct {
	Title  string
	Author string
}
