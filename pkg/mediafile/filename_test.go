package mediafile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		title    string
		author   string
	}{
		{
			name:     "title by author",
			filename: "Dune by Frank Herbert.epub",
			title:    "Dune",
			author:   "Frank Herbert",
		},
		{
			name:     "title by author with extra whitespace",
			filename: "The Hobbit   by   J.R.R. Tolkien.pdf",
			title:    "The Hobbit",
			author:   "J.R.R. Tolkien",
		},
		{
			name:     "title dash author",
			filename: "Neuromancer - William Gibson.mobi",
			title:    "Neuromancer",
			author:   "William Gibson",
		},
		{
			name:     "title with parenthesized author",
			filename: "Snow Crash (Neal Stephenson).epub",
			title:    "Snow Crash",
			author:   "Neal Stephenson",
		},
		{
			name:     "author underscore title",
			filename: "Herbert_Dune Messiah.epub",
			title:    "Dune Messiah",
			author:   "Herbert",
		},
		{
			name:     "underscore separators replaced in title",
			filename: "Gibson_Count_Zero.epub",
			title:    "Count Zero",
			author:   "Gibson",
		},
		{
			name:     "trailing marketplace tag stripped before matching",
			filename: "Dune by Frank Herbert (z-lib.org).epub",
			title:    "Dune",
			author:   "Frank Herbert",
		},
		{
			name:     "plain title falls back to Unknown author",
			filename: "Dune.epub",
			title:    "Dune",
			author:   "Unknown",
		},
		{
			name:     "numbered duplicate treated as parenthesized author",
			filename: "Dune (1).epub",
			title:    "Dune",
			author:   "1",
		},
		{
			name:     "whitespace runs collapsed in fallback title",
			filename: "Dune  Messiah.epub",
			title:    "Dune Messiah",
			author:   "Unknown",
		},
		{
			name:     "hex identifier yields sentinels",
			filename: strings.Repeat("a1f0", 10) + ".epub",
			title:    UnknownTitle,
			author:   UnknownAuthor,
		},
		{
			name:     "hex identifier without extension",
			filename: strings.Repeat("0b9c", 10),
			title:    UnknownTitle,
			author:   UnknownAuthor,
		},
		{
			name:     "empty stem yields sentinels",
			filename: ".epub",
			title:    UnknownTitle,
			author:   UnknownAuthor,
		},
		{
			name:     "duplicate-suffix-only stem yields sentinels",
			filename: "(1).epub",
			title:    UnknownTitle,
			author:   UnknownAuthor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			title, author := ParseFilename(tt.filename)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.author, author)
		})
	}
}

func TestParseFilenameDeterministic(t *testing.T) {
	t.Parallel()

	t1, a1 := ParseFilename("Foundation by Isaac Asimov.epub")
	t2, a2 := ParseFilename("Foundation by Isaac Asimov.epub")
	assert.Equal(t, t1, t2)
	assert.Equal(t, a1, a2)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext    string
		format Format
		ok     bool
	}{
		{".epub", FormatEPUB, true},
		{"epub", FormatEPUB, true},
		{".EPUB", FormatEPUB, true},
		{".pdf", FormatPDF, true},
		{".mobi", FormatMOBI, true},
		{".txt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		format, ok := ParseFormat(tt.ext)
		assert.Equal(t, tt.ok, ok, "ext %q", tt.ext)
		assert.Equal(t, tt.format, format, "ext %q", tt.ext)
	}
}

func TestFormatMimeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/epub+zip", FormatEPUB.MimeType())
	assert.Equal(t, "application/pdf", FormatPDF.MimeType())
	assert.Equal(t, "application/x-mobipocket-ebook", FormatMOBI.MimeType())
	assert.Equal(t, "application/octet-stream", Format("azw3").MimeType())
}
