package testgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// GenerateEPUB creates a valid EPUB file at dir/filename with the given
// options. The archive contains mimetype, META-INF/container.xml (unless
// suppressed), content.opf with the requested metadata, and one chapter.
func GenerateEPUB(t *testing.T, dir, filename string, opts EPUBOptions) string {
	t.Helper()

	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create EPUB file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	// mimetype must be first and uncompressed.
	mimetypeHeader := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}
	w, err := zw.CreateHeader(mimetypeHeader)
	if err != nil {
		t.Fatalf("failed to create mimetype entry: %v", err)
	}
	if _, err := w.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("failed to write mimetype: %v", err)
	}

	if !opts.SkipContainer {
		containerXML := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
		if err := writeZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
			t.Fatalf("failed to write container.xml: %v", err)
		}
	}

	if err := writeZipFile(zw, "OEBPS/content.opf", []byte(generateOPF(opts))); err != nil {
		t.Fatalf("failed to write content.opf: %v", err)
	}

	chapterContent := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>Chapter 1</title>
</head>
<body>
  <h1>Chapter 1</h1>
  <p>This is a test chapter.</p>
</body>
</html>`
	if err := writeZipFile(zw, "OEBPS/chapter1.xhtml", []byte(chapterContent)); err != nil {
		t.Fatalf("failed to write chapter1.xhtml: %v", err)
	}

	return path
}

func generateOPF(opts EPUBOptions) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package version="3.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
`)

	// Title is optional so tests can exercise the filename fallback.
	if opts.Title != "" {
		buf.WriteString(fmt.Sprintf("    <dc:title id=\"title\">%s</dc:title>\n", escapeXML(opts.Title)))
	}
	if opts.Author != "" {
		buf.WriteString(fmt.Sprintf("    <dc:creator id=\"creator\" opf:role=\"aut\">%s</dc:creator>\n", escapeXML(opts.Author)))
	}

	buf.WriteString("    <dc:identifier id=\"bookid\">urn:uuid:test-book-id</dc:identifier>\n")
	buf.WriteString("    <dc:language>en</dc:language>\n")
	buf.WriteString("  </metadata>\n")

	buf.WriteString("  <manifest>\n")
	buf.WriteString("    <item id=\"chapter1\" href=\"chapter1.xhtml\" media-type=\"application/xhtml+xml\"/>\n")
	buf.WriteString("  </manifest>\n")

	buf.WriteString("  <spine>\n")
	buf.WriteString("    <itemref idref=\"chapter1\"/>\n")
	buf.WriteString("  </spine>\n")

	buf.WriteString("</package>")

	return buf.String()
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&apos;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
