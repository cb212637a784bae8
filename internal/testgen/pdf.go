package testgen

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// GeneratePDF creates a minimal but structurally valid single-page PDF at
// dir/filename, with a cross-reference table and an optional document info
// dictionary carrying Title and Author.
func GeneratePDF(t *testing.T, dir, filename string, opts PDFOptions) string {
	t.Helper()
	return WriteFile(t, dir, filename, pdfBytes(opts))
}

func pdfBytes(opts PDFOptions) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	writeObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	hasInfo := !opts.SkipInfoDict
	if hasInfo {
		var info strings.Builder
		info.WriteString("4 0 obj\n<<")
		if opts.Title != "" {
			fmt.Fprintf(&info, " /Title (%s)", escapePDFString(opts.Title))
		}
		if opts.Author != "" {
			fmt.Fprintf(&info, " /Author (%s)", escapePDFString(opts.Author))
		}
		info.WriteString(" /Producer (testgen) >>\nendobj\n")
		writeObj(info.String())
	}

	size := len(offsets) + 1
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	buf.WriteString("trailer\n<< ")
	fmt.Fprintf(&buf, "/Size %d /Root 1 0 R", size)
	if hasInfo {
		buf.WriteString(" /Info 4 0 R")
	}
	buf.WriteString(" >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
