package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/pkg/errors"
)

const containerPath = "META-INF/container.xml"

// Container is the META-INF/container.xml descriptor pointing at the OPF
// package document.
type Container struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles struct {
		RootFile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// Package is the subset of the OPF package document we read metadata from.
// encoding/xml matches elements by local name, which covers the dc:, rdf:,
// and unprefixed spellings of title/creator/author in one struct.
type Package struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
		} `xml:"title"`
		Creator []struct {
			Text string `xml:",chardata"`
		} `xml:"creator"`
		Author []struct {
			Text string `xml:",chardata"`
		} `xml:"author"`
	} `xml:"metadata"`
}

// Parse opens path as an EPUB archive and extracts title and author from its
// package document. Structural problems (not a zip, missing descriptor or
// package document, malformed XML) are returned as errors; callers treat them
// as metadata absence.
func Parse(path string) (*mediafile.ParsedMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	stats, err := f.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	zipReader, err := zip.NewReader(f, stats.Size())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	opfName, err := packageDocumentPath(zipReader)
	if err != nil {
		return nil, err
	}

	for _, file := range zipReader.File {
		if file.Name != opfName {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		defer r.Close()
		return ParseOPF(r)
	}

	return nil, errors.Errorf("package document %q not found in archive", opfName)
}

// packageDocumentPath locates the OPF package document, preferring the
// container descriptor and falling back to the first .opf entry for archives
// that lack one.
func packageDocumentPath(zr *zip.Reader) (string, error) {
	for _, file := range zr.File {
		if file.Name != containerPath {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return "", errors.WithStack(err)
		}
		defer r.Close()

		b, err := io.ReadAll(r)
		if err != nil {
			return "", errors.WithStack(err)
		}
		container := &Container{}
		if err := xml.Unmarshal(b, container); err != nil {
			return "", errors.WithStack(err)
		}
		for _, rf := range container.RootFiles.RootFile {
			if rf.FullPath != "" {
				return rf.FullPath, nil
			}
		}
		return "", errors.New("container descriptor has no rootfile path")
	}

	for _, file := range zr.File {
		if filepath.Ext(file.Name) == ".opf" {
			return file.Name, nil
		}
	}

	return "", errors.New("no container descriptor or opf file found")
}

// ParseOPF reads an OPF package document and returns the first non-empty
// title and creator/author, trimmed.
func ParseOPF(r io.Reader) (*mediafile.ParsedMetadata, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &Package{}
	if err := xml.Unmarshal(b, pkg); err != nil {
		return nil, errors.WithStack(err)
	}

	metadata := &mediafile.ParsedMetadata{}
	for _, t := range pkg.Metadata.Title {
		if text := strings.TrimSpace(t.Text); text != "" {
			metadata.Title = text
			break
		}
	}
	for _, c := range pkg.Metadata.Creator {
		if text := strings.TrimSpace(c.Text); text != "" {
			metadata.Author = text
			break
		}
	}
	if metadata.Author == "" {
		for _, a := range pkg.Metadata.Author {
			if text := strings.TrimSpace(a.Text); text != "" {
				metadata.Author = text
				break
			}
		}
	}

	return metadata, nil
}
