package pdf

import (
	"testing"

	"github.com/dropshelf/dropshelf/internal/testgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_InfoDictionary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testgen.GeneratePDF(t, dir, "report.pdf", testgen.PDFOptions{
		Title:  "Annual Report 2024",
		Author: "Finance Team",
	})

	metadata, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "Annual Report 2024", metadata.Title)
	assert.Equal(t, "Finance Team", metadata.Author)
}

func TestParse_NoInfoDictionary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testgen.GeneratePDF(t, dir, "blank.pdf", testgen.PDFOptions{
		SkipInfoDict: true,
	})

	metadata, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, metadata.Title)
	assert.Empty(t, metadata.Author)
}

func TestParse_NotAPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testgen.WriteFile(t, dir, "fake.pdf", []byte("not a pdf at all"))

	_, err := Parse(path)
	require.Error(t, err)
}
