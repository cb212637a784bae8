package extract

import (
	"context"
	"testing"
	"time"

	"github.com/dropshelf/dropshelf/pkg/mediafile"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logger.New().WithContext(context.Background())
}

func TestRunner_Success(t *testing.T) {
	t.Parallel()

	runner := NewRunner(time.Second)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		return &mediafile.ParsedMetadata{Title: "Dune", Author: "Frank Herbert"}, nil
	}

	metadata, ok := runner.Run(testContext(t), fn, "book.epub")
	require.True(t, ok)
	assert.Equal(t, "Dune", metadata.Title)
	assert.Equal(t, "Frank Herbert", metadata.Author)
}

func TestRunner_ExtractorError(t *testing.T) {
	t.Parallel()

	runner := NewRunner(time.Second)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		return nil, errors.New("corrupt archive")
	}

	_, ok := runner.Run(testContext(t), fn, "book.epub")
	assert.False(t, ok)
}

func TestRunner_EmptyTitleIsAbsence(t *testing.T) {
	t.Parallel()

	runner := NewRunner(time.Second)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		return &mediafile.ParsedMetadata{Author: "Frank Herbert"}, nil
	}

	_, ok := runner.Run(testContext(t), fn, "book.epub")
	assert.False(t, ok)
}

func TestRunner_NilMetadataIsAbsence(t *testing.T) {
	t.Parallel()

	runner := NewRunner(time.Second)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		return nil, nil
	}

	_, ok := runner.Run(testContext(t), fn, "book.epub")
	assert.False(t, ok)
}

func TestRunner_DeadlineEnforced(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	defer close(blocked)

	runner := NewRunner(50 * time.Millisecond)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		// Simulates a read hanging on an unresponsive mount.
		<-blocked
		return &mediafile.ParsedMetadata{Title: "too late"}, nil
	}

	start := time.Now()
	_, ok := runner.Run(testContext(t), fn, "book.epub")
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Less(t, elapsed, time.Second, "deadline must cut the attempt off")
}

func TestRunner_PanicIsAbsence(t *testing.T) {
	t.Parallel()

	runner := NewRunner(time.Second)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		panic("malformed input")
	}

	_, ok := runner.Run(testContext(t), fn, "book.epub")
	assert.False(t, ok)
}

func TestRunner_ContextCanceled(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	defer close(blocked)

	runner := NewRunner(time.Minute)
	fn := func(path string) (*mediafile.ParsedMetadata, error) {
		<-blocked
		return nil, nil
	}

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, ok := runner.Run(ctx, fn, "book.epub")
	assert.False(t, ok)
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	_, ok := ForFormat(mediafile.FormatEPUB)
	assert.True(t, ok)

	_, ok = ForFormat(mediafile.FormatPDF)
	assert.True(t, ok)

	// No extractor is registered for MOBI; entries keep filename metadata.
	_, ok = ForFormat(mediafile.FormatMOBI)
	assert.False(t, ok)
}
