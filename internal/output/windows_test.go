package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/seqlift/internal/align"
)

func TestWriteWindows(t *testing.T) {
	aln := &align.Alignment{A: "ACGTACGT", B: "ACGT-CGT"}

	var buf bytes.Buffer
	require.NoError(t, WriteWindows(&buf, aln, 5))

	header := "\nprint alignment with 0-based coord\n\n"
	want := header +
		"0         ACGTA 4\n" +
		"0         ||||  4\n" +
		"0         ACGT- 3\n" +
		header +
		"5         CGT 7\n" +
		"5         ||| 7\n" +
		"4         CGT 6\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteWindowsLeadingGap(t *testing.T) {
	aln := &align.Alignment{A: "--AC", B: "GGAC"}

	var buf bytes.Buffer
	require.NoError(t, WriteWindows(&buf, aln, 0))

	want := "\nprint alignment with 0-based coord\n\n" +
		"-1        --AC 1\n" +
		"0           || 3\n" +
		"0         GGAC 3\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteWindowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWindows(&buf, &align.Alignment{}, WindowWidth))
	assert.Empty(t, buf.String())
}
