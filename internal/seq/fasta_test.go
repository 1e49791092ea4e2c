package seq

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{">segment1", "segment1"},
		{">segment1 influenza A PB2", "segment1"},
		{">MN908947.3\tSARS-CoV-2", "MN908947.3"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHeader(tt.header))
		})
	}
}

func TestReadFASTA(t *testing.T) {
	content := `>seq1 first
ACGTACGT
ACGT

>seq2
ttgca
`
	records, err := ReadFASTA(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "seq1", records[0].ID)
	assert.Equal(t, "ACGTACGTACGT", records[0].Residues)
	assert.Equal(t, 12, records[0].Len())
	assert.Equal(t, "seq2", records[1].ID)
	assert.Equal(t, "ttgca", records[1].Residues)
}

func TestReadFASTA_Empty(t *testing.T) {
	_, err := ReadFASTA(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestReadFASTA_ResiduesBeforeHeader(t *testing.T) {
	_, err := ReadFASTA(strings.NewReader("ACGT\n>seq1\nACGT\n"))
	assert.Error(t, err)
}

func TestReadFASTA_EmptyRecord(t *testing.T) {
	records, err := ReadFASTA(strings.NewReader(">empty\n>full\nAC\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "", records[0].Residues)
	assert.Equal(t, "AC", records[1].Residues)
}

func TestWriteFASTA_WrapsLines(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("A", 65)
	require.NoError(t, WriteFASTA(&buf, &Sequence{ID: "q1_rev", Residues: long}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">q1_rev", lines[0])
	assert.Len(t, lines[1], 60)
	assert.Len(t, lines[2], 5)

	back, err := ReadFASTA(&buf)
	require.NoError(t, err)
	assert.Equal(t, long, back[0].Residues)
}

func TestReadFASTAFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.fa.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(">t1\nACGT\n>t2\nGGCC\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	records, err := ReadFASTAFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "GGCC", records[1].Residues)
}

func TestReadFASTAFile_Missing(t *testing.T) {
	_, err := ReadFASTAFile(filepath.Join(t.TempDir(), "missing.fa"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err) || strings.Contains(err.Error(), "open FASTA file"))
}
