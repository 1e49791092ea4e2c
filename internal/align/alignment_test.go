package align

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignment_Coordinates(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		coordA []int
		coordB []int
	}{
		{"ungapped", "ACGT", "ACGA", []int{0, 4}, []int{0, 4}},
		{"deletion in B", "ACGTACGT", "ACGT-CGT", []int{0, 4, 5, 8}, []int{0, 4, 4, 7}},
		{"insertion in B", "AC--GT", "ACTTGT", []int{0, 2, 2, 4}, []int{0, 2, 4, 6}},
		{"leading and trailing", "--ACGT", "TTACG-", []int{0, 0, 3, 4}, []int{0, 2, 5, 5}},
		{"empty", "", "", []int{0}, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aln := newAlignment(tt.a, tt.b, 0)
			coords := aln.Coordinates()
			assert.Equal(t, tt.coordA, coords[0])
			assert.Equal(t, tt.coordB, coords[1])
		})
	}
}

func TestAlignment_Stats(t *testing.T) {
	aln := newAlignment("AC-GTT", "ACAGT-", 3)
	assert.Equal(t, 4, aln.Matches)
	assert.Equal(t, 5, aln.AlignedLength)
	assert.InDelta(t, 0.8, aln.Identity(), 1e-9)
	assert.Equal(t, 6, aln.Len())
}

func TestAlignment_MidLine(t *testing.T) {
	aln := newAlignment("ACGT-A", "ACCTTA", 0)
	assert.Equal(t, "||.|-|", aln.MidLine('-'))
	assert.Equal(t, "||.| |", aln.MidLine(' '))
}

func TestAlignment_Format(t *testing.T) {
	aln := newAlignment("ACGTACGT", "ACGT-CGT", 4)

	var buf bytes.Buffer
	require.NoError(t, aln.Format(&buf, 5, "query", "target"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "query          0 ACGTA 5", lines[0])
	assert.Equal(t, "               0 ||||- 5", lines[1])
	assert.Equal(t, "target         0 ACGT- 4", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "query          5 CGT 8", lines[4])
	assert.Equal(t, "               5 ||| 8", lines[5])
	assert.Equal(t, "target         4 CGT 7", lines[6])
}
