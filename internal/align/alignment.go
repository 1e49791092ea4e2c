package align

import (
	"fmt"
	"io"
	"strings"
)

// Alignment is a pair of equal-length aligned rows. A column never holds a
// gap in both rows.
type Alignment struct {
	A     string // row of the first sequence (source coordinates)
	B     string // row of the second sequence (target coordinates)
	Score float64

	// Matches counts columns with identical residues.
	Matches int
	// AlignedLength is the number of residues of row B, gaps excluded.
	AlignedLength int
}

func newAlignment(rowA, rowB string, score float64) *Alignment {
	aln := &Alignment{A: rowA, B: rowB, Score: score}
	for k := 0; k < len(rowA); k++ {
		x, y := rowA[k], rowB[k]
		if y != Gap {
			aln.AlignedLength++
		}
		if x != Gap && y != Gap && sameResidue(x, y) {
			aln.Matches++
		}
	}
	return aln
}

// Len returns the number of alignment columns.
func (a *Alignment) Len() int {
	return len(a.A)
}

// Identity returns Matches / AlignedLength as a ratio in [0, 1].
// It is 0 when row B has no residues.
func (a *Alignment) Identity() float64 {
	if a.AlignedLength == 0 {
		return 0
	}
	return float64(a.Matches) / float64(a.AlignedLength)
}

type columnKind uint8

const (
	colAligned columnKind = iota
	colGapA
	colGapB
)

func (a *Alignment) kind(k int) columnKind {
	switch {
	case a.A[k] == Gap:
		return colGapA
	case a.B[k] == Gap:
		return colGapB
	}
	return colAligned
}

// Coordinates returns the segment breakpoints of the alignment as two
// parallel lists of sequence positions, one per row. Consecutive columns
// of the same kind (aligned, gap in A, gap in B) form one segment.
func (a *Alignment) Coordinates() [2][]int {
	var coords [2][]int
	posA, posB := 0, 0
	coords[0] = append(coords[0], posA)
	coords[1] = append(coords[1], posB)

	for k := 0; k < a.Len(); k++ {
		kind := a.kind(k)
		if k > 0 && kind != a.kind(k-1) {
			coords[0] = append(coords[0], posA)
			coords[1] = append(coords[1], posB)
		}
		if kind != colGapA {
			posA++
		}
		if kind != colGapB {
			posB++
		}
	}
	if a.Len() > 0 {
		coords[0] = append(coords[0], posA)
		coords[1] = append(coords[1], posB)
	}
	return coords
}

// MidLine returns the match line shown between the rows: '|' for identical
// residues, '.' for mismatches and gap for gap columns.
func (a *Alignment) MidLine(gap byte) string {
	var b strings.Builder
	b.Grow(a.Len())
	for k := 0; k < a.Len(); k++ {
		x, y := a.A[k], a.B[k]
		switch {
		case x == Gap || y == Gap:
			b.WriteByte(gap)
		case sameResidue(x, y):
			b.WriteByte('|')
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Format writes the alignment in blocks of width columns. Each block shows
// row A, the match line and row B, labelled with the 0-based sequence
// position at the start and end of the block.
func (a *Alignment) Format(w io.Writer, width int, labelA, labelB string) error {
	if width <= 0 {
		width = 60
	}
	labelWidth := max(len(labelA), len(labelB), 6)
	mid := a.MidLine('-')
	posA, posB := 0, 0

	for start := 0; start < a.Len(); start += width {
		end := min(start+width, a.Len())
		chunkA, chunkB := a.A[start:end], a.B[start:end]
		endA := posA + len(chunkA) - strings.Count(chunkA, string(Gap))
		endB := posB + len(chunkB) - strings.Count(chunkB, string(Gap))

		if _, err := fmt.Fprintf(w, "%-*s %9d %s %d\n", labelWidth, labelA, posA, chunkA, endA); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-*s %9d %s %d\n", labelWidth, "", start, mid[start:end], end); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-*s %9d %s %d\n\n", labelWidth, labelB, posB, chunkB, endB); err != nil {
			return err
		}
		posA, posB = endA, endB
	}
	return nil
}
