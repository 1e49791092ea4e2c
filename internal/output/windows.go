package output

import (
	"fmt"
	"io"

	"github.com/inodb/seqlift/internal/align"
)

// WindowWidth is the number of alignment columns per window.
const WindowWidth = 50

// WriteWindows prints the alignment in windows of width columns. Each row
// is prefixed and suffixed with 0-based positions: the source and target
// lines show the position of the last residue reached at the first and
// last window column (-1 before the first residue), the middle line shows
// alignment column indices.
func WriteWindows(w io.Writer, aln *align.Alignment, width int) error {
	if width <= 0 {
		width = WindowWidth
	}

	n := aln.Len()
	posA := make([]int, n)
	posB := make([]int, n)
	a, b := -1, -1
	for k := 0; k < n; k++ {
		if aln.A[k] != align.Gap {
			a++
		}
		if aln.B[k] != align.Gap {
			b++
		}
		posA[k], posB[k] = a, b
	}
	mid := aln.MidLine(' ')

	for s := 0; s < n; s += width {
		e := min(s+width, n)
		if _, err := fmt.Fprintf(w, "\nprint alignment with 0-based coord\n\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10d%s %d\n", posA[s], aln.A[s:e], posA[e-1]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10d%s %d\n", s, mid[s:e], e-1); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-10d%s %d\n", posB[s], aln.B[s:e], posB[e-1]); err != nil {
			return err
		}
	}
	return nil
}
