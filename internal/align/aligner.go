package align

import (
	"math"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DefaultWarnCells is the DP size above which Align logs a memory warning.
const DefaultWarnCells = 100_000_000

// DP states. Their numeric order is the traceback tie-break order: a
// substitution wins over a gap in row A, which wins over a gap in row B.
const (
	stateSub  uint8 = iota // a[i-1] aligned to b[j-1]
	stateGapA              // gap in row A, consumes b[j-1]
	stateGapB              // gap in row B, consumes a[i-1]
)

var negInf = math.Inf(-1)

// Aligner computes global alignments. It keeps its DP buffers between calls,
// so an Aligner must not be used from more than one goroutine at a time.
type Aligner struct {
	scoring   Scoring
	warnCells int
	logger    *zap.Logger

	// rolling score rows, indexed by column
	prevSub, prevGapA, prevGapB []float64
	curSub, curGapA, curGapB    []float64

	// trace holds the predecessor state of every (i, j) cell for the three
	// states, two bits each: sub in bits 0-1, gapA in 2-3, gapB in 4-5.
	trace []uint8
}

// New creates an aligner with the given scoring.
func New(scoring Scoring) *Aligner {
	return &Aligner{
		scoring:   scoring,
		warnCells: DefaultWarnCells,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for warnings about degenerate or large inputs.
func (al *Aligner) SetLogger(l *zap.Logger) {
	al.logger = l
}

// SetWarnCells sets the DP cell count above which a memory warning is logged.
// Zero or less disables the warning.
func (al *Aligner) SetWarnCells(n int) {
	al.warnCells = n
}

// Scoring returns the scoring parameters of the aligner.
func (al *Aligner) Scoring() Scoring {
	return al.scoring
}

// Align returns the best global alignment of a against b. Row A of the
// result is a, row B is b. Time and memory are O(len(a)*len(b)).
//
// An empty input produces an alignment where the other sequence is aligned
// entirely against gaps.
func (al *Aligner) Align(a, b string) *Alignment {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		al.logger.Warn("degenerate alignment input",
			zap.Int("len_a", n), zap.Int("len_b", m))
	}
	cells := (n + 1) * (m + 1)
	if al.warnCells > 0 && cells > al.warnCells {
		al.logger.Warn("large alignment",
			zap.Int("len_a", n), zap.Int("len_b", m),
			zap.String("traceback_memory", humanize.Bytes(uint64(cells))))
	}

	al.grow(n, m)
	score, state := al.fill(a, b)
	rowA, rowB := al.traceback(a, b, state)

	return newAlignment(rowA, rowB, score)
}

func (al *Aligner) grow(n, m int) {
	cols := m + 1
	if cap(al.curSub) < cols {
		al.prevSub = make([]float64, cols)
		al.prevGapA = make([]float64, cols)
		al.prevGapB = make([]float64, cols)
		al.curSub = make([]float64, cols)
		al.curGapA = make([]float64, cols)
		al.curGapB = make([]float64, cols)
	}
	al.prevSub, al.prevGapA, al.prevGapB = al.prevSub[:cols], al.prevGapA[:cols], al.prevGapB[:cols]
	al.curSub, al.curGapA, al.curGapB = al.curSub[:cols], al.curGapA[:cols], al.curGapB[:cols]

	cells := (n + 1) * cols
	if cap(al.trace) < cells {
		al.trace = make([]uint8, cells)
	}
	al.trace = al.trace[:cells]
}

// best3 returns the maximum of three scores and the index of the first
// maximal one.
func best3(s0, s1, s2 float64) (float64, uint8) {
	best, idx := s0, stateSub
	if s1 > best {
		best, idx = s1, stateGapA
	}
	if s2 > best {
		best, idx = s2, stateGapB
	}
	return best, idx
}

// gapScores returns the open and extend scores of a gap. Gaps running along
// the first or last row/column of the DP matrix are end gaps.
func (al *Aligner) gapScores(terminal bool) (open, extend float64) {
	if terminal {
		return al.scoring.EndGap, al.scoring.EndGap
	}
	return al.scoring.GapOpen, al.scoring.GapExtend
}

// fill runs the Gotoh recurrences row by row and records traceback
// pointers. It returns the final score and the state the traceback starts in.
func (al *Aligner) fill(a, b string) (float64, uint8) {
	n, m := len(a), len(b)
	cols := m + 1
	trace := al.trace

	for i := 0; i <= n; i++ {
		al.prevSub, al.curSub = al.curSub, al.prevSub
		al.prevGapA, al.curGapA = al.curGapA, al.prevGapA
		al.prevGapB, al.curGapB = al.curGapB, al.prevGapB
		sub, gapA, gapB := al.curSub, al.curGapA, al.curGapB
		pSub, pGapA, pGapB := al.prevSub, al.prevGapA, al.prevGapB

		// horizontal gaps in the first and last row are end gaps
		hOpen, hExt := al.gapScores(i == 0 || i == n)

		for j := 0; j <= m; j++ {
			var ptr uint8

			if i == 0 && j == 0 {
				sub[0], gapA[0], gapB[0] = 0, negInf, negInf
				trace[0] = 0
				continue
			}

			if i > 0 && j > 0 {
				s, p := best3(pSub[j-1], pGapA[j-1], pGapB[j-1])
				sub[j] = s + al.scoring.substitution(a[i-1], b[j-1])
				ptr |= p
			} else {
				sub[j] = negInf
			}

			if j > 0 {
				s, p := best3(sub[j-1]+hOpen, gapA[j-1]+hExt, gapB[j-1]+hOpen)
				gapA[j] = s
				ptr |= p << 2
			} else {
				gapA[j] = negInf
			}

			if i > 0 {
				vOpen, vExt := al.gapScores(j == 0 || j == m)
				s, p := best3(pSub[j]+vOpen, pGapA[j]+vOpen, pGapB[j]+vExt)
				gapB[j] = s
				ptr |= p << 4
			} else {
				gapB[j] = negInf
			}

			trace[i*cols+j] = ptr
		}
	}

	if n == 0 && m == 0 {
		return 0, stateSub
	}
	return best3(al.curSub[m], al.curGapA[m], al.curGapB[m])
}

func (al *Aligner) traceback(a, b string, state uint8) (string, string) {
	i, j := len(a), len(b)
	cols := len(b) + 1
	rowA := make([]byte, 0, i+j)
	rowB := make([]byte, 0, i+j)

	for i > 0 || j > 0 {
		ptr := al.trace[i*cols+j]
		switch state {
		case stateSub:
			rowA = append(rowA, a[i-1])
			rowB = append(rowB, b[j-1])
			state = ptr & 3
			i--
			j--
		case stateGapA:
			rowA = append(rowA, Gap)
			rowB = append(rowB, b[j-1])
			state = (ptr >> 2) & 3
			j--
		case stateGapB:
			rowA = append(rowA, a[i-1])
			rowB = append(rowB, Gap)
			state = (ptr >> 4) & 3
			i--
		}
	}

	reverse(rowA)
	reverse(rowB)
	return string(rowA), string(rowB)
}

func reverse(b []byte) {
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
}
