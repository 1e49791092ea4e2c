// Package coords translates positions between the coordinate systems of two
// aligned sequences and rewrites coordinate columns of tabular annotations.
package coords

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inodb/seqlift/internal/align"
)

var (
	// ErrOutOfRange is returned when a position lies outside a map's domain.
	ErrOutOfRange = errors.New("coordinate out of range")
	// ErrBadBase is returned for a base other than 0 or 1.
	ErrBadBase = errors.New("base must be 0 or 1")
)

// Map translates positions of an alignment's row A (source) into positions
// of row B (target).
//
// With base 0, entry i is the 0-based target position of source position i
// and the map has len(source)+1 entries. With base 1, entry 0 is a
// placeholder so that 1-based source positions index the map directly and
// the map has len(source)+2 entries. In both cases the last entry is an
// exclusive end bound, so an interval ending at the end of the source can
// be translated.
//
// A source position aligned to a gap maps to the closest retained target
// position before it. Entries never decrease.
type Map struct {
	base    int
	entries []int
}

// Build walks the alignment columns and records, for every source residue,
// the target position reached so far.
func Build(aln *align.Alignment, base int) (*Map, error) {
	if base != 0 && base != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadBase, base)
	}

	sourceLen := aln.Len() - countGaps(aln.A)
	entries := make([]int, 0, sourceLen+2)

	pos := -1
	if base == 1 {
		pos = 0
		entries = append(entries, pos)
	}
	last := pos

	for k := 0; k < aln.Len(); k++ {
		if aln.B[k] != align.Gap {
			pos++
		}
		if aln.A[k] != align.Gap {
			entries = append(entries, pos)
			last = pos
		}
	}
	entries = append(entries, last+1)

	return &Map{base: base, entries: entries}, nil
}

// FromEntries wraps precomputed map entries, as stored by a previous run.
func FromEntries(entries []int, base int) (*Map, error) {
	if base != 0 && base != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadBase, base)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i] < entries[i-1] {
			return nil, fmt.Errorf("map entries decrease at index %d", i)
		}
	}
	return &Map{base: base, entries: entries}, nil
}

// FromBreakpoints rebuilds a map from alignment breakpoints, as written to
// a coordinates file: two parallel lists of source and target positions at
// every segment boundary.
func FromBreakpoints(coords [2][]int, base int) (*Map, error) {
	src, tgt := coords[0], coords[1]
	if len(src) != len(tgt) {
		return nil, fmt.Errorf("breakpoint lists differ in length: %d vs %d", len(src), len(tgt))
	}
	if len(src) == 0 {
		return nil, errors.New("no breakpoints")
	}

	var rowA, rowB strings.Builder
	for k := 1; k < len(src); k++ {
		da, db := src[k]-src[k-1], tgt[k]-tgt[k-1]
		switch {
		case da < 0 || db < 0:
			return nil, fmt.Errorf("breakpoints decrease at index %d", k)
		case da == db:
			rowA.WriteString(strings.Repeat("N", da))
			rowB.WriteString(strings.Repeat("N", db))
		case da == 0:
			rowA.WriteString(strings.Repeat(string(align.Gap), db))
			rowB.WriteString(strings.Repeat("N", db))
		case db == 0:
			rowA.WriteString(strings.Repeat("N", da))
			rowB.WriteString(strings.Repeat(string(align.Gap), da))
		default:
			return nil, fmt.Errorf("segment %d advances both rows unequally: %d vs %d", k, da, db)
		}
	}

	return Build(&align.Alignment{A: rowA.String(), B: rowB.String()}, base)
}

func countGaps(row string) int {
	n := 0
	for k := 0; k < len(row); k++ {
		if row[k] == align.Gap {
			n++
		}
	}
	return n
}

// Base returns the index base (0 or 1) of the map.
func (m *Map) Base() int {
	return m.base
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns the raw map entries. The slice must not be modified.
func (m *Map) Entries() []int {
	return m.entries
}

func (m *Map) check(pos int) error {
	if pos < 0 || pos >= len(m.entries) {
		return fmt.Errorf("%w: index %d, map size %d", ErrOutOfRange, pos, len(m.entries))
	}
	return nil
}

// Translate returns the target position of source position pos. Positions
// deleted from the target project onto the previous retained target
// position; a negative result (deletion at the very start) is clamped to 0.
func (m *Map) Translate(pos int) (int, error) {
	if err := m.check(pos); err != nil {
		return 0, err
	}
	return max(m.entries[pos], 0), nil
}

// TranslateBoundary translates the boundary in front of source position
// pos, as used for the start and exclusive end of an interval. Unlike
// Translate, a position deleted from the target projects onto the next
// retained target position, so an interval lying wholly inside a deletion
// collapses to zero length.
func (m *Map) TranslateBoundary(pos int) (int, error) {
	if err := m.check(pos); err != nil {
		return 0, err
	}
	prev := -1
	if pos > 0 {
		prev = m.entries[pos-1]
	}
	v := m.entries[pos]
	if v == prev {
		v++
	}
	return max(v, 0), nil
}
