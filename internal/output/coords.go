package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/inodb/seqlift/internal/match"
)

// CoordsEntry records the alignment breakpoints of one match. IDs holds
// the (query, target) pair; Coords holds the breakpoint positions of the
// query and target rows.
type CoordsEntry struct {
	IDs    [2]string `json:"ids"`
	Coords [2][]int  `json:"coords"`
}

// NewCoordsEntries builds one entry per match, in match order.
func NewCoordsEntries(matches []*match.Match) []CoordsEntry {
	entries := make([]CoordsEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, CoordsEntry{
			IDs:    [2]string{m.Query.ID, m.Target.ID},
			Coords: m.Alignment.Coordinates(),
		})
	}
	return entries
}

// WriteCoords writes the coordinate entries of matches as a JSON list.
func WriteCoords(w io.Writer, matches []*match.Match) error {
	if err := json.NewEncoder(w).Encode(NewCoordsEntries(matches)); err != nil {
		return fmt.Errorf("encode coords: %w", err)
	}
	return nil
}

// ReadCoords reads a coordinate file written by WriteCoords.
func ReadCoords(r io.Reader) ([]CoordsEntry, error) {
	var entries []CoordsEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode coords: %w", err)
	}
	return entries, nil
}

// FindCoords returns the entry for the given query and target IDs.
func FindCoords(entries []CoordsEntry, queryID, targetID string) (CoordsEntry, bool) {
	for _, e := range entries {
		if e.IDs[0] == queryID && e.IDs[1] == targetID {
			return e, true
		}
	}
	return CoordsEntry{}, false
}
