// Package output writes match results: alignment reports, coordinate
// files and alignment views.
package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/seqlift/internal/match"
)

// ReportWidth is the number of alignment columns per report block.
const ReportWidth = 60

// ReportFileName returns the name of the alignment report of a match:
// <queries>_<query>_<targets>_<target>.aln.
func ReportFileName(queriesBase, targetsBase string, m *match.Match) string {
	return fmt.Sprintf("%s_%s_%s_%s.aln", queriesBase, m.Query.ID, targetsBase, m.Target.ID)
}

// WriteReport writes a BLAST-like text report of one match.
func WriteReport(w io.Writer, m *match.Match) error {
	bw := bufio.NewWriter(w)
	aln := m.Alignment

	fmt.Fprintf(bw, "Query: %s\n", m.Query.ID)
	fmt.Fprintf(bw, "Subject: %s\n", m.Target.ID)
	fmt.Fprintf(bw, "Score: %.1f\n", aln.Score)
	fmt.Fprintf(bw, "Identity: %.2f%% (%d/%d)\n\n", m.IdentityPercent(), aln.Matches, aln.AlignedLength)
	fmt.Fprintf(bw, "## Alignment:\n\n")

	if err := aln.Format(bw, ReportWidth, "query", "target"); err != nil {
		return err
	}
	return bw.Flush()
}
