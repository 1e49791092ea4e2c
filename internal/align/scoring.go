// Package align implements global pairwise alignment of nucleotide
// sequences with affine gap penalties and separate end-gap scoring.
package align

// Gap is the symbol placed in an aligned row where the other row has a residue.
const Gap = '-'

// Scoring holds the alignment score parameters. All values are added to the
// score, so penalties are negative.
type Scoring struct {
	Match     float64 // identical residues
	Mismatch  float64 // different residues
	GapOpen   float64 // first position of an internal gap
	GapExtend float64 // each further position of an internal gap
	EndGap    float64 // every position of a gap touching either sequence end
}

// DefaultScoring is used to pair related sequences: 2/-1/-10/-0.5 with free end gaps.
func DefaultScoring() Scoring {
	return Scoring{Match: 2, Mismatch: -1, GapOpen: -10, GapExtend: -0.5, EndGap: 0}
}

// TransferScoring is used when lifting annotations between two contigs.
// Terminal gaps are penalized so the ends stay anchored.
func TransferScoring() Scoring {
	return Scoring{Match: 5, Mismatch: -4, GapOpen: -10, GapExtend: -0.5, EndGap: -5}
}

var foldTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
		if i >= 'a' && i <= 'z' {
			t[i] = byte(i - 'a' + 'A')
		}
	}
	return t
}()

// sameResidue compares residues case-insensitively.
func sameResidue(x, y byte) bool {
	return foldTable[x] == foldTable[y]
}

func (s *Scoring) substitution(x, y byte) float64 {
	if sameResidue(x, y) {
		return s.Match
	}
	return s.Mismatch
}
