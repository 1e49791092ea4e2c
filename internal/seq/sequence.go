// Package seq provides nucleotide sequence records, strand handling and
// FASTA input/output.
package seq

// Sequence is a named residue string read from a FASTA file.
type Sequence struct {
	ID       string
	Residues string
}

// Len returns the number of residues.
func (s *Sequence) Len() int {
	return len(s.Residues)
}

// Strand selects which orientation of a sequence is used.
type Strand uint8

const (
	Forward Strand = iota
	ReverseComplementStrand
)

// Strands lists both orientations in the order they are tried during matching.
var Strands = [2]Strand{Forward, ReverseComplementStrand}

// String implements fmt.Stringer.
func (s Strand) String() string {
	if s == ReverseComplementStrand {
		return "-"
	}
	return "+"
}

// Apply returns the residues of seq as seen on the given strand.
func (s Strand) Apply(residues string) string {
	if s == ReverseComplementStrand {
		return ReverseComplement(residues)
	}
	return residues
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
// IUPAC ambiguity codes are complemented and case is preserved.
func ReverseComplement(residues string) string {
	n := len(residues)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(residues[n-1-i])
	}
	return string(result)
}

var complementTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := []string{"AT", "CG", "RY", "KM", "BV", "DH", "NN", "SS", "WW", "UA"}
	for _, p := range pairs {
		a, b := p[0], p[1]
		t[a], t[a+'a'-'A'] = b, b+'a'-'A'
		if a != 'U' {
			t[b], t[b+'a'-'A'] = a, a+'a'-'A'
		}
	}
	return t
}()

// Complement returns the complement of a single base. Symbols outside the
// IUPAC nucleotide alphabet (including the gap '-') are returned unchanged.
func Complement(base byte) byte {
	return complementTable[base]
}
