package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseComplement(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"simple", "ATGC", "GCAT"},
		{"single base", "A", "T"},
		{"palindrome", "ATAT", "ATAT"},
		{"lowercase", "atgc", "gcat"},
		{"mixed case", "AtGc", "gCaT"},
		{"empty", "", ""},
		{"ambiguity codes", "RYKMBVDHN", "NDHBVKMRY"},
		{"strong and weak", "SW", "WS"},
		{"gap kept", "A-C", "G-T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReverseComplement(tt.seq))
		})
	}
}

func TestReverseComplement_Involution(t *testing.T) {
	s := "ACGTRYKMBVDHNSWacgtn"
	assert.Equal(t, s, ReverseComplement(ReverseComplement(s)))
}

func TestComplement_Uracil(t *testing.T) {
	assert.Equal(t, byte('A'), Complement('U'))
	assert.Equal(t, byte('a'), Complement('u'))
	assert.Equal(t, byte('T'), Complement('A'))
}

func TestStrand_Apply(t *testing.T) {
	assert.Equal(t, "AACG", Forward.Apply("AACG"))
	assert.Equal(t, "CGTT", ReverseComplementStrand.Apply("AACG"))
	assert.Equal(t, "+", Forward.String())
	assert.Equal(t, "-", ReverseComplementStrand.String())
	assert.Equal(t, [2]Strand{Forward, ReverseComplementStrand}, Strands)
}
