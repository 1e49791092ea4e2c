package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/seqlift/internal/align"
)

func TestParseColumns(t *testing.T) {
	tests := []struct {
		in   string
		want []int
		err  bool
	}{
		{"1,2,6,7", []int{1, 2, 6, 7}, false},
		{" 3 , 4 ", []int{3, 4}, false},
		{"", nil, false},
		{"1,x", nil, true},
		{"1,-2", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColumns(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnescapeDelimiter(t *testing.T) {
	assert.Equal(t, "\t", unescapeDelimiter(`\t`))
	assert.Equal(t, "\t", unescapeDelimiter("\t"))
	assert.Equal(t, ",", unescapeDelimiter(","))
	assert.Equal(t, ";", unescapeDelimiter(";"))
	assert.Equal(t, `"`, unescapeDelimiter(`"`))
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "assembly", fileStem("/data/assembly.fasta"))
	assert.Equal(t, "assembly", fileStem("assembly.fa.gz"))
	assert.Equal(t, "reads.v2", fileStem("reads.v2.fa"))
	assert.Equal(t, "contigs", fileStem("contigs"))
}

func TestScoringDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, align.DefaultScoring(), scoringFromConfig(v, "match.scoring"))
	assert.Equal(t, align.TransferScoring(), scoringFromConfig(v, "transfer.scoring"))
	assert.InDelta(t, 0.85, v.GetFloat64("match.min_identity"), 1e-9)
	assert.Equal(t, "1,2,6,7", v.GetString("transfer.columns"))
	assert.Equal(t, 11, v.GetInt("transfer.start_column"))
	assert.Equal(t, 10, v.GetInt("transfer.size_column"))
}

func TestScoringOverride(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("transfer.scoring.end_gap", "0")
	v.Set("transfer.scoring.match", 3)

	s := scoringFromConfig(v, "transfer.scoring")
	assert.Equal(t, 0.0, s.EndGap)
	assert.Equal(t, 3.0, s.Match)
	assert.Equal(t, -4.0, s.Mismatch)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = newLogger("loud")
	assert.Error(t, err)
}
