package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/seqlift/internal/align"
	"github.com/inodb/seqlift/internal/match"
)

// setDefaults registers the default value of every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("align.warn_cells", align.DefaultWarnCells)

	v.SetDefault("match.min_identity", match.DefaultMinIdentity)
	v.SetDefault("match.threads", 0)
	setScoringDefaults(v, "match.scoring", align.DefaultScoring())

	setScoringDefaults(v, "transfer.scoring", align.TransferScoring())
	v.SetDefault("transfer.columns", "1,2,6,7")
	v.SetDefault("transfer.start_column", 11)
	v.SetDefault("transfer.size_column", 10)
	v.SetDefault("transfer.column_delimiter", "\t")
	v.SetDefault("transfer.list_delimiter", ",")
	v.SetDefault("transfer.base1", false)
}

func setScoringDefaults(v *viper.Viper, prefix string, s align.Scoring) {
	v.SetDefault(prefix+".match", s.Match)
	v.SetDefault(prefix+".mismatch", s.Mismatch)
	v.SetDefault(prefix+".gap_open", s.GapOpen)
	v.SetDefault(prefix+".gap_extend", s.GapExtend)
	v.SetDefault(prefix+".end_gap", s.EndGap)
}

// scoringFromConfig reads the scoring parameters stored under prefix.
func scoringFromConfig(v *viper.Viper, prefix string) align.Scoring {
	return align.Scoring{
		Match:     v.GetFloat64(prefix + ".match"),
		Mismatch:  v.GetFloat64(prefix + ".mismatch"),
		GapOpen:   v.GetFloat64(prefix + ".gap_open"),
		GapExtend: v.GetFloat64(prefix + ".gap_extend"),
		EndGap:    v.GetFloat64(prefix + ".end_gap"),
	}
}

// parseColumns parses a comma-separated list of 0-based column indices.
func parseColumns(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	cols := make([]int, 0, len(parts))
	for _, p := range parts {
		c, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || c < 0 {
			return nil, fmt.Errorf("invalid column %q", p)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// unescapeDelimiter turns the escapes a shell user is likely to type ("\t")
// into the characters they stand for.
func unescapeDelimiter(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil && u != "" {
		return u
	}
	return s
}

// fileStem returns the file name without directory, a trailing .gz and
// its last extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func baseOf(base1 bool) int {
	if base1 {
		return 1
	}
	return 0
}
