package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/seqlift/internal/align"
	"github.com/inodb/seqlift/internal/coords"
	"github.com/inodb/seqlift/internal/match"
	"github.com/inodb/seqlift/internal/seq"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []MatchRecord {
	return []MatchRecord{
		{
			QueryID: "q1", OriginalID: "q1", TargetID: "t1",
			Score: 16, Identity: 1, Matches: 8, AlignedLength: 8,
			Map: []int{0, 1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			QueryID: "q2_rev", OriginalID: "q2", TargetID: "t2", Reversed: true,
			Score: 4, Identity: 0.875, Matches: 7, AlignedLength: 8,
			Map: []int{0, 1, 2, 3, 3, 4, 5, 6, 7},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "duckdb", s.Driver())
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "duckdb", driverFor(""))
	assert.Equal(t, "duckdb", driverFor("runs.duckdb"))
	assert.Equal(t, "sqlite", driverFor("runs.sqlite"))
	assert.Equal(t, "sqlite", driverFor("/tmp/RUNS.SQLITE3"))
}

func testWriteAndLookup(t *testing.T, s *Store) {
	t.Helper()
	run := NewRun(
		FileFingerprint{Path: "queries.fa", Size: 100},
		FileFingerprint{Path: "targets.fa", Size: 120},
		0.85, 0,
	)
	require.NoError(t, s.WriteRun(run, sampleRecords()))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "queries.fa", runs[0].Queries.Path)
	assert.Equal(t, int64(120), runs[0].Targets.Size)
	assert.InDelta(t, 0.85, runs[0].MinIdentity, 1e-9)
	assert.True(t, run.CreatedAt.Equal(runs[0].CreatedAt))

	records, err := s.Matches(run.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].QueryID)
	assert.Equal(t, "q2_rev", records[1].QueryID)
	assert.Equal(t, "q2", records[1].OriginalID)
	assert.True(t, records[1].Reversed)
	assert.Equal(t, 7, records[1].Matches)
	assert.Nil(t, records[1].Map)

	m, err := s.LookupMap(run.ID, "q2_rev", "t2")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Base())
	assert.Equal(t, sampleRecords()[1].Map, m.Entries())

	pos, err := m.Translate(4)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
}

func TestWriteAndLookupDuckDB(t *testing.T) {
	testWriteAndLookup(t, openInMemory(t))
}

func TestWriteAndLookupSQLite(t *testing.T) {
	testWriteAndLookup(t, openSQLite(t))
}

func TestLookupMapNotFound(t *testing.T) {
	s := openInMemory(t)

	_, err := s.LookupMap("missing", "q", "t")
	assert.ErrorIs(t, err, ErrNotFound)

	run := NewRun(FileFingerprint{}, FileFingerprint{}, 0.85, 1)
	require.NoError(t, s.WriteRun(run, nil))
	_, err = s.LookupMap(run.ID, "q", "t")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunsAreDistinct(t *testing.T) {
	s := openSQLite(t)
	a := NewRun(FileFingerprint{}, FileFingerprint{}, 0.85, 0)
	b := NewRun(FileFingerprint{}, FileFingerprint{}, 0.9, 1)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, s.WriteRun(a, sampleRecords()[:1]))
	require.NoError(t, s.WriteRun(b, sampleRecords()[:1]))

	m, err := s.LookupMap(b.ID, "q1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Base())
	assert.Equal(t, 9, m.Len())

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	require.NoError(t, os.WriteFile(path, []byte(">a\nACGT\n"), 0644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(8), fp.Size)
	assert.False(t, fp.ModTime.IsZero())

	assert.False(t, fp.Changed())

	require.NoError(t, os.WriteFile(path, []byte(">a\nACGTACGT\n"), 0644))
	assert.True(t, fp.Changed())

	_, err = StatFile(filepath.Join(t.TempDir(), "missing.fa"))
	assert.Error(t, err)
	assert.True(t, FileFingerprint{Path: "missing.fa"}.Changed())
}

func TestRunFingerprintRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	require.NoError(t, os.WriteFile(path, []byte(">a\nACGT\n"), 0644))
	fp, err := StatFile(path)
	require.NoError(t, err)

	for _, s := range []*Store{openInMemory(t), openSQLite(t)} {
		run := NewRun(fp, FileFingerprint{}, 0.85, 0)
		require.NoError(t, s.WriteRun(run, nil))

		runs, err := s.Runs()
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.True(t, fp.ModTime.Equal(runs[0].Queries.ModTime), s.Driver())
		assert.False(t, runs[0].Queries.Changed(), s.Driver())
		assert.True(t, runs[0].Targets.ModTime.IsZero(), s.Driver())
	}
}

func TestNewMatchRecord(t *testing.T) {
	aln := align.New(align.DefaultScoring()).Align("ACGT", "ACGA")
	m := &match.Match{
		Query:      &seq.Sequence{ID: "q_rev", Residues: "ACGT"},
		OriginalID: "q",
		Target:     &seq.Sequence{ID: "t", Residues: "ACGA"},
		Alignment:  aln,
		Reversed:   true,
	}
	cm, err := coords.Build(aln, 0)
	require.NoError(t, err)

	r := NewMatchRecord(m, cm)
	assert.Equal(t, "q_rev", r.QueryID)
	assert.Equal(t, "q", r.OriginalID)
	assert.Equal(t, "t", r.TargetID)
	assert.True(t, r.Reversed)
	assert.Equal(t, 3, r.Matches)
	assert.Equal(t, 4, r.AlignedLength)
	assert.InDelta(t, 0.75, r.Identity, 1e-9)
	assert.InDelta(t, 5.0, r.Score, 1e-9)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.Map)
}

func TestDeleteRun(t *testing.T) {
	s := openInMemory(t)
	keep := NewRun(FileFingerprint{}, FileFingerprint{}, 0.85, 0)
	drop := NewRun(FileFingerprint{}, FileFingerprint{}, 0.85, 0)
	require.NoError(t, s.WriteRun(keep, sampleRecords()))
	require.NoError(t, s.WriteRun(drop, sampleRecords()))

	require.NoError(t, s.DeleteRun(drop.ID))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, keep.ID, runs[0].ID)

	_, err = s.LookupMap(drop.ID, "q1", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	records, err := s.Matches(drop.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = s.LookupMap(keep.ID, "q1", "t1")
	assert.NoError(t, err)
}

// A failure while writing map entries must not leave the run behind.
func TestWriteRunMapFailureLeavesNothing(t *testing.T) {
	for _, s := range []*Store{openInMemory(t), openSQLite(t)} {
		t.Run(s.Driver(), func(t *testing.T) {
			_, err := s.DB().Exec(`DROP TABLE coord_maps`)
			require.NoError(t, err)
			_, err = s.DB().Exec(`CREATE TABLE coord_maps (run_id VARCHAR)`)
			require.NoError(t, err)

			run := NewRun(FileFingerprint{}, FileFingerprint{}, 0.85, 0)
			require.Error(t, s.WriteRun(run, sampleRecords()))

			runs, err := s.Runs()
			require.NoError(t, err)
			assert.Empty(t, runs)
			records, err := s.Matches(run.ID)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}
