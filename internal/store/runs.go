package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/seqlift/internal/coords"
	"github.com/inodb/seqlift/internal/match"
)

// ErrNotFound is returned when a requested run or map does not exist.
var ErrNotFound = errors.New("not found")

// Run describes one matching run.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Queries     FileFingerprint
	Targets     FileFingerprint
	MinIdentity float64
	Base        int
}

// NewRun creates a run with a fresh ID.
func NewRun(queries, targets FileFingerprint, minIdentity float64, base int) Run {
	return Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Queries:     queries,
		Targets:     targets,
		MinIdentity: minIdentity,
		Base:        base,
	}
}

// MatchRecord is the stored form of a match and its coordinate map.
type MatchRecord struct {
	QueryID       string
	OriginalID    string
	TargetID      string
	Reversed      bool
	Score         float64
	Identity      float64
	Matches       int
	AlignedLength int
	Map           []int
}

// NewMatchRecord builds the stored form of a match.
func NewMatchRecord(m *match.Match, cm *coords.Map) MatchRecord {
	return MatchRecord{
		QueryID:       m.Query.ID,
		OriginalID:    m.OriginalID,
		TargetID:      m.Target.ID,
		Reversed:      m.Reversed,
		Score:         m.Score(),
		Identity:      m.Identity(),
		Matches:       m.Alignment.Matches,
		AlignedLength: m.Alignment.AlignedLength,
		Map:           cm.Entries(),
	}
}

// WriteRun stores a run with its matches and map entries. Either all of
// the run is stored or none of it: SQLite writes everything in one
// transaction, DuckDB appends map entries after the commit and deletes the
// run again if appending fails.
func (s *Store) WriteRun(run Run, records []MatchRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.CreatedAt),
		run.Queries.Path, run.Queries.Size, formatTime(run.Queries.ModTime),
		run.Targets.Path, run.Targets.Size, formatTime(run.Targets.ModTime),
		run.MinIdentity, int64(run.Base),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO matches VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(run.ID, int64(i), r.QueryID, r.OriginalID, r.TargetID, r.Reversed,
			r.Score, r.Identity, int64(r.Matches), int64(r.AlignedLength)); err != nil {
			return fmt.Errorf("insert match %s: %w", r.QueryID, err)
		}
	}
	if s.driver != "duckdb" {
		if err := insertMaps(tx, run.ID, records); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if s.driver == "duckdb" {
		if err := s.appendMaps(run.ID, records); err != nil {
			if derr := s.DeleteRun(run.ID); derr != nil {
				return fmt.Errorf("%w (cleanup: %v)", err, derr)
			}
			return err
		}
	}
	return nil
}

// DeleteRun removes a run with its matches and map entries.
func (s *Store) DeleteRun(runID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"coord_maps", "matches", "runs"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// appendMaps bulk-inserts map entries using the DuckDB Appender API.
func (s *Store) appendMaps(runID string, records []MatchRecord) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "coord_maps")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		for idx, pos := range r.Map {
			if err := appender.AppendRow(runID, r.QueryID, r.TargetID, int64(idx), int64(pos)); err != nil {
				return fmt.Errorf("append map entry: %w", err)
			}
		}
	}
	return appender.Flush()
}

func insertMaps(tx *sql.Tx, runID string, records []MatchRecord) error {
	stmt, err := tx.Prepare(`INSERT INTO coord_maps VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare map insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		for idx, pos := range r.Map {
			if _, err := stmt.Exec(runID, r.QueryID, r.TargetID, int64(idx), int64(pos)); err != nil {
				return fmt.Errorf("insert map entry: %w", err)
			}
		}
	}
	return nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT run_id, created_at,
		queries_path, queries_size, queries_modtime,
		targets_path, targets_size, targets_modtime,
		min_identity, base
		FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created, queriesMod, targetsMod string
		var base int64
		if err := rows.Scan(&r.ID, &created,
			&r.Queries.Path, &r.Queries.Size, &queriesMod,
			&r.Targets.Path, &r.Targets.Size, &targetsMod,
			&r.MinIdentity, &base); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = parseTime(created)
		r.Queries.ModTime = parseTime(queriesMod)
		r.Targets.ModTime = parseTime(targetsMod)
		r.Base = int(base)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Matches returns the matches of a run in query order. Map entries are
// not loaded; use LookupMap.
func (s *Store) Matches(runID string) ([]MatchRecord, error) {
	rows, err := s.db.Query(`SELECT query_id, original_id, target_id, reversed,
		score, identity, matches, aligned_length
		FROM matches WHERE run_id=? ORDER BY ord`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		var n, alignedLen int64
		if err := rows.Scan(&r.QueryID, &r.OriginalID, &r.TargetID, &r.Reversed,
			&r.Score, &r.Identity, &n, &alignedLen); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		r.Matches, r.AlignedLength = int(n), int(alignedLen)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return records, nil
}

// LookupMap loads the coordinate map stored for a (query, target) pair.
func (s *Store) LookupMap(runID, queryID, targetID string) (*coords.Map, error) {
	var base int64
	err := s.db.QueryRow(`SELECT base FROM runs WHERE run_id=?`, runID).Scan(&base)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.Query(`SELECT pos FROM coord_maps
		WHERE run_id=? AND query_id=? AND target_id=? ORDER BY idx`,
		runID, queryID, targetID)
	if err != nil {
		return nil, fmt.Errorf("query map: %w", err)
	}
	defer rows.Close()

	var entries []int
	for rows.Next() {
		var pos int64
		if err := rows.Scan(&pos); err != nil {
			return nil, fmt.Errorf("scan map entry: %w", err)
		}
		entries = append(entries, int(pos))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate map: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("map %s/%s in run %s: %w", queryID, targetID, runID, ErrNotFound)
	}
	return coords.FromEntries(entries, int(base))
}
