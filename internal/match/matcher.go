// Package match pairs query sequences with target sequences by alignment
// score, trying both strands of every query.
package match

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/seqlift/internal/align"
	"github.com/inodb/seqlift/internal/seq"
)

var (
	// ErrSizeMismatch is returned when the query and target sets differ in size.
	ErrSizeMismatch = errors.New("different number of queries and targets")
	// ErrBelowThreshold is returned when the best pairing of a query is
	// less identical than the configured minimum.
	ErrBelowThreshold = errors.New("identity below threshold")
	// ErrPoolExhausted is returned when no target is left for a query.
	ErrPoolExhausted = errors.New("no targets left to match")
)

// DefaultMinIdentity is the default minimum identity ratio of a match.
const DefaultMinIdentity = 0.85

// ReversedSuffix is appended to the ID of a query matched on the reverse strand.
const ReversedSuffix = "_rev"

// Match pairs a query with its target.
type Match struct {
	// Query is the query as aligned. For a reversed match its residues are
	// reverse complemented and its ID carries ReversedSuffix.
	Query *seq.Sequence
	// OriginalID is the query ID as read from the input.
	OriginalID string
	Target     *seq.Sequence
	Alignment  *align.Alignment
	Reversed   bool
}

// Identity returns the alignment identity as a ratio.
func (m *Match) Identity() float64 {
	return m.Alignment.Identity()
}

// IdentityPercent returns the alignment identity as a percentage.
func (m *Match) IdentityPercent() float64 {
	return 100 * m.Alignment.Identity()
}

// Score returns the alignment score.
func (m *Match) Score() float64 {
	return m.Alignment.Score
}

// Matcher assigns every query to one target. Queries are processed in
// input order and each takes the best-scoring target still available, so
// the assignment is greedy: when two targets are nearly equally good for
// several queries, earlier queries choose first.
type Matcher struct {
	scoring     align.Scoring
	minIdentity float64
	workers     int
	warnCells   int
	logger      *zap.Logger
}

// NewMatcher creates a matcher with the given scoring and minimum identity ratio.
func NewMatcher(scoring align.Scoring, minIdentity float64) *Matcher {
	return &Matcher{
		scoring:     scoring,
		minIdentity: minIdentity,
		warnCells:   align.DefaultWarnCells,
		logger:      zap.NewNop(),
	}
}

// SetWorkers sets the number of concurrent alignments. Zero uses all CPUs.
func (m *Matcher) SetWorkers(n int) {
	m.workers = n
}

// SetWarnCells sets the DP size above which aligners log a memory warning.
func (m *Matcher) SetWarnCells(n int) {
	m.warnCells = n
}

// SetLogger sets the logger for progress and warning messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// MatchAll pairs queries with targets one to one. For each query, both
// strands are aligned against every remaining target and the pairing with
// the highest raw score wins; ties go to the forward strand, then to the
// earlier target. The winning target leaves the pool before the next query.
//
// Any failure aborts the whole call and no matches are returned.
func (m *Matcher) MatchAll(queries, targets []*seq.Sequence) ([]*Match, error) {
	if len(queries) != len(targets) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, len(queries), len(targets))
	}

	aligners := &sync.Pool{
		New: func() any {
			al := align.New(m.scoring)
			al.SetLogger(m.logger)
			al.SetWarnCells(m.warnCells)
			return al
		},
	}

	pool := slices.Clone(targets)
	matches := make([]*Match, 0, len(queries))

	for _, q := range queries {
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: query %s", ErrPoolExhausted, q.ID)
		}

		best, err := m.bestCandidate(q, pool, aligners)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.ID, err)
		}

		match := &Match{
			Query:      &seq.Sequence{ID: q.ID, Residues: best.Query},
			OriginalID: q.ID,
			Target:     best.Target,
			Alignment:  best.Alignment,
			Reversed:   best.Strand == seq.ReverseComplementStrand,
		}
		if match.Reversed {
			match.Query.ID += ReversedSuffix
		}

		if match.Identity() < m.minIdentity {
			return nil, fmt.Errorf("%w: %s vs %s: identity %.2f%% < %.2f%%",
				ErrBelowThreshold, match.Query.ID, match.Target.ID,
				match.IdentityPercent(), 100*m.minIdentity)
		}

		m.logger.Info("matched query",
			zap.String("query", match.Query.ID),
			zap.String("target", match.Target.ID),
			zap.Bool("reversed", match.Reversed),
			zap.Float64("score", match.Score()),
			zap.Float64("identity", match.IdentityPercent()))

		pool = slices.Delete(pool, best.TargetIdx, best.TargetIdx+1)
		matches = append(matches, match)
	}

	return matches, nil
}

// bestCandidate scores every (strand, target) pair of q. All candidates are
// evaluated before the best one is chosen, in candidate order, so the
// result does not depend on the number of workers.
func (m *Matcher) bestCandidate(q *seq.Sequence, pool []*seq.Sequence, aligners *sync.Pool) (*Scored, error) {
	items := make(chan Candidate, len(seq.Strands)*len(pool))
	n := 0
	for _, strand := range seq.Strands {
		residues := strand.Apply(q.Residues)
		for idx, target := range pool {
			items <- Candidate{Seq: n, Strand: strand, TargetIdx: idx, Query: residues, Target: target}
			n++
		}
	}
	close(items)

	var best *Scored
	err := OrderedCollect(AlignCandidates(items, m.workers, aligners), func(s Scored) error {
		m.logger.Debug("candidate",
			zap.String("query", q.ID),
			zap.String("strand", s.Strand.String()),
			zap.String("target", s.Target.ID),
			zap.Float64("score", s.Alignment.Score))
		if best == nil || s.Alignment.Score > best.Alignment.Score {
			scored := s
			best = &scored
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, errors.New("no alignment found")
	}
	return best, nil
}

// Reoriented returns the queries that were matched on the reverse strand,
// as aligned.
func Reoriented(matches []*Match) []*seq.Sequence {
	var out []*seq.Sequence
	for _, m := range matches {
		if m.Reversed {
			out = append(out, m.Query)
		}
	}
	return out
}
