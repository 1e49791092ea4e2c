package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/seqlift/internal/coords"
	"github.com/inodb/seqlift/internal/match"
	"github.com/inodb/seqlift/internal/output"
	"github.com/inodb/seqlift/internal/seq"
	"github.com/inodb/seqlift/internal/store"
)

type matchOptions struct {
	outDir string
	dbPath string
	base1  bool
}

func newMatchCmd() *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match [flags] <queries.fasta> <targets.fasta>",
		Short: "Pair every query with its best-matching target",
		Long: `Pair every query sequence with one target sequence. Both strands of each
query are aligned against every target still available; the best-scoring
(strand, target) wins and the target is removed from the pool. Queries that
match on the reverse strand are reverse complemented and renamed <id>_rev.

Outputs, written to the output directory:
  coords.json                                     alignment breakpoints per pair
  <queries>.reoriented.fasta                      reverse-complemented queries
  <queries>_<query>_<targets>_<target>.aln        one alignment report per pair`,
		Example: `  seqlift match -o out/ assembly_a.fasta assembly_b.fasta
  seqlift match --min-identity 0.9 --db runs.duckdb a.fasta.gz b.fasta.gz`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Store the run in this DuckDB (or .sqlite) database")
	cmd.Flags().BoolVar(&opts.base1, "base1", false, "Store 1-based coordinate maps")
	cmd.Flags().Float64("min-identity", match.DefaultMinIdentity, "Minimum identity ratio of every pair")
	cmd.Flags().Int("threads", 0, "Alignment workers (0 = number of CPUs)")
	viper.BindPFlag("match.min_identity", cmd.Flags().Lookup("min-identity"))
	viper.BindPFlag("match.threads", cmd.Flags().Lookup("threads"))

	return cmd
}

func runMatch(cmd *cobra.Command, queriesPath, targetsPath string, opts matchOptions) error {
	queries, err := seq.ReadFASTAFile(queriesPath)
	if err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	targets, err := seq.ReadFASTAFile(targetsPath)
	if err != nil {
		return fmt.Errorf("reading targets: %w", err)
	}
	logger.Info("loaded sequences",
		zap.Int("queries", len(queries)),
		zap.Int("targets", len(targets)))

	var runStore *store.Store
	if opts.dbPath != "" {
		runStore, err = store.Open(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer runStore.Close()
	}

	v := viper.GetViper()
	minIdentity := v.GetFloat64("match.min_identity")
	matcher := match.NewMatcher(scoringFromConfig(v, "match.scoring"), minIdentity)
	matcher.SetWorkers(v.GetInt("match.threads"))
	matcher.SetWarnCells(v.GetInt("align.warn_cells"))
	matcher.SetLogger(logger)

	matches, err := matcher.MatchAll(queries, targets)
	if err != nil {
		return err
	}

	var runID string
	if runStore != nil {
		runID, err = storeRun(runStore, queriesPath, targetsPath, minIdentity, baseOf(opts.base1), matches)
		if err != nil {
			return err
		}
	}

	written, err := writeMatchOutputs(opts.outDir, fileStem(queriesPath), fileStem(targetsPath), matches)
	if err != nil {
		for _, path := range written {
			os.Remove(path)
		}
		if runStore != nil {
			if derr := runStore.DeleteRun(runID); derr != nil {
				logger.Warn("could not remove stored run", zap.String("run", runID), zap.Error(derr))
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Paired %d queries (%d reversed) into %s\n",
		len(matches), len(match.Reoriented(matches)), opts.outDir)
	return nil
}

// writeMatchOutputs writes coords.json, the reoriented queries and one
// report per match. It returns the paths committed so far, also on error.
func writeMatchOutputs(outDir, queriesBase, targetsBase string, matches []*match.Match) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(f *output.AtomicFile) error) error {
		path := filepath.Join(outDir, name)
		if err := writeAtomic(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write("coords.json", func(f *output.AtomicFile) error {
		return output.WriteCoords(f, matches)
	}); err != nil {
		return written, err
	}

	reoriented := match.Reoriented(matches)
	if err := write(queriesBase+".reoriented.fasta", func(f *output.AtomicFile) error {
		return seq.WriteFASTA(f, reoriented...)
	}); err != nil {
		return written, err
	}

	for _, m := range matches {
		if err := write(output.ReportFileName(queriesBase, targetsBase, m), func(f *output.AtomicFile) error {
			return output.WriteReport(f, m)
		}); err != nil {
			return written, err
		}
		logger.Debug("paired",
			zap.String("query", m.Query.ID),
			zap.String("target", m.Target.ID),
			zap.Float64("score", m.Score()),
			zap.Float64("identity", m.Identity()))
	}
	return written, nil
}

func storeRun(s *store.Store, queriesPath, targetsPath string, minIdentity float64, base int, matches []*match.Match) (string, error) {
	queriesFP, err := store.StatFile(queriesPath)
	if err != nil {
		return "", fmt.Errorf("stat queries: %w", err)
	}
	targetsFP, err := store.StatFile(targetsPath)
	if err != nil {
		return "", fmt.Errorf("stat targets: %w", err)
	}

	records := make([]store.MatchRecord, 0, len(matches))
	entries := 0
	for _, m := range matches {
		cm, err := coords.Build(m.Alignment, base)
		if err != nil {
			return "", fmt.Errorf("build map for %s: %w", m.Query.ID, err)
		}
		records = append(records, store.NewMatchRecord(m, cm))
		entries += cm.Len()
	}

	run := store.NewRun(queriesFP, targetsFP, minIdentity, base)
	if err := s.WriteRun(run, records); err != nil {
		return "", fmt.Errorf("store run: %w", err)
	}
	logger.Info("stored run",
		zap.String("run", run.ID),
		zap.String("driver", s.Driver()),
		zap.String("map_entries", humanize.Comma(int64(entries))))
	return run.ID, nil
}

// writeAtomic writes path through an AtomicFile, committing only when fn
// succeeds.
func writeAtomic(path string, fn func(f *output.AtomicFile) error) error {
	f, err := output.CreateAtomic(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Abort()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Commit()
}
