package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/inodb/seqlift/internal/store"
)

func newRunsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List stored match runs, or the pairs of one run",
		Example: `  seqlift runs --db runs.duckdb
  seqlift runs --db runs.duckdb 0b6f3c0e-5c44-4a4f-9f3e-6f1f4c1f2a7d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer s.Close()

			if len(args) == 1 {
				return listMatches(cmd, s, args[0])
			}
			return listRuns(cmd, s)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Run store written by the match command")
	cmd.MarkFlagRequired("db")

	return cmd
}

func listRuns(cmd *cobra.Command, s *store.Store) error {
	runs, err := s.Runs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tQUERIES\tTARGETS\tMIN_IDENTITY\tBASE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\n",
			r.ID, humanize.Time(r.CreatedAt),
			describeInput(r.Queries), describeInput(r.Targets),
			r.MinIdentity, r.Base)
	}
	return tw.Flush()
}

// describeInput shows an input path with its size, flagging files that
// changed since the run.
func describeInput(fp store.FileFingerprint) string {
	desc := fmt.Sprintf("%s (%s)", fp.Path, humanize.Bytes(uint64(fp.Size)))
	if fp.Changed() {
		desc += " [changed]"
	}
	return desc
}

func listMatches(cmd *cobra.Command, s *store.Store, runID string) error {
	records, err := s.Matches(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s: %w", runID, store.ErrNotFound)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tTARGET\tSTRAND\tSCORE\tIDENTITY")
	for _, r := range records {
		strand := "+"
		if r.Reversed {
			strand = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.2f%% (%d/%d)\n",
			r.QueryID, r.TargetID, strand, r.Score,
			100*r.Identity, r.Matches, r.AlignedLength)
	}
	return tw.Flush()
}
