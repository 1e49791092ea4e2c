package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/seqlift/internal/align"
	"github.com/inodb/seqlift/internal/coords"
	"github.com/inodb/seqlift/internal/output"
	"github.com/inodb/seqlift/internal/seq"
	"github.com/inodb/seqlift/internal/store"
)

type transferOptions struct {
	refPath    string
	altPath    string
	coordsPath string
	dbPath     string
	runID      string
	pair       string
	outPath    string
}

func newTransferCmd() *cobra.Command {
	var opts transferOptions

	cmd := &cobra.Command{
		Use:   "transfer [flags] <table>",
		Short: "Lift table coordinates from a reference onto an alternative sequence",
		Long: `Rewrite the coordinate columns of a delimited table (GFF-like or BED-like)
from reference positions to alternative positions.

The coordinate map comes from one of:
  --ref/--alt          align two single-contig FASTA files
  --coords/--pair      a coords.json written by 'seqlift match'
  --db/--run/--pair    a run stored with 'seqlift match --db'

Point columns (--columns) hold single positions or lists of positions.
The start and size columns hold parallel lists of interval starts and sizes;
they are skipped for rows lacking either column. Lines starting with '#' are
copied unchanged. Use '-' to read the table from stdin.`,
		Example: `  seqlift transfer --ref ref.fasta --alt alt.fasta -o lifted.gff features.gff
  seqlift transfer --coords out/coords.json --pair contig1,contig7 features.bed
  seqlift transfer --ref ref.fa --alt alt.fa --columns 1,2 --start-column -1 -v genes.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.refPath, "ref", "", "Reference FASTA (exactly one sequence)")
	cmd.Flags().StringVar(&opts.altPath, "alt", "", "Alternative FASTA (exactly one sequence)")
	cmd.Flags().StringVar(&opts.coordsPath, "coords", "", "coords.json written by the match command")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Run store written by the match command")
	cmd.Flags().StringVar(&opts.runID, "run", "", "Run ID in the run store")
	cmd.Flags().StringVar(&opts.pair, "pair", "", "Query and target IDs of the pair, as query,target")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Output file (default: stdout; .gz to compress)")

	cmd.Flags().Bool("base1", false, "Table coordinates are 1-based")
	cmd.Flags().String("columns", "1,2,6,7", "Comma-separated 0-based indices of coordinate columns")
	cmd.Flags().Int("start-column", 11, "0-based index of the interval starts column (-1 to disable)")
	cmd.Flags().Int("size-column", 10, "0-based index of the interval sizes column (-1 to disable)")
	cmd.Flags().String("column-delimiter", `\t`, "Field delimiter")
	cmd.Flags().String("list-delimiter", ",", "Delimiter of lists within a column")
	viper.BindPFlag("transfer.base1", cmd.Flags().Lookup("base1"))
	viper.BindPFlag("transfer.columns", cmd.Flags().Lookup("columns"))
	viper.BindPFlag("transfer.start_column", cmd.Flags().Lookup("start-column"))
	viper.BindPFlag("transfer.size_column", cmd.Flags().Lookup("size-column"))
	viper.BindPFlag("transfer.column_delimiter", cmd.Flags().Lookup("column-delimiter"))
	viper.BindPFlag("transfer.list_delimiter", cmd.Flags().Lookup("list-delimiter"))

	return cmd
}

func runTransfer(cmd *cobra.Command, tablePath string, opts transferOptions) error {
	v := viper.GetViper()
	base := baseOf(v.GetBool("transfer.base1"))

	cm, err := loadMap(cmd, opts, base)
	if err != nil {
		return err
	}

	columns, err := parseColumns(v.GetString("transfer.columns"))
	if err != nil {
		return usageError{err}
	}
	t := coords.NewTransformer(cm, columns)
	t.StartColumn = v.GetInt("transfer.start_column")
	t.SizeColumn = v.GetInt("transfer.size_column")
	t.FieldDelimiter = unescapeDelimiter(v.GetString("transfer.column_delimiter"))
	t.ListDelimiter = unescapeDelimiter(v.GetString("transfer.list_delimiter"))

	in, err := openTable(tablePath)
	if err != nil {
		return err
	}
	defer in.Close()

	var rows int
	if opts.outPath == "" {
		// Nothing reaches stdout unless the whole table transforms.
		var buf bytes.Buffer
		rows, err = t.TransformTable(in, &buf)
		if err == nil {
			_, err = buf.WriteTo(cmd.OutOrStdout())
		}
	} else {
		err = writeAtomic(opts.outPath, func(f *output.AtomicFile) error {
			var terr error
			rows, terr = t.TransformTable(in, f)
			return terr
		})
	}
	if err != nil {
		return fmt.Errorf("transform %s: %w", tablePath, err)
	}

	logger.Info("transferred table",
		zap.String("table", tablePath),
		zap.Int("rows", rows),
		zap.Int("base", base))
	return nil
}

// loadMap returns the reference-to-alternative coordinate map selected by
// the command-line options.
func loadMap(cmd *cobra.Command, opts transferOptions, base int) (*coords.Map, error) {
	switch {
	case opts.refPath != "" || opts.altPath != "":
		if opts.refPath == "" || opts.altPath == "" {
			return nil, usageError{errors.New("--ref and --alt must be given together")}
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		return alignContigs(cmd.ErrOrStderr(), opts.refPath, opts.altPath, base, verbose)

	case opts.coordsPath != "":
		query, target, err := parsePair(opts.pair)
		if err != nil {
			return nil, err
		}
		return mapFromCoordsFile(opts.coordsPath, query, target, base)

	case opts.dbPath != "":
		query, target, err := parsePair(opts.pair)
		if err != nil {
			return nil, err
		}
		if opts.runID == "" {
			return nil, usageError{errors.New("--db requires --run")}
		}
		return mapFromStore(opts.dbPath, opts.runID, query, target, base)
	}
	return nil, usageError{errors.New("one of --ref/--alt, --coords or --db is required")}
}

func parsePair(pair string) (string, string, error) {
	query, target, ok := strings.Cut(pair, ",")
	if !ok || query == "" || target == "" {
		return "", "", usageError{fmt.Errorf("--pair must be query,target, got %q", pair)}
	}
	return query, target, nil
}

// readContig reads a FASTA file that must hold exactly one sequence.
func readContig(path string) (*seq.Sequence, error) {
	records, err := seq.ReadFASTAFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one sequence, found %d", path, len(records))
	}
	return records[0], nil
}

func alignContigs(w io.Writer, refPath, altPath string, base int, verbose bool) (*coords.Map, error) {
	ref, err := readContig(refPath)
	if err != nil {
		return nil, fmt.Errorf("reading reference: %w", err)
	}
	alt, err := readContig(altPath)
	if err != nil {
		return nil, fmt.Errorf("reading alternative: %w", err)
	}

	v := viper.GetViper()
	aligner := align.New(scoringFromConfig(v, "transfer.scoring"))
	aligner.SetLogger(logger)
	aligner.SetWarnCells(v.GetInt("align.warn_cells"))

	aln := aligner.Align(ref.Residues, alt.Residues)
	logger.Info("aligned contigs",
		zap.String("ref", ref.ID),
		zap.String("alt", alt.ID),
		zap.Float64("score", aln.Score),
		zap.Float64("identity", aln.Identity()))

	if verbose {
		if err := output.WriteWindows(w, aln, output.WindowWidth); err != nil {
			return nil, err
		}
	}
	return coords.Build(aln, base)
}

func mapFromCoordsFile(path, query, target string, base int) (*coords.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coords file: %w", err)
	}
	defer f.Close()

	entries, err := output.ReadCoords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	entry, ok := output.FindCoords(entries, query, target)
	if !ok {
		return nil, fmt.Errorf("%s: no entry for pair %s,%s", path, query, target)
	}
	return coords.FromBreakpoints(entry.Coords, base)
}

func mapFromStore(dbPath, runID, query, target string, base int) (*coords.Map, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	defer s.Close()

	cm, err := s.LookupMap(runID, query, target)
	if err != nil {
		return nil, err
	}
	if cm.Base() != base {
		return nil, fmt.Errorf("run %s stores %d-based maps, table is %d-based", runID, cm.Base(), base)
	}
	return cm, nil
}

// gzipTable closes both the gzip reader and the underlying file.
type gzipTable struct {
	*gzip.Reader
	f *os.File
}

func (g gzipTable) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// openTable opens a table for reading. "-" reads stdin; paths ending in
// .gz are decompressed.
func openTable(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return gzipTable{Reader: gz, f: f}, nil
}
