package seq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrNoRecords is returned when a FASTA input holds no sequences.
var ErrNoRecords = errors.New("no FASTA records")

// lineWidth is the residue count per line when writing FASTA.
const lineWidth = 60

// ReadFASTAFile reads every record of a FASTA file. Files ending in .gz
// are decompressed transparently.
func ReadFASTAFile(path string) ([]*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	records, err := ReadFASTA(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadFASTA parses FASTA content. The record ID is the header text up to
// the first whitespace. Records keep their input order.
func ReadFASTA(r io.Reader) ([]*Sequence, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var records []*Sequence
	var current *Sequence
	var residues strings.Builder

	flush := func() {
		if current != nil {
			current.Residues = residues.String()
			records = append(records, current)
		}
		residues.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			current = &Sequence{ID: parseHeader(line)}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("residues before first header: %q", line)
		}
		residues.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx]
	}
	return header
}

// WriteFASTA writes records wrapped at 60 residues per line.
func WriteFASTA(w io.Writer, records ...*Sequence) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, ">%s\n", rec.ID); err != nil {
			return err
		}
		for start := 0; start < len(rec.Residues); start += lineWidth {
			end := min(start+lineWidth, len(rec.Residues))
			if _, err := bw.WriteString(rec.Residues[start:end] + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
