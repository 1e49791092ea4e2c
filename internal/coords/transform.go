package coords

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn is returned when a point column is absent from a row.
	ErrMissingColumn = errors.New("column not present")
	// ErrArity is returned when start and size lists differ in length.
	ErrArity = errors.New("start and size lists differ in length")
	// ErrBadCoordinate is returned for a field element that is not an integer.
	ErrBadCoordinate = errors.New("invalid coordinate")
)

// NoColumn disables the start or size column of a Transformer.
const NoColumn = -1

// Transformer rewrites the coordinate columns of delimited records through
// a Map. It holds no per-record state and may be shared between goroutines.
type Transformer struct {
	Map *Map

	// Columns hold single coordinates or lists of coordinates.
	Columns []int
	// StartColumn and SizeColumn hold parallel lists of interval starts and
	// sizes. The pair is skipped for rows lacking either column.
	StartColumn int
	SizeColumn  int

	FieldDelimiter string
	ListDelimiter  string
}

// NewTransformer creates a transformer with tab-separated fields,
// comma-separated lists and no interval columns.
func NewTransformer(m *Map, columns []int) *Transformer {
	return &Transformer{
		Map:            m,
		Columns:        columns,
		StartColumn:    NoColumn,
		SizeColumn:     NoColumn,
		FieldDelimiter: "\t",
		ListDelimiter:  ",",
	}
}

func (t *Transformer) hasInterval(record []string) bool {
	return t.StartColumn >= 0 && t.SizeColumn >= 0 &&
		t.StartColumn < len(record) && t.SizeColumn < len(record)
}

// Transform rewrites record in place and returns it. Every element of the
// point columns is translated; every (start, size) pair is translated to
// the target interval covering the same source bases.
func (t *Transformer) Transform(record []string) ([]string, error) {
	for _, col := range t.Columns {
		if col < 0 || col >= len(record) {
			return nil, fmt.Errorf("%w: column %d, row has %d fields", ErrMissingColumn, col, len(record))
		}
		values := strings.Split(record[col], t.ListDelimiter)
		for i, v := range values {
			pos, err := parseCoordinate(v)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", col, err)
			}
			out, err := t.Map.Translate(pos)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", col, err)
			}
			values[i] = strconv.Itoa(out)
		}
		record[col] = strings.Join(values, t.ListDelimiter)
	}

	if !t.hasInterval(record) {
		return record, nil
	}

	starts := strings.Split(record[t.StartColumn], t.ListDelimiter)
	sizes := strings.Split(record[t.SizeColumn], t.ListDelimiter)
	if len(starts) != len(sizes) {
		return nil, fmt.Errorf("%w: %d starts, %d sizes", ErrArity, len(starts), len(sizes))
	}

	for i := range starts {
		start, err := parseCoordinate(starts[i])
		if err != nil {
			return nil, fmt.Errorf("start column %d: %w", t.StartColumn, err)
		}
		size, err := parseCoordinate(sizes[i])
		if err != nil {
			return nil, fmt.Errorf("size column %d: %w", t.SizeColumn, err)
		}
		newStart, newSize, err := t.translateInterval(start, size)
		if err != nil {
			return nil, err
		}
		starts[i] = strconv.Itoa(newStart)
		sizes[i] = strconv.Itoa(newSize)
	}

	record[t.StartColumn] = strings.Join(starts, t.ListDelimiter)
	record[t.SizeColumn] = strings.Join(sizes, t.ListDelimiter)
	return record, nil
}

// translateInterval maps the half-open interval [start, start+size).
// The size is recomputed from the translated bounds, so it grows or
// shrinks with indels inside the interval.
func (t *Transformer) translateInterval(start, size int) (int, int, error) {
	newStart, err := t.Map.TranslateBoundary(start)
	if err != nil {
		return 0, 0, fmt.Errorf("interval start: %w", err)
	}
	newEnd, err := t.Map.TranslateBoundary(start + size)
	if err != nil {
		return 0, 0, fmt.Errorf("interval end: %w", err)
	}
	return newStart, newEnd - newStart, nil
}

func parseCoordinate(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	return n, nil
}

// TransformTable transforms every row read from r and writes it to w.
// Empty lines and lines starting with '#' are copied unchanged. The first
// failing row aborts the whole table; the caller is responsible for
// discarding partial output.
func (t *Transformer) TransformTable(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)
	bw := bufio.NewWriter(w)

	rows := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, "#") {
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return rows, err
			}
			continue
		}

		fields := strings.Split(line, t.FieldDelimiter)
		if _, err := t.Transform(fields); err != nil {
			return rows, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, err := bw.WriteString(strings.Join(fields, t.FieldDelimiter) + "\n"); err != nil {
			return rows, err
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return rows, fmt.Errorf("read table: %w", err)
	}
	return rows, bw.Flush()
}
