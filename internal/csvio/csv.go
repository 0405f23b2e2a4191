// Package csvio reads CSV files into tables with per-column type inference
// and writes tables back as CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tordrt/tablenorm/internal/table"
)

// Options controls CSV reading.
type Options struct {
	Comma rune // field delimiter, ',' when zero
	Limit int  // maximum data rows, unlimited when not positive
}

// ReadFile reads the CSV file at path.
func ReadFile(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, opts)
}

// Read parses CSV with a header row. Each column is typed as the narrowest
// of int64, float64, bool and string that fits every non-empty cell. Empty
// cells become nil.
func Read(r io.Reader, opts Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv input has no header row: %w", table.ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records [][]string
	for opts.Limit <= 0 || len(records) < opts.Limit {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	rows := make([][]any, len(records))
	for i := range rows {
		rows[i] = make([]any, len(header))
	}
	for c := range header {
		parse := inferParser(records, c)
		for i, rec := range records {
			rows[i][c] = parse(rec[c])
		}
	}

	t, err := table.FromRows(header, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from csv: %w", err)
	}
	return t, nil
}

type parser func(s string) any

func inferParser(records [][]string, c int) parser {
	candidates := []struct {
		ok    func(s string) bool
		parse parser
	}{
		{
			ok: func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil },
			parse: func(s string) any {
				n, _ := strconv.ParseInt(s, 10, 64)
				return n
			},
		},
		{
			ok: func(s string) bool { _, err := strconv.ParseFloat(s, 64); return err == nil },
			parse: func(s string) any {
				f, _ := strconv.ParseFloat(s, 64)
				return f
			},
		},
		{
			ok:    func(s string) bool { _, ok := parseBool(s); return ok },
			parse: func(s string) any { b, _ := parseBool(s); return b },
		},
	}

	for _, cand := range candidates {
		fits := true
		for _, rec := range records {
			if rec[c] != "" && !cand.ok(rec[c]) {
				fits = false
				break
			}
		}
		if fits {
			parse := cand.parse
			return func(s string) any {
				if s == "" {
					return nil
				}
				return parse(s)
			}
		}
	}
	return func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// WriteFile writes t to path as CSV.
func WriteFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := Write(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write writes t with a header row. nil cells are written empty.
func Write(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, t.NumColumns())
	for r := 0; r < t.NumRows(); r++ {
		for c, v := range t.Row(r) {
			if v == nil {
				record[c] = ""
				continue
			}
			s, ok := table.Format(v)
			if !ok {
				return &table.ValueError{Column: t.Columns()[c], Row: r, Value: v}
			}
			record[c] = s
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
