// Package csvstore implements the domain repositories on top of flat CSV
// files: the credential table, the input corpus and candidate tables, the
// per-reviewer score ledgers and the static asset directories.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// table is a CSV file read into memory with its columns located by header.
type table struct {
	cols map[string]int
	rows [][]string
}

// get returns the named column of row i, or "" when the row is short.
func (t *table) get(i int, col string) string {
	idx := t.cols[col]
	if idx >= len(t.rows[i]) {
		return ""
	}
	return t.rows[i][idx]
}

func readTable(path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	t, err := parseTable(f, required...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file, missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := t.cols[h]; !dup {
			t.cols[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}
