// Package tabular reads delimited subject, diagnosis and specimen tables into
// named string rows.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// Row is one record keyed by column name. Values are kept as the raw strings
// found in the table.
type Row map[string]string

// missing lists the spellings dataframe exports use for absent values.
var missing = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"None": true,
	"NA":   true,
	"<NA>": true,
}

// Get returns the value of column name. Absent columns and missing-value
// markers report ok=false.
func (r Row) Get(name string) (string, bool) {
	v, ok := r[name]
	if !ok || missing[v] {
		return "", false
	}
	return v, true
}

// Value returns the column value or the empty string.
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// preferred breaks ties between detector candidates, whose order is not stable.
var preferred = []rune{'\t', ',', ';', '|'}

// DetectDelimiter guesses the single most likely delimiter of a CSV-like
// sample, defaulting to a comma.
func DetectDelimiter(sample []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')
	found := make(map[rune]bool, len(delimiters))
	for _, s := range delimiters {
		if len(s) > 0 {
			found[rune(s[0])] = true
		}
	}
	for _, r := range preferred {
		if found[r] {
			return r
		}
	}
	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}
	return ','
}

// Read parses a headed table. The delimiter is detected from the content.
func Read(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = DetectDelimiter(data)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(rec), len(header))
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// GroupBy indexes rows by the value of column. Rows without a value are
// dropped.
func GroupBy(rows []Row, column string) map[string][]Row {
	out := make(map[string][]Row)
	for _, r := range rows {
		key, ok := r.Get(column)
		if !ok {
			continue
		}
		out[key] = append(out[key], r)
	}
	return out
}
