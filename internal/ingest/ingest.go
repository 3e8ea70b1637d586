package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LanguageColumn is the CSV header that holds language names.
const LanguageColumn = "ProgrammingLanguage"

var (
	// ErrTooFewRows means the document lacked a header and at least one data row.
	ErrTooFewRows = errors.New("csv must contain a header and at least one data row")

	// ErrMissingColumn means the header has no ProgrammingLanguage column.
	ErrMissingColumn = fmt.Errorf("csv header must contain a %q column", LanguageColumn)

	// ErrMalformedCSV wraps reader failures such as unbalanced quotes.
	ErrMalformedCSV = errors.New("malformed csv")
)

// SplitNameList splits a comma-separated list, trimming each entry and
// dropping empty ones.
func SplitNameList(list string) []string {
	names := make([]string, 0)
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseLanguageNamesFromCSV returns the non-empty values of the
// ProgrammingLanguage column in row order. Cells are trimmed, blank lines are
// skipped, and rows too short to reach the column are ignored.
func ParseLanguageNamesFromCSV(data string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrTooFewRows
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	column := -1
	for i, cell := range header {
		if strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")) == LanguageColumn {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, ErrMissingColumn
	}

	names := make([]string, 0)
	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		rows++
		if column >= len(record) {
			continue
		}
		if name := strings.TrimSpace(record[column]); name != "" {
			names = append(names, name)
		}
	}
	if rows == 0 {
		return nil, ErrTooFewRows
	}
	return names, nil
}
