package importer

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// Rejection records a statement row that could not be imported.
type Rejection struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Statement is the parsed content of one statement file.
type Statement struct {
	Header   []string
	Rows     []ParsedRow
	Rejected []Rejection
}

// ReadStatement cleans content, resolves the mapping against its first line
// and parses every following row. Row numbers count from the header (row 1)
// of the cleaned file.
func ReadStatement(content []byte, m model.ColumnMapping) (*Statement, error) {
	delim, err := Delimiter(m)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(Preprocess(string(content), delim)))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, model.Invalid("file", "no header row found")
	}

	layout, err := Resolve(records[0], m)
	if err != nil {
		return nil, err
	}

	st := &Statement{Header: records[0]}
	for i, rec := range records[1:] {
		rowNum := i + 2
		row, err := ParseRow(rec, layout)
		if err != nil {
			st.Rejected = append(st.Rejected, Rejection{Row: rowNum, Reason: err.Error()})
			continue
		}
		row.Row = rowNum
		st.Rows = append(st.Rows, row)
	}
	return st, nil
}
