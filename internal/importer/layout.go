package importer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// defaultDelimiter is used when a mapping leaves the delimiter empty.
const defaultDelimiter = ';'

// Delimiter returns the single field separator of a mapping.
func Delimiter(m model.ColumnMapping) (rune, error) {
	switch m.Delimiter {
	case "":
		return defaultDelimiter, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(m.Delimiter) != 1 {
		return 0, model.Invalid("delimiter", "must be a single character, got %q", m.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(m.Delimiter)
	return r, nil
}

// ValidateMapping checks that a mapping names every required column.
func ValidateMapping(m model.ColumnMapping) error {
	if _, err := Delimiter(m); err != nil {
		return err
	}
	if strings.TrimSpace(m.DateColumn) == "" {
		return model.Invalid("date_column", "column is required")
	}
	if strings.TrimSpace(m.ConceptColumn) == "" {
		return model.Invalid("concept_column", "column is required")
	}
	if strings.TrimSpace(m.AmountColumn) == "" &&
		(strings.TrimSpace(m.ChargeColumn) == "" || strings.TrimSpace(m.CreditColumn) == "") {
		return model.Invalid("amount_column", "either an amount column or both charge and credit columns are required")
	}
	return nil
}

// Resolve maps a template's column references onto the header row of a file.
// References match header names case-insensitively; a number that is not a
// header name is a 1-based column position.
func Resolve(header []string, m model.ColumnMapping) (Layout, error) {
	if err := ValidateMapping(m); err != nil {
		return Layout{}, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	lookup := func(name, ref string) (int, error) {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return -1, nil
		}
		if i, ok := index[normalizeHeader(ref)]; ok {
			return i, nil
		}
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(header) {
			return n - 1, nil
		}
		return -1, model.Invalid(name, "column %q not found in header", ref)
	}

	layout := Layout{InvertSign: m.InvertSign}
	cols := []struct {
		name string
		ref  string
		dst  *int
	}{
		{"date_column", m.DateColumn, &layout.Date},
		{"concept_column", m.ConceptColumn, &layout.Concept},
		{"amount_column", m.AmountColumn, &layout.Amount},
		{"charge_column", m.ChargeColumn, &layout.Charge},
		{"credit_column", m.CreditColumn, &layout.Credit},
		{"sign_column", m.SignColumn, &layout.Sign},
		{"balance_column", m.BalanceColumn, &layout.Balance},
	}
	for _, c := range cols {
		i, err := lookup(c.name, c.ref)
		if err != nil {
			return Layout{}, err
		}
		*c.dst = i
	}
	return layout, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"`)
	return strings.ToLower(strings.TrimSpace(h))
}
