package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SanitizeNumber normalizes a statement amount for decimal parsing. Currency
// symbols and blanks are dropped. A string containing a comma is taken to use
// dots for thousands and the comma for decimals.
func SanitizeNumber(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '€', '$', '£':
			return -1
		}
		return r
	}, s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

var errEmptyNumber = errors.New("empty number")

func parseNumber(raw string) (decimal.Decimal, error) {
	s := SanitizeNumber(raw)
	if s == "" {
		return decimal.Zero, errEmptyNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", raw)
	}
	return d, nil
}
