package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layout holds resolved 0-based column indices; -1 marks an absent column.
type Layout struct {
	Date       int
	Concept    int
	Amount     int
	Charge     int
	Credit     int
	Sign       int
	Balance    int
	InvertSign bool
}

// ParsedRow is a statement row ready to become a transaction.
type ParsedRow struct {
	Row     int
	Date    time.Time
	Concept string
	Amount  decimal.Decimal
	Balance *decimal.Decimal
	Note    string
}

var (
	errMissingDate    = errors.New("missing date")
	errMissingConcept = errors.New("missing concept")
	errMissingAmount  = errors.New("missing amount")
)

// ParseRow converts one record into a ParsedRow. An error means the row must
// be dropped; its message is the reason.
func ParseRow(record []string, layout Layout) (ParsedRow, error) {
	rawDate := field(record, layout.Date)
	if rawDate == "" {
		return ParsedRow{}, errMissingDate
	}
	concept := field(record, layout.Concept)
	if concept == "" {
		return ParsedRow{}, errMissingConcept
	}

	amount, err := rowAmount(record, layout)
	if err != nil {
		return ParsedRow{}, err
	}

	if layout.Sign >= 0 {
		switch strings.ToUpper(field(record, layout.Sign)) {
		case "D", "-":
			amount = amount.Abs().Neg()
		default:
			amount = amount.Abs()
		}
	}
	if layout.InvertSign {
		amount = amount.Neg()
	}

	date, err := NormalizeDate(rawDate)
	if err != nil {
		return ParsedRow{}, err
	}

	row := ParsedRow{
		Date:    date,
		Concept: concept,
		Amount:  amount,
		Note:    "fecha original: " + rawDate,
	}
	if raw := field(record, layout.Balance); raw != "" {
		bal, err := parseNumber(raw)
		if err != nil {
			return ParsedRow{}, fmt.Errorf("balance: %w", err)
		}
		row.Balance = &bal
	}
	return row, nil
}

func rowAmount(record []string, layout Layout) (decimal.Decimal, error) {
	if layout.Amount >= 0 {
		raw := field(record, layout.Amount)
		if raw == "" {
			return decimal.Zero, errMissingAmount
		}
		return parseNumber(raw)
	}

	rawCharge := field(record, layout.Charge)
	rawCredit := field(record, layout.Credit)
	if rawCharge == "" && rawCredit == "" {
		return decimal.Zero, errMissingAmount
	}
	charge, err := optionalNumber(rawCharge)
	if err != nil {
		return decimal.Zero, fmt.Errorf("charge: %w", err)
	}
	credit, err := optionalNumber(rawCredit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit: %w", err)
	}
	return credit.Sub(charge.Abs()), nil
}

func optionalNumber(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseNumber(raw)
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
