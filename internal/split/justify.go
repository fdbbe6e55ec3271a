package split

import "github.com/shopspring/decimal"

// Tolerance is the largest remainder that still counts as fully justified.
var Tolerance = decimal.New(1, -2)

// Justification is the derived state of an aggregate transaction.
type Justification struct {
	Total     decimal.Decimal `json:"total"`
	Justified decimal.Decimal `json:"justified"`
	Remaining decimal.Decimal `json:"remaining"`
	Full      bool            `json:"full"`
}

// Justify compares the absolute parent amount with the absolute sum of the
// amounts explaining it.
func Justify(parent decimal.Decimal, amounts []decimal.Decimal) Justification {
	total := parent.Abs()
	justified := decimal.Zero
	for _, a := range amounts {
		justified = justified.Add(a.Abs())
	}
	remaining := total.Sub(justified)
	return Justification{
		Total:     total,
		Justified: justified,
		Remaining: remaining,
		Full:      remaining.LessThanOrEqual(Tolerance),
	}
}
