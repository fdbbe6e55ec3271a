package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// simpleLayout is date;amount;concept.
var simpleLayout = Layout{Date: 0, Amount: 1, Concept: 2, Charge: -1, Credit: -1, Sign: -1, Balance: -1}

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.910,45", "1910.45"},
		{"45,00", "45.00"},
		{"-1.234.567,89", "-1234567.89"},
		{"1910.45", "1910.45"},
		{"1 910,45 €", "1910.45"},
		{" 12,50 ", "12.50"},
		{"$100", "100"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeNumber(tt.in))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "05/03/2024", want: date(2024, 3, 5)},
		{in: "05-03-2024", want: date(2024, 3, 5)},
		{in: "5/3/2024", want: date(2024, 3, 5)},
		{in: " 29/02/2024 ", want: date(2024, 2, 29)},
		{in: "2024-03-05", want: date(2024, 3, 5)},
		{in: "31/02/2024", wantErr: true},
		{in: "05/13/2024", wantErr: true},
		{in: "05/03-2024", wantErr: true},
		{in: "2024/03/05", wantErr: true},
		{in: "March 5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseRow_SignedAmount(t *testing.T) {
	row, err := ParseRow([]string{"05/03/2024", "-45,00", "MERCADONA"}, simpleLayout)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 5), row.Date)
	assert.Equal(t, "-45.00", row.Amount.StringFixed(2))
	assert.Equal(t, "MERCADONA", row.Concept)
	assert.Equal(t, "fecha original: 05/03/2024", row.Note)
	assert.Nil(t, row.Balance)
}

func TestParseRow_ThousandsSeparator(t *testing.T) {
	row, err := ParseRow([]string{"01/03/2024", "1.910,45", "NOMINA"}, simpleLayout)
	require.NoError(t, err)
	assert.Equal(t, "1910.45", row.Amount.StringFixed(2))
}

func TestParseRow_SignColumn(t *testing.T) {
	layout := Layout{Date: 0, Concept: 1, Amount: 2, Sign: 3, Charge: -1, Credit: -1, Balance: -1}
	tests := []struct {
		amount string
		sign   string
		want   string
	}{
		{"23,99", "D", "-23.99"},
		{"23,99", "d", "-23.99"},
		{"23,99", "-", "-23.99"},
		{"23,99", "H", "23.99"},
		{"-23,99", "H", "23.99"},
		{"23,99", "", "23.99"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"/"+tt.sign, func(t *testing.T) {
			row, err := ParseRow([]string{"04-03-2024", "AMAZON", tt.amount, tt.sign}, layout)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Amount.StringFixed(2))
		})
	}
}

func TestParseRow_ChargeCredit(t *testing.T) {
	layout := Layout{Date: 0, Concept: 1, Amount: -1, Charge: 2, Credit: 3, Sign: -1, Balance: 4}

	row, err := ParseRow([]string{"02/03/2024", "RECIBO LUZ", "62,10", "", "3.003,05"}, layout)
	require.NoError(t, err)
	assert.Equal(t, "-62.10", row.Amount.StringFixed(2))
	require.NotNil(t, row.Balance)
	assert.Equal(t, "3003.05", row.Balance.StringFixed(2))

	row, err = ParseRow([]string{"02/03/2024", "NOMINA", "", "1.910,45", ""}, layout)
	require.NoError(t, err)
	assert.Equal(t, "1910.45", row.Amount.StringFixed(2))

	_, err = ParseRow([]string{"02/03/2024", "NADA", "", "", ""}, layout)
	assert.ErrorIs(t, err, errMissingAmount)
}

func TestParseRow_InvertSign(t *testing.T) {
	layout := simpleLayout
	layout.InvertSign = true
	row, err := ParseRow([]string{"05/03/2024", "45,00", "COMPRA"}, layout)
	require.NoError(t, err)
	assert.Equal(t, "-45.00", row.Amount.StringFixed(2))
}

func TestParseRow_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		reason string
	}{
		{"missing date", []string{"", "-45,00", "X"}, "missing date"},
		{"missing concept", []string{"05/03/2024", "-45,00", " "}, "missing concept"},
		{"missing amount", []string{"05/03/2024", "", "X"}, "missing amount"},
		{"bad amount", []string{"05/03/2024", "abc", "X"}, "invalid number"},
		{"bad date", []string{"2024/13/45", "1,00", "X"}, "unrecognized date"},
		{"impossible date", []string{"30/02/2024", "1,00", "X"}, "invalid calendar date"},
		{"short record", []string{"05/03/2024"}, "missing concept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRow(tt.record, simpleLayout)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}
