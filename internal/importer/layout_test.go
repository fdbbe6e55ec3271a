package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoro-dev/tesoro/internal/model"
)

func TestResolve_ByName(t *testing.T) {
	header := []string{"\ufeffFecha ", `"Concepto"`, "IMPORTE", "Saldo"}
	layout, err := Resolve(header, model.ColumnMapping{
		Delimiter:     ";",
		DateColumn:    "fecha",
		ConceptColumn: "concepto",
		AmountColumn:  "Importe",
		BalanceColumn: "saldo",
	})
	require.NoError(t, err)
	assert.Equal(t, Layout{Date: 0, Concept: 1, Amount: 2, Balance: 3, Charge: -1, Credit: -1, Sign: -1}, layout)
}

func TestResolve_ByPosition(t *testing.T) {
	layout, err := Resolve([]string{"a", "b", "c"}, model.ColumnMapping{
		DateColumn:    "1",
		ConceptColumn: "3",
		AmountColumn:  "2",
		InvertSign:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, layout.Date)
	assert.Equal(t, 2, layout.Concept)
	assert.Equal(t, 1, layout.Amount)
	assert.True(t, layout.InvertSign)
}

func TestResolve_UnknownColumn(t *testing.T) {
	_, err := Resolve([]string{"Fecha", "Concepto"}, model.ColumnMapping{
		DateColumn:    "Fecha",
		ConceptColumn: "Concepto",
		AmountColumn:  "Importe",
	})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), `column "Importe" not found in header`)
}

func TestValidateMapping(t *testing.T) {
	base := model.ColumnMapping{DateColumn: "d", ConceptColumn: "c", AmountColumn: "a"}

	tests := []struct {
		name  string
		edit  func(m *model.ColumnMapping)
		field string
	}{
		{"valid", func(m *model.ColumnMapping) {}, ""},
		{"charge and credit", func(m *model.ColumnMapping) { m.AmountColumn, m.ChargeColumn, m.CreditColumn = "", "x", "y" }, ""},
		{"no date", func(m *model.ColumnMapping) { m.DateColumn = "" }, "date_column"},
		{"no concept", func(m *model.ColumnMapping) { m.ConceptColumn = "" }, "concept_column"},
		{"charge only", func(m *model.ColumnMapping) { m.AmountColumn, m.ChargeColumn = "", "x" }, "amount_column"},
		{"long delimiter", func(m *model.ColumnMapping) { m.Delimiter = ";;" }, "delimiter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			tt.edit(&m)
			err := ValidateMapping(m)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := map[string]rune{"": ';', ",": ',', "tab": '\t', `\t`: '\t', "\t": '\t', "|": '|'}
	for in, want := range tests {
		got, err := Delimiter(model.ColumnMapping{Delimiter: in})
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
