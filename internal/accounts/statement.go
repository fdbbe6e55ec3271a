package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

var statementHeader = []string{"date", "concept", "amount", "category", "split", "transfer_id", "parent_id", "bank_balance", "notes"}

// WriteStatement exports transactions as CSV. categories maps category ids
// to display names; unknown ids are written as-is.
func WriteStatement(w io.Writer, txns []model.Transaction, categories map[uuid.UUID]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(statementHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(marshalStatementRow(txn, categories)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func marshalStatementRow(txn model.Transaction, categories map[uuid.UUID]string) []string {
	row := []string{
		txn.Date.Format("2006-01-02"),
		txn.Concept,
		txn.Amount.StringFixed(2),
		"",
		"",
		optionalID(txn.TransferID),
		optionalID(txn.ParentTransactionID),
		"",
		txn.Notes,
	}
	if txn.CategoryID != nil {
		if name, ok := categories[*txn.CategoryID]; ok {
			row[3] = name
		} else {
			row[3] = txn.CategoryID.String()
		}
	}
	if txn.IsSplit {
		row[4] = "yes"
	}
	if txn.BankBalance != nil {
		row[7] = txn.BankBalance.StringFixed(2)
	}
	return row
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
