package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tesoro-dev/tesoro/internal/model"
)

const (
	numFields     = 5
	colName       = 0
	colType       = 1
	colCurrency   = 2
	colInitial    = 3
	colAutoMirror = 4
)

// defaultCurrency applies when an account definition leaves currency empty.
const defaultCurrency = "EUR"

var accountHeader = []string{"name", "type", "currency", "initial_balance", "auto_mirror_transfers"}

// ReadAccounts reads account definitions from a CSV with a header row.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes account definitions as CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(accountHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCurrency] = acct.Currency
	row[colInitial] = acct.InitialBalance.StringFixed(2)
	row[colAutoMirror] = strconv.FormatBool(acct.AutoMirrorTransfers)
	return row
}

// UnmarshalAccount converts a CSV row to an Account definition. Ids and
// balances other than the initial one are assigned on creation.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	typ := model.AccountType(strings.TrimSpace(record[colType]))
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[colType])
	}

	initial := decimal.Zero
	if s := strings.TrimSpace(record[colInitial]); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing initial_balance %q: %w", s, err)
		}
		initial = d
	}

	var autoMirror bool
	if s := strings.TrimSpace(record[colAutoMirror]); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing auto_mirror_transfers %q: %w", s, err)
		}
		autoMirror = b
	}

	currency := strings.ToUpper(strings.TrimSpace(record[colCurrency]))
	if currency == "" {
		currency = defaultCurrency
	}

	return model.Account{
		Name:                strings.TrimSpace(record[colName]),
		Type:                typ,
		Currency:            currency,
		InitialBalance:      initial,
		AutoMirrorTransfers: autoMirror,
	}, nil
}
