package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"keuangan/internal/core"
)

// Header is the canonical column set of every columnar store.
var Header = []string{"Date", "Type", "Category", "SourceAccount", "DestinationAccount", "Amount", "Note"}

const (
	colDate = iota
	colType
	colCategory
	colSource
	colDestination
	colAmount
	colNote
)

// Columns is the number of canonical columns.
var Columns = len(Header)

// EncodeRow renders a transaction as cell values. The amount stays numeric so
// that spreadsheets can sum the column.
func EncodeRow(t core.Transaction) []any {
	return []any{
		t.Date.String(),
		string(t.Type),
		t.Category,
		account(t.Source),
		account(t.Destination),
		t.Amount.Minor,
		t.Note,
	}
}

// EncodeStrings is EncodeRow for stores that only hold text.
func EncodeStrings(t core.Transaction) []string {
	return []string{
		t.Date.String(),
		string(t.Type),
		t.Category,
		account(t.Source),
		account(t.Destination),
		strconv.FormatInt(t.Amount.Minor, 10),
		t.Note,
	}
}

func account(a string) string {
	if strings.TrimSpace(a) == "" {
		return core.NoAccount
	}
	return a
}

// LegacyHeader is the header of sheets created before the columns were
// renamed. Column order is the same.
var LegacyHeader = []string{"Tanggal", "Tipe", "Kategori", "Sumber", "Tujuan", "Nominal", "Catatan"}

// IsHeader reports whether row is the canonical or legacy header, compared
// case-insensitively on the first column pair.
func IsHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	for _, h := range [][]string{Header, LegacyHeader} {
		if strings.EqualFold(strings.TrimSpace(row[colDate]), h[colDate]) &&
			strings.EqualFold(strings.TrimSpace(row[colType]), h[colType]) {
			return true
		}
	}
	return false
}

// DateDecoder parses a date cell. Stores with native date cells plug in
// their own; the default is core.ParseDate.
type DateDecoder func(string) (core.Date, error)

// DecodeRows converts stored rows, header included, into a ledger. Rows that
// fail to decode are skipped and reported; blank rows are ignored. Row numbers
// in the report are 1-based like a spreadsheet's.
func DecodeRows(rows [][]string, parseDate DateDecoder) core.Ledger {
	if parseDate == nil {
		parseDate = core.ParseDate
	}
	var l core.Ledger
	for i, row := range rows {
		if i == 0 && IsHeader(row) {
			continue
		}
		if blank(row) {
			continue
		}
		t, err := DecodeRow(row, parseDate)
		if err != nil {
			l.Skipped = append(l.Skipped, core.RowError{Row: i + 1, Raw: row, Err: err})
			continue
		}
		l.Transactions = append(l.Transactions, t)
	}
	return l
}

// DecodeRow converts a single stored row. Missing trailing cells read as
// empty.
func DecodeRow(row []string, parseDate DateDecoder) (core.Transaction, error) {
	if parseDate == nil {
		parseDate = core.ParseDate
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	date, err := parseDate(cell(colDate))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	typ, err := core.ParseTxType(cell(colType))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type: %w", err)
	}
	amount, err := core.ParseStoredAmount(cell(colAmount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	t := core.Transaction{
		Date:        date,
		Type:        typ,
		Category:    cell(colCategory),
		Source:      orNoAccount(cell(colSource)),
		Destination: orNoAccount(cell(colDestination)),
		Amount:      amount,
		Note:        cell(colNote),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func orNoAccount(s string) string {
	if s == "" {
		return core.NoAccount
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// CellStrings flattens API cell values into strings.
func CellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
