package sheets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keuangan/internal/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := core.Transaction{
		Date:        core.NewDate(2024, 1, 5),
		Type:        core.Transfer,
		Category:    core.CategorySavings,
		Source:      "BCA",
		Destination: "Tabungan/Investasi",
		Amount:      core.Money{Minor: 700000},
		Note:        "monthly",
	}

	row := EncodeStrings(in)
	assert.Equal(t, []string{"2024-01-05", "Transfer", "Savings", "BCA", "Tabungan/Investasi", "700000", "monthly"}, row)

	out, err := DecodeRow(row, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	cells := EncodeRow(in)
	require.Len(t, cells, Columns)
	assert.Equal(t, int64(700000), cells[5])
}

func TestEncodeFillsMissingAccount(t *testing.T) {
	row := EncodeStrings(core.Transaction{
		Date: core.NewDate(2024, 1, 5), Type: core.Income, Category: core.CategoryIncome,
		Destination: "Cash", Amount: core.Money{Minor: 1},
	})
	assert.Equal(t, core.NoAccount, row[3])
}

func TestDecodeRowsSkipsAndReports(t *testing.T) {
	rows := [][]string{
		Header,
		{"2024-01-05", "Expense", "Food", "Cash", "-", "15000", "lunch"},
		{"not a date", "Expense", "Food", "Cash", "-", "15000", ""},
		{},
		{"01/06/2024", "Income (Pemasukan)", "Income", "-", "BCA", "5000000.0"},
		{"2024-01-07", "Refund", "Food", "Cash", "-", "1", ""},
		{"2024-01-08", "Expense", "Food", "Cash", "-", "abc", ""},
		{"2024-01-09", "Expense", "Food", "-", "-", "10", ""},
		{"2024-01-10 08:30:00", "transfer", "Transfer", "BCA", "Gopay", "20000", ""},
	}

	l := DecodeRows(rows, nil)

	require.Len(t, l.Transactions, 3)
	assert.Equal(t, "lunch", l.Transactions[0].Note)
	assert.Equal(t, core.NewDate(2024, 1, 6), l.Transactions[1].Date)
	assert.Equal(t, core.Income, l.Transactions[1].Type)
	assert.Equal(t, int64(5000000), l.Transactions[1].Amount.Minor)
	assert.Equal(t, "", l.Transactions[1].Note)
	assert.Equal(t, core.NewDate(2024, 1, 10), l.Transactions[2].Date)

	require.Len(t, l.Skipped, 4)
	assert.Equal(t, 3, l.Skipped[0].Row)
	assert.True(t, errors.Is(l.Skipped[0], core.ErrInvalidDate))
	assert.True(t, errors.Is(l.Skipped[1], core.ErrInvalidType))
	assert.True(t, errors.Is(l.Skipped[2], core.ErrInvalidAmount))
	assert.True(t, errors.Is(l.Skipped[3], core.ErrMissingAccount))
}

func TestDecodeRowsWithoutHeader(t *testing.T) {
	l := DecodeRows([][]string{{"2024-02-01", "Expense", "Food", "Cash", "-", "1", ""}}, nil)
	assert.Len(t, l.Transactions, 1)
	assert.Empty(t, l.Skipped)

	assert.Empty(t, DecodeRows(nil, nil).Transactions)
}

func TestCellStrings(t *testing.T) {
	got := CellStrings([]any{"2024-01-05", float64(1800000), nil, 3})
	assert.Equal(t, []string{"2024-01-05", "1800000", "", "3"}, got)
}

func TestPartialWriteError(t *testing.T) {
	cause := errors.New("quota")
	err := error(&PartialWriteError{Written: 1, Total: 2, Err: cause})
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "1 of 2")

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 2, pw.Total)
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("spreadsheet abc", errors.New("404"))
	assert.True(t, errors.Is(err, ErrBackingStoreUnavailable))
	assert.Contains(t, err.Error(), "spreadsheet abc")
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader(Header))
	assert.True(t, IsHeader(LegacyHeader))
	assert.True(t, IsHeader([]string{" date ", "TYPE"}))
	assert.False(t, IsHeader([]string{"2024-01-01", "Expense"}))
	assert.False(t, IsHeader([]string{"Date"}))
}
