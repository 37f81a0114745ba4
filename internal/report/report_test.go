package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"keuangan/internal/core"
)

func money(v int64) core.Money { return core.Money{Minor: v} }

func TestRupiahFormat(t *testing.T) {
	f := Rupiah()
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1800000, "Rp 1.800.000"},
		{-25000, "-Rp 25.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Money(money(tt.in)))
	}
}

func TestBalances(t *testing.T) {
	var buf bytes.Buffer
	Balances(&buf, []core.AccountBalance{
		{Account: "BCA", Balance: money(4400000)},
		{Account: "Cash", Balance: money(-5000)},
	}, money(4395000), DefaultOptions())

	out := buf.String()
	assert.Contains(t, out, "BCA")
	assert.Contains(t, out, "Rp 4.400.000")
	assert.Contains(t, out, "-Rp 5.000")
	assert.Contains(t, out, "Net worth")
	assert.Contains(t, out, "Rp 4.395.000")
}

func TestSummary(t *testing.T) {
	food := core.Category{Name: "Food", Kind: core.KindBudget, Allotment: money(1800000)}
	recv := core.Category{Name: core.CategoryReceivables, Kind: core.KindReceivables}
	s := core.MonthlySummary{
		Year:  2024,
		Month: 3,
		Categories: []core.CategoryConsumption{
			{Category: food, Spent: money(900000), Remaining: money(900000), Percent: 0.5},
			{Category: recv, Spent: money(40000), Remaining: money(-40000)},
		},
		TotalBudget:            money(1800000),
		TotalSpent:             money(900000),
		Remaining:              money(900000),
		ReceivablesOutstanding: money(40000),
		Unplanned:              []core.CategoryAmount{{Name: "Makan", Amount: money(15000)}},
	}

	var buf bytes.Buffer
	Summary(&buf, s, DefaultOptions())
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Budget 2024-03\n"))
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "Rp 900.000")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "Receivables fronted: Rp 40.000")
	assert.Contains(t, out, "Unplanned")
	assert.Contains(t, out, "Makan")
}

func TestSummaryWithoutUnplanned(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, core.MonthlySummary{Year: 2024, Month: 1}, DefaultOptions())
	assert.NotContains(t, buf.String(), "Unplanned")
}

func TestTransactionsAndSkipped(t *testing.T) {
	var buf bytes.Buffer
	Transactions(&buf, []core.Transaction{{
		Date: core.NewDate(2024, 3, 5), Type: core.Expense, Category: "Food",
		Source: "BCA", Destination: core.NoAccount, Amount: money(60000), Note: "Lunch (My Part)",
	}}, DefaultOptions())
	assert.Contains(t, buf.String(), "2024-03-05")
	assert.Contains(t, buf.String(), "Lunch (My Part)")

	buf.Reset()
	Skipped(&buf, nil)
	assert.Empty(t, buf.String())

	Skipped(&buf, []core.RowError{{Row: 7, Err: core.ErrInvalidDate}})
	assert.Contains(t, buf.String(), "1 unreadable rows")
	assert.Contains(t, buf.String(), "invalid date")
}

func TestColorOnlyWhenEnabled(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, "x", o.emphasize("x", true))
	o.Color = true
	assert.NotEqual(t, "x", o.emphasize("x", true))
	assert.Equal(t, "x", o.emphasize("x", false))
}
