package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"keuangan/internal/core"
)

// Options controls table rendering.
type Options struct {
	Format Formatter
	// Color highlights overspent lines. Off for pipes and tests.
	Color bool
}

func DefaultOptions() Options {
	return Options{Format: Rupiah()}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func (o Options) emphasize(s string, bad bool) string {
	if !o.Color || !bad {
		return s
	}
	return text.FgRed.Sprint(s)
}

// Balances renders one row per configured account and net worth as footer.
func Balances(w io.Writer, balances []core.AccountBalance, netWorth core.Money, o Options) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Account", "Balance"})
	for _, b := range balances {
		t.AppendRow(table.Row{b.Account, o.emphasize(o.Format.Money(b.Balance), b.Balance.Minor < 0)})
	}
	t.AppendFooter(table.Row{text.Bold.Sprint("Net worth"), text.Bold.Sprint(o.Format.Money(netWorth))})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight}})
	t.Render()
}

// Summary renders the month's budget lines, then receivables and any
// spending under categories the plan does not know.
func Summary(w io.Writer, s core.MonthlySummary, o Options) {
	fmt.Fprintf(w, "Budget %04d-%02d\n", s.Year, s.Month)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Allotment", "Spent", "Remaining", "Used"})
	for _, c := range s.Categories {
		used := "-"
		if c.Category.Allotment.Minor > 0 {
			used = o.Format.Percent(c.Percent)
		}
		t.AppendRow(table.Row{
			c.Category.Name,
			o.Format.Money(c.Category.Allotment),
			o.Format.Money(c.Spent),
			o.emphasize(o.Format.Money(c.Remaining), c.Remaining.Minor < 0),
			used,
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{
		text.Bold.Sprint("Total"),
		o.Format.Money(s.TotalBudget),
		o.Format.Money(s.TotalSpent),
		o.emphasize(o.Format.Money(s.Remaining), s.Remaining.Minor < 0),
		"",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()

	fmt.Fprintf(w, "Receivables fronted: %s  repaid: %s\n",
		o.Format.Money(s.ReceivablesOutstanding), o.Format.Money(s.ReceivablesRepaid))

	if len(s.Unplanned) > 0 {
		u := newTable(w)
		u.SetTitle("Unplanned")
		u.AppendHeader(table.Row{"Category", "Amount"})
		for _, c := range s.Unplanned {
			u.AppendRow(table.Row{c.Name, o.Format.Money(c.Amount)})
		}
		u.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		u.Render()
	}
}

// Transactions renders rows in the order given.
func Transactions(w io.Writer, txs []core.Transaction, o Options) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Type", "Category", "From", "To", "Amount", "Note"})
	for _, tx := range txs {
		t.AppendRow(table.Row{
			tx.Date.String(), string(tx.Type), tx.Category,
			tx.Source, tx.Destination, o.Format.Money(tx.Amount), tx.Note,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 40},
	})
	t.Render()
}

// Skipped lists rows the store could not read.
func Skipped(w io.Writer, skipped []core.RowError) {
	if len(skipped) == 0 {
		return
	}
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%d unreadable rows", len(skipped)))
	t.AppendHeader(table.Row{"Row", "Problem"})
	for _, re := range skipped {
		t.AppendRow(table.Row{re.Row, re.Err.Error()})
	}
	t.Render()
}
