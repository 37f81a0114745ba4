// Package report renders ledger figures for the terminal.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"keuangan/internal/core"
)

// Formatter prints rupiah amounts with locale grouping.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter formats amounts for tag, prefixed with symbol.
func NewFormatter(tag language.Tag, symbol string) Formatter {
	return Formatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

// Rupiah groups thousands with dots: Rp 1.800.000.
func Rupiah() Formatter {
	return NewFormatter(language.Indonesian, "Rp")
}

// Money formats m; negative amounts put the sign before the symbol.
func (f Formatter) Money(m core.Money) string {
	v := m.Minor
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + " " + f.printer.Sprint(number.Decimal(v))
}

// Percent formats a 0..1 fraction as a whole percentage.
func (f Formatter) Percent(p float64) string {
	return f.printer.Sprint(number.Percent(p, number.MaxFractionDigits(0)))
}
