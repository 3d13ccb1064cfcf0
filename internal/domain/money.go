package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount with the currency symbol, rounded to the
// currency's standard scale.
func FormatPrice(amount decimal.Decimal, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	value := amount.Round(int32(scale)).InexactFloat64()
	return printer.Sprint(currency.Symbol(unit.Amount(value)))
}
