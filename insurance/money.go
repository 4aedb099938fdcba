package insurance

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	usdPrinter = message.NewPrinter(language.AmericanEnglish)
	inrPrinter = message.NewPrinter(language.MustParse("en-IN"))
)

// FormatUSD renders a base-currency amount with US digit grouping, e.g.
// "$12,345.67".
func FormatUSD(amount float64) string {
	return usdPrinter.Sprintf("$%.2f", amount)
}

// FormatINR renders a converted amount with Indian digit grouping, e.g.
// "₹1,03,083.76".
func FormatINR(amount float64) string {
	return inrPrinter.Sprintf("₹%.2f", amount)
}
