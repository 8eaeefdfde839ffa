package cli

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// categoryLabel muestra la categoría con mayúscula inicial ("electronica" → "Electronica").
func categoryLabel(category string) string {
	if category == "" {
		return "-"
	}
	return cases.Title(language.Spanish).String(category)
}

func money(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
