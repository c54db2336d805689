package core

import (
	"github.com/shopspring/decimal"
)

type Currency string

// BaseCurrency is the currency every balance and summary is ultimately
// expressed in.
const BaseCurrency Currency = "BRL"

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyARS Currency = "ARS"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyCHF Currency = "CHF"
)

var allCurrencies = map[Currency]bool{
	CurrencyBRL: true, CurrencyUSD: true, CurrencyEUR: true,
	CurrencyGBP: true, CurrencyJPY: true, CurrencyARS: true,
	CurrencyCAD: true, CurrencyAUD: true, CurrencyCHF: true,
}

func (c Currency) Valid() bool {
	return allCurrencies[c]
}

// Static conversion rates to BRL, matching the mock quote table of the
// original conversion service. Codes missing here convert at 1:1.
var ratesToBase = map[Currency]decimal.Decimal{
	CurrencyBRL: decimal.NewFromInt(1),
	CurrencyUSD: decimal.RequireFromString("4.95"),
	CurrencyEUR: decimal.RequireFromString("5.35"),
	CurrencyGBP: decimal.RequireFromString("6.25"),
}

// Rate returns the conversion rate from the given currency to BRL. Unknown
// codes fall back to a rate of 1; ok reports whether the code was actually
// quoted, so callers can surface the fallback instead of silently accepting
// a wrong conversion.
func Rate(from Currency) (rate decimal.Decimal, ok bool) {
	if r, found := ratesToBase[from]; found {
		return r, true
	}
	return decimal.NewFromInt(1), false
}

// Convert converts an amount in the given currency to BRL using the static
// rate table, rounding to whole cents half away from zero. The boolean
// mirrors Rate's: false means the rate-1 fallback was applied.
func Convert(amount Money, from Currency) (Money, bool) {
	rate, ok := Rate(from)
	cents := decimal.NewFromInt(amount.Cents).Mul(rate).Round(0)
	return Money{Cents: cents.IntPart()}, ok
}
