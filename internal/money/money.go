// Package money renders minor-unit amounts into display strings for alerts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

type currencyInfo struct {
	symbol   string
	exponent int32
}

// Symbols and minor-unit exponents for the currencies Stripe charges commonly
// settle in. Anything else falls back to the uppercased ISO code with two
// decimal places.
var currencies = map[string]currencyInfo{
	"usd": {"$", 2},
	"eur": {"€", 2},
	"gbp": {"£", 2},
	"cad": {"CA$", 2},
	"aud": {"A$", 2},
	"nzd": {"NZ$", 2},
	"jpy": {"¥", 0},
	"krw": {"₩", 0},
	"chf": {"CHF ", 2},
	"sek": {"kr ", 2},
	"nok": {"kr ", 2},
	"dkk": {"kr ", 2},
	"mxn": {"MX$", 2},
	"brl": {"R$", 2},
	"sgd": {"S$", 2},
	"hkd": {"HK$", 2},
	"inr": {"₹", 2},
}

// Formatter converts minor-unit integer amounts into a currency symbol and a
// decimal display string.
type Formatter struct{}

// Format returns the symbol and display string for an amount in minor units
// of the given ISO 4217 currency code (lowercase, per the Stripe wire format).
func (Formatter) Format(amount int64, currency string) (symbol, display string) {
	info, ok := currencies[strings.ToLower(strings.TrimSpace(currency))]
	if !ok {
		info = currencyInfo{strings.ToUpper(strings.TrimSpace(currency)) + " ", 2}
	}

	d := decimal.New(amount, -info.exponent)
	return info.symbol, d.StringFixed(info.exponent)
}
