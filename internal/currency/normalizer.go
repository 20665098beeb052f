// Package currency converts native-currency amounts to the reference currency
// using a static rate table.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Reference is the default reference currency code.
const Reference = "USD"

// staticRates holds how many units of each currency buy one USD.
var staticRates = map[string]string{
	"USD": "1",
	"EUR": "0.92",
	"GBP": "0.79",
	"JPY": "149.5",
	"CHF": "0.88",
	"CAD": "1.36",
	"AUD": "1.53",
	"CNY": "7.24",
	"RUB": "92.5",
	"UAH": "36.9",
	"BYN": "3.27",
	"KZT": "460",
	"UZS": "12250",
	"AMD": "387",
	"AZN": "1.7",
	"GEL": "2.66",
	"KGS": "89",
	"TJS": "10.95",
	"TMT": "3.5",
	"MDL": "17.7",
	"VND": "24500",
	"THB": "35.8",
	"KRW": "1340",
	"SGD": "1.35",
	"MYR": "4.73",
	"IDR": "15700",
	"PHP": "56.5",
	"INR": "83.2",
	"MXN": "17.1",
	"BRL": "4.98",
	"ZAR": "18.8",
	"TRY": "32.5",
	"PLN": "4.05",
	"CZK": "23.2",
}

// Normalizer converts amounts between native currencies and the reference currency.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	reference string
	rates     map[string]decimal.Decimal
}

// NewNormalizer builds a Normalizer from the static table. Overrides replace or
// extend table entries; non-positive overrides are ignored.
func NewNormalizer(reference string, overrides map[string]float64) *Normalizer {
	reference = canonical(reference)
	if reference == "" {
		reference = Reference
	}

	rates := make(map[string]decimal.Decimal, len(staticRates)+len(overrides))
	for code, rate := range staticRates {
		rates[code] = decimal.RequireFromString(rate)
	}
	for code, rate := range overrides {
		if rate <= 0 {
			continue
		}
		rates[canonical(code)] = decimal.NewFromFloat(rate)
	}
	rates[reference] = decimal.NewFromInt(1)

	return &Normalizer{reference: reference, rates: rates}
}

// Reference returns the reference currency code.
func (n *Normalizer) Reference() string {
	return n.reference
}

// Normalize converts amount in code to the reference currency.
// Unknown codes are treated as already being in the reference currency.
func (n *Normalizer) Normalize(amount decimal.Decimal, code string) decimal.Decimal {
	code = canonical(code)
	if code == n.reference {
		return amount
	}
	rate, ok := n.rates[code]
	if !ok {
		return amount
	}
	return amount.Div(rate)
}

// FromReference converts a reference-currency amount into code.
func (n *Normalizer) FromReference(amount decimal.Decimal, code string) decimal.Decimal {
	code = canonical(code)
	if code == n.reference {
		return amount
	}
	rate, ok := n.rates[code]
	if !ok {
		return amount
	}
	return amount.Mul(rate)
}

// Rate returns the units of code per reference unit.
func (n *Normalizer) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := n.rates[canonical(code)]
	return rate, ok
}

// Known reports whether code has an entry in the rate table.
func (n *Normalizer) Known(code string) bool {
	_, ok := n.rates[canonical(code)]
	return ok
}

// Codes returns all known currency codes, sorted.
func (n *Normalizer) Codes() []string {
	codes := make([]string, 0, len(n.rates))
	for code := range n.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
