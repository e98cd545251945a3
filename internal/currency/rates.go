// Package currency converts displayed amounts between currencies using a
// fixed rate table. Conversion is view-only; stored record amounts are never
// rewritten.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BaselineCode is the fallback currency for symbols the table cannot
// resolve. Falling back instead of failing keeps conversion total; unknown
// currencies are flagged by the quality assessor, not here.
const BaselineCode = "USD"

// symbolToCode resolves currency symbols that appear on scanned documents.
var symbolToCode = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"元":   "CNY",
	"CN¥": "CNY",
	"C$":  "CAD",
	"A$":  "AUD",
	"₹":   "INR",
	"₩":   "KRW",
	"MX$": "MXN",
	"R$":  "BRL",
	"CHF": "CHF",
	"kr":  "SEK",
	"zł":  "PLN",
	"฿":   "THB",
	"₫":   "VND",
}

// usdRates holds units of each currency per 1 USD. The table is a static
// constant, not live market data.
var usdRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromFloat(1.0),
	"EUR": decimal.NewFromFloat(0.92),
	"GBP": decimal.NewFromFloat(0.79),
	"JPY": decimal.NewFromFloat(149.50),
	"CNY": decimal.NewFromFloat(7.24),
	"CAD": decimal.NewFromFloat(1.36),
	"AUD": decimal.NewFromFloat(1.52),
	"INR": decimal.NewFromFloat(83.10),
	"KRW": decimal.NewFromFloat(1330.0),
	"MXN": decimal.NewFromFloat(17.15),
	"BRL": decimal.NewFromFloat(4.97),
	"CHF": decimal.NewFromFloat(0.88),
	"SEK": decimal.NewFromFloat(10.45),
	"PLN": decimal.NewFromFloat(4.02),
	"THB": decimal.NewFromFloat(35.60),
	"VND": decimal.NewFromFloat(24500.0),
}

// ResolveCode maps a symbol or code to a 3-letter currency code. Unresolvable
// inputs resolve to the baseline code; ok reports whether the input was
// actually recognized.
func ResolveCode(symbolOrCode string) (code string, ok bool) {
	s := strings.TrimSpace(symbolOrCode)
	if s == "" {
		return BaselineCode, false
	}

	if mapped, found := symbolToCode[s]; found {
		return mapped, true
	}

	upper := strings.ToUpper(s)
	if _, found := usdRates[upper]; found {
		return upper, true
	}

	return BaselineCode, false
}

// Supported reports whether a symbol or code resolves to an entry in the
// rate table.
func Supported(symbolOrCode string) bool {
	_, ok := ResolveCode(symbolOrCode)
	return ok
}

// Rate returns the multiplier that converts an amount in the source currency
// into the target currency, along with the resolved source code. It always
// returns a usable multiplier: unresolvable inputs fall back to the baseline
// code, and identical source and target short-circuit to exactly 1.
func Rate(sourceSymbolOrCode, targetCode string) (float64, string) {
	source, _ := ResolveCode(sourceSymbolOrCode)
	target, _ := ResolveCode(targetCode)

	if source == target {
		return 1, source
	}

	sourceRate, sourceOK := usdRates[source]
	targetRate, targetOK := usdRates[target]
	if !sourceOK || !targetOK || sourceRate.IsZero() {
		return 1, source
	}

	multiplier, _ := targetRate.Div(sourceRate).Float64()
	return multiplier, source
}

// Convert applies Rate to an amount, rounding to 2 decimal places.
func Convert(amount float64, sourceSymbolOrCode, targetCode string) float64 {
	multiplier, _ := Rate(sourceSymbolOrCode, targetCode)
	converted := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(multiplier))
	result, _ := converted.Round(2).Float64()
	return result
}

// Codes returns all supported currency codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(usdRates))
	for code := range usdRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// USDRate returns the units of the given currency per 1 USD.
func USDRate(code string) (float64, bool) {
	rate, ok := usdRates[strings.ToUpper(code)]
	if !ok {
		return 0, false
	}
	f, _ := rate.Float64()
	return f, true
}
