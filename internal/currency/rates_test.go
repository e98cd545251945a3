package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate_Identity(t *testing.T) {
	for _, code := range Codes() {
		multiplier, resolved := Rate(code, code)
		assert.Equal(t, 1.0, multiplier, "rate(%s, %s) must be exactly 1", code, code)
		assert.Equal(t, code, resolved)
	}
}

func TestRate_RoundTrip(t *testing.T) {
	codes := Codes()
	for _, a := range codes {
		for _, b := range codes {
			forward, _ := Rate(a, b)
			back, _ := Rate(b, a)
			assert.InDelta(t, 1.0, forward*back, 1e-9,
				"rate(%s,%s) * rate(%s,%s) must round-trip", a, b, b, a)
		}
	}
}

func TestRate_SymbolResolution(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		target       string
		wantResolved string
	}{
		{name: "dollar sign resolves to USD", source: "$", target: "EUR", wantResolved: "USD"},
		{name: "euro sign resolves to EUR", source: "€", target: "USD", wantResolved: "EUR"},
		{name: "lowercase code accepted", source: "gbp", target: "USD", wantResolved: "GBP"},
		{name: "unknown symbol falls back to baseline", source: "₴", target: "USD", wantResolved: "USD"},
		{name: "empty symbol falls back to baseline", source: "", target: "USD", wantResolved: "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			multiplier, resolved := Rate(tt.source, tt.target)
			assert.Equal(t, tt.wantResolved, resolved)
			assert.Positive(t, multiplier)
		})
	}
}

func TestRate_UnknownSourceNeverFails(t *testing.T) {
	// Unknown source resolves to USD, so converting to USD yields exactly 1.
	multiplier, resolved := Rate("☃", "USD")
	assert.Equal(t, 1.0, multiplier)
	assert.Equal(t, "USD", resolved)
}

func TestConvert_RoundsToCents(t *testing.T) {
	got := Convert(100, "USD", "EUR")
	assert.Equal(t, 92.0, got)

	// A conversion that would produce long fractions is rounded to 2 places.
	got = Convert(10, "EUR", "GBP")
	rate, _ := Rate("EUR", "GBP")
	assert.InDelta(t, 10*rate, got, 0.005)
}

func TestResolveCode(t *testing.T) {
	code, ok := ResolveCode("¥")
	assert.True(t, ok)
	assert.Equal(t, "JPY", code)

	code, ok = ResolveCode("doge")
	assert.False(t, ok)
	assert.Equal(t, BaselineCode, code)
}
