package currency

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTable() RateTable {
	return NewRateTable(map[string]float64{
		"TWD": 1,
		"USD": 30,
		"JPY": 0.22,
		"EUR": 33,
	})
}

func TestParse(t *testing.T) {
	parser := NewParser(testTable())

	testCases := []struct {
		text     string
		amount   float64
		currency string
		ok       bool
	}{
		{"$10", 10, "USD", true},
		{"  $10.99  ", 10.99, "USD", true},
		{"NT$ 1,234.50", 1234.50, "TWD", true},
		{"US$1,000", 1000, "USD", true},
		{"USD 1,234.56", 1234.56, "USD", true},
		{"usd 5", 5, "USD", true},
		{"1.234,56 EUR", 1234.56, "EUR", true},
		{"12,5 EUR", 12.5, "EUR", true},
		{"1,234 TWD", 1234, "TWD", true},
		{"¥1,200", 1200, "JPY", true},
		{"1200¥", 1200, "JPY", true},
		{"JPY 1.234.567", 1234567, "JPY", true},
		{"$10.00 - $20.00", 10, "USD", true},
		{"€10", 0, "", false},
		{"£10", 0, "", false},
		{"$0", 0, "", false},
		{"$0.00", 0, "", false},
		{"Price: $10", 0, "", false},
		{"10", 0, "", false},
		{"USD", 0, "", false},
		{"", 0, "", false},
		{"coupon SAVE10", 0, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			price, ok := parser.Parse(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.amount, price.Amount, 1e-9)
				assert.Equal(t, tc.currency, price.Currency)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	table := testTable()
	parser := NewParser(table)

	amounts := []float64{0.01, 0.5, 1, 9.99, 10, 123.45, 1000, 98765.43}
	for _, code := range table.Codes() {
		for _, amount := range amounts {
			text := fmt.Sprintf("%s %.2f", code, amount)
			price, ok := parser.Parse(text)
			if assert.True(t, ok, text) {
				assert.InDelta(t, amount, price.Amount, 0.005, text)
				assert.Equal(t, code, price.Currency, text)
			}
		}
	}

	symbols := map[string]string{"$": "USD", "US$": "USD", "NT$": "TWD", "¥": "JPY"}
	for symbol, code := range symbols {
		for _, amount := range amounts {
			text := fmt.Sprintf("%.2f%s", amount, symbol)
			price, ok := parser.Parse(text)
			if assert.True(t, ok, text) {
				assert.InDelta(t, amount, price.Amount, 0.005, text)
				assert.Equal(t, code, price.Currency, text)
			}
		}
	}
}

func TestParseWithEmptyTable(t *testing.T) {
	parser := NewParser(NewRateTable(nil))

	price, ok := parser.Parse("$10")
	assert.True(t, ok)
	assert.Equal(t, "USD", price.Currency)

	// codes are only recognized when the table knows them
	_, ok = parser.Parse("TWD 10")
	assert.False(t, ok)
}

func TestMapSymbolToCode(t *testing.T) {
	table := testTable()

	testCases := []struct {
		token string
		code  string
		ok    bool
	}{
		{"USD", "USD", true},
		{" eur ", "EUR", true},
		{"$", "USD", true},
		{"US$", "USD", true},
		{"usd$", "USD", true},
		{"¥", "JPY", true},
		{"yen", "JPY", true},
		{"NT$", "TWD", true},
		{"ntd", "TWD", true},
		{"€", "", false},
		{"GBP", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		code, ok := MapSymbolToCode(tc.token, table)
		assert.Equal(t, tc.ok, ok, tc.token)
		assert.Equal(t, tc.code, code, tc.token)
	}
}

func TestNormalizeNumber(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1.234.567,8", "1234567.8"},
		{"12,5", "12.5"},
		{"12,50", "12.50"},
		{"12,500", "12500"},
		{"1,234,567", "1234567"},
		{"1.234.567", "1234567"},
		{"10.99", "10.99"},
		{"42", "42"},
		{" 7 ", "7"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.out, NormalizeNumber(tc.in), tc.in)
	}
}
