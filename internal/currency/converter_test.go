package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	table := NewRateTable(map[string]float64{"TWD": 1, "USD": 30, "JPY": 0.22})

	converted, ok := Convert(10, "USD", "TWD", table)
	assert.True(t, ok)
	assert.InDelta(t, 300, converted, 1e-9)

	converted, ok = Convert(10, "USD", "JPY", table)
	assert.True(t, ok)
	assert.InDelta(t, 10*30/0.22, converted, 1e-9)

	_, ok = Convert(10, "EUR", "TWD", table)
	assert.False(t, ok)

	_, ok = Convert(10, "TWD", "EUR", table)
	assert.False(t, ok)
}

func TestConvertIdentity(t *testing.T) {
	table := NewRateTable(map[string]float64{"TWD": 1, "USD": 30})

	for _, code := range []string{"TWD", "USD", "EUR", "XXX"} {
		converted, ok := Convert(42.5, code, code, table)
		assert.True(t, ok, code)
		assert.Equal(t, 42.5, converted, code)
	}

	converted, ok := Convert(7, "EUR", "EUR", NewRateTable(nil))
	assert.True(t, ok)
	assert.Equal(t, 7.0, converted)
}

func TestConvertComposition(t *testing.T) {
	table := NewRateTable(map[string]float64{"TWD": 1, "USD": 30, "JPY": 0.22, "EUR": 33.7})

	for _, a := range table.Codes() {
		for _, b := range table.Codes() {
			for _, x := range []float64{0.01, 1, 99.99, 123456.78} {
				there, ok := Convert(x, a, b, table)
				assert.True(t, ok)
				back, ok := Convert(there, b, a, table)
				assert.True(t, ok)
				assert.InEpsilon(t, x, back, 1e-9, "%s->%s->%s", a, b, a)
			}
		}
	}
}

func TestNewRateTableDropsInvalidEntries(t *testing.T) {
	table := NewRateTable(map[string]float64{
		"TWD":  1,
		"usd":  30,
		"JPYX": 0.2,
		"EUR":  -1,
		"GBP":  0,
		"CHF":  35,
	})

	assert.Equal(t, []string{"CHF", "TWD"}, table.Codes())
	assert.Equal(t, 2, table.Len())
	first, ok := table.First()
	assert.True(t, ok)
	assert.Equal(t, "CHF", first)

	_, ok = NewRateTable(nil).First()
	assert.False(t, ok)
	assert.True(t, NewRateTable(nil).Empty())
}
