// Package currency decodes price text and converts amounts through a rate table.
//
// Rate convention: Rate(code) is the number of base units equal to one unit of
// code. With {TWD: 1, USD: 30} the base is TWD and 10 USD converts to 300 TWD.
package currency

import (
	"math"
	"sort"
)

// RateTable maps uppercase currency codes to their value in the base unit.
// A RateTable is immutable once built; reloading produces a new table.
type RateTable struct {
	rates map[string]float64
	codes []string
}

// NewRateTable copies the valid entries of rates into a new table.
// Entries whose code is not three uppercase ASCII letters, or whose rate is not
// a positive finite number, are dropped.
func NewRateTable(rates map[string]float64) RateTable {
	table := RateTable{rates: make(map[string]float64, len(rates))}
	for code, rate := range rates {
		if !IsCode(code) || !(rate > 0) || math.IsInf(rate, 1) {
			continue
		}
		table.rates[code] = rate
		table.codes = append(table.codes, code)
	}
	sort.Strings(table.codes)
	return table
}

// IsCode reports whether s looks like an ISO 4217 code
func IsCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Rate returns the base-unit value of one unit of code
func (t RateTable) Rate(code string) (float64, bool) {
	rate, ok := t.rates[code]
	return rate, ok
}

// Has reports whether code is present in the table
func (t RateTable) Has(code string) bool {
	_, ok := t.rates[code]
	return ok
}

// Len returns the number of codes in the table
func (t RateTable) Len() int {
	return len(t.codes)
}

// Empty reports whether no conversion is possible at all
func (t RateTable) Empty() bool {
	return len(t.codes) == 0
}

// Codes returns the known codes in lexicographic order
func (t RateTable) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// First returns the lexicographically first code
func (t RateTable) First() (string, bool) {
	if len(t.codes) == 0 {
		return "", false
	}
	return t.codes[0], true
}
