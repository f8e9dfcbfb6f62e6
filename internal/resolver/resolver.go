// Package resolver derives the ready-to-use numeric configuration from raw settings.
package resolver

import (
	"math"

	"sjsage522/pricecontext/internal/currency"
	"sjsage522/pricecontext/services/settings"
)

const (
	defaultWorkHoursPerDay = 8
	workDaysPerWeek        = 5
	weeksPerYear           = 52
	monthsPerYear          = 12

	defaultCurrency         = "USD"
	defaultSymbol           = "$"
	defaultItemName         = "coffees"
	defaultItemSingularName = "coffee"
)

// ReferenceItem is a good that prices are expressed in
type ReferenceItem struct {
	Name         string
	SingularName string
	UnitPrice    float64
}

// ResolvedConfig holds the derived settings used by the annotator
type ResolvedConfig struct {
	// HourlyRate is in DisplayCurrency; zero disables work-time annotations
	HourlyRate float64
	// DisplayCurrency is empty when no currency could be resolved
	DisplayCurrency string
	CurrencySymbol  string
	// ReferenceItem is nil when disabled
	ReferenceItem  *ReferenceItem
	HasValidSalary bool
}

// CanShowWorkTime reports whether a work-time fragment can be produced
func (c ResolvedConfig) CanShowWorkTime() bool {
	return c.HourlyRate > 0
}

// CanShowReferenceItem reports whether a reference-item fragment can be produced
func (c ResolvedConfig) CanShowReferenceItem() bool {
	return c.ReferenceItem != nil && c.ReferenceItem.UnitPrice > 0
}

// Resolve computes the hourly rate, display currency and reference item
func Resolve(salary *settings.Salary, workHoursPerDay *settings.Number, item *settings.BaseItem, table currency.RateTable) ResolvedConfig {
	var cfg ResolvedConfig

	var amount float64
	var salaryType, currencyToken, symbol string
	if salary != nil {
		amount = float64(salary.Amount)
		salaryType = salary.SalaryType
		currencyToken = salary.Currency
		symbol = salary.CurrencySymbol
	}
	if isBad(amount) {
		amount = 0
	}
	cfg.HasValidSalary = amount > 0

	switch {
	case symbol != "":
		cfg.CurrencySymbol = symbol
	case currencyToken != "":
		cfg.CurrencySymbol = currencyToken
	default:
		cfg.CurrencySymbol = defaultSymbol
	}

	cfg.DisplayCurrency = resolveCurrency(currencyToken, table)
	cfg.ReferenceItem = resolveItem(item)

	if cfg.DisplayCurrency == "" {
		return cfg
	}

	hoursPerDay := float64(defaultWorkHoursPerDay)
	if workHoursPerDay != nil && float64(*workHoursPerDay) != 0 && !isBad(float64(*workHoursPerDay)) {
		hoursPerDay = float64(*workHoursPerDay)
	}
	weeklyHours := hoursPerDay * workDaysPerWeek

	var annual float64
	switch salaryType {
	case settings.SalaryMonthly:
		annual = amount * monthsPerYear
	case settings.SalaryHourly:
		annual = amount * weeklyHours * weeksPerYear
	default:
		annual = amount
	}

	if annual > 0 && weeklyHours > 0 {
		cfg.HourlyRate = annual / (weeksPerYear * weeklyHours)
	}
	if isBad(cfg.HourlyRate) || cfg.HourlyRate < 0 {
		cfg.HourlyRate = 0
	}

	return cfg
}

// ResolveSettings is Resolve over a RawSettings record
func ResolveSettings(raw settings.RawSettings, table currency.RateTable) ResolvedConfig {
	return Resolve(raw.Salary, raw.WorkHoursPerDay, raw.BaseItem, table)
}

func resolveCurrency(token string, table currency.RateTable) string {
	code, ok := currency.MapSymbolToCode(token, table)
	if !ok {
		code = defaultCurrency
	}
	if table.Has(code) {
		return code
	}
	if table.Has(defaultCurrency) {
		return defaultCurrency
	}
	if first, ok := table.First(); ok {
		return first
	}
	return ""
}

func resolveItem(item *settings.BaseItem) *ReferenceItem {
	if item == nil {
		return nil
	}
	price := float64(item.Price)
	if isBad(price) || price <= 0 {
		return nil
	}

	resolved := &ReferenceItem{
		Name:         item.Name,
		SingularName: item.SingularName,
		UnitPrice:    price,
	}
	if resolved.Name == "" {
		resolved.Name = defaultItemName
	}
	if resolved.SingularName == "" {
		resolved.SingularName = defaultItemSingularName
	}
	return resolved
}

func isBad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
