package settings

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Namespaces carried by change notifications
const (
	NamespaceLocal = "local"
	NamespaceSync  = "sync"
)

// Keys of the persisted configuration
const (
	KeyEnabled         = "enabled"
	KeyLanguage        = "language"
	KeySalary          = "salary"
	KeyWorkHoursPerDay = "workHoursPerDay"
	KeyBaseItem        = "baseItem"
)

// SyncKeys are the keys that affect the resolved configuration
var SyncKeys = []string{KeySalary, KeyWorkHoursPerDay, KeyBaseItem}

// Salary types
const (
	SalaryHourly  = "hourly"
	SalaryMonthly = "monthly"
	SalaryYearly  = "yearly"
)

// Number is a lenient numeric setting. It decodes JSON numbers, numeric
// strings and null; anything unparseable decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(value)
	return nil
}

// Salary is the persisted salary record
type Salary struct {
	Amount         Number `json:"amount"`
	SalaryType     string `json:"salaryType"`
	Currency       string `json:"currency"`
	CurrencySymbol string `json:"currencySymbol,omitempty"`
}

// BaseItem is the persisted reference item record
type BaseItem struct {
	Name         string `json:"name"`
	SingularName string `json:"singularName"`
	Price        Number `json:"price"`
}

// RawSettings is the sync namespace as read from storage. Absent keys are nil.
type RawSettings struct {
	Salary          *Salary
	WorkHoursPerDay *Number
	BaseItem        *BaseItem
}

// Change describes a batch of keys written to one namespace
type Change struct {
	Namespace string   `json:"namespace"`
	Keys      []string `json:"keys"`
}

// Has reports whether key is part of the change
func (c Change) Has(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// AffectsConfig reports whether the change touches salary, work hours or the reference item
func (c Change) AffectsConfig() bool {
	if c.Namespace != NamespaceSync {
		return false
	}
	for _, key := range SyncKeys {
		if c.Has(key) {
			return true
		}
	}
	return false
}

// AffectsEnabled reports whether the change touches the enabled flag
func (c Change) AffectsEnabled() bool {
	return c.Namespace == NamespaceLocal && c.Has(KeyEnabled)
}
