package annotator

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"sjsage522/pricecontext/internal/resolver"
)

// minQuantity is the smallest reference-item quantity worth showing
const minQuantity = 0.1

// FormatWorkTime renders a duration given in hours.
// It returns an empty string for non-positive or non-finite input.
func FormatWorkTime(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return ""
	}
	if hours < 1.0/60 {
		return "<1 min"
	}
	if hours < 1 {
		minutes := int(math.Round(hours * 60))
		if minutes == 1 {
			return "1 min"
		}
		return fmt.Sprintf("%d mins", minutes)
	}

	rounded := decimal.NewFromFloat(hours).Round(1)
	if rounded.Equal(decimal.NewFromInt(1)) {
		return "1 hr"
	}
	return rounded.String() + " hrs"
}

// FormatQuantity renders an amount of a reference item, or "" when the
// quantity is below the display threshold
func FormatQuantity(quantity float64, item resolver.ReferenceItem) string {
	if quantity < minQuantity || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return ""
	}
	name := item.Name
	if quantity == 1.0 {
		name = item.SingularName
	}
	return decimal.NewFromFloat(quantity).StringFixed(1) + " " + name
}

// Compose builds the annotation text for a price already converted into the
// display currency. It returns "" when no fragment qualifies.
func Compose(converted float64, cfg resolver.ResolvedConfig) string {
	var fragments []string

	if cfg.CanShowWorkTime() {
		if workTime := FormatWorkTime(converted / cfg.HourlyRate); workTime != "" {
			fragments = append(fragments, workTime)
		}
	}

	if cfg.CanShowReferenceItem() {
		if quantity := FormatQuantity(converted/cfg.ReferenceItem.UnitPrice, *cfg.ReferenceItem); quantity != "" {
			fragments = append(fragments, quantity)
		}
	}

	if len(fragments) == 0 {
		return ""
	}
	return " (" + strings.Join(fragments, " or ") + ")"
}
