package currency

// Convert converts amount from source to target through the shared base unit.
// It returns false when either code is missing from the table. When source
// equals target the amount is returned unchanged, even for unknown codes.
func Convert(amount float64, source, target string, table RateTable) (float64, bool) {
	if source == target {
		return amount, true
	}

	sourceRate, ok := table.Rate(source)
	if !ok {
		return 0, false
	}
	targetRate, ok := table.Rate(target)
	if !ok {
		return 0, false
	}

	amountInBase := amount * sourceRate
	return amountInBase / targetRate, true
}
