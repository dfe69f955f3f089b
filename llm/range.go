package llm

// MapToRange projects a relative value in [0, 100] onto [min, max].
// Out-of-range inputs are capped at the nearest bound.
func MapToRange(min, max, relative float64) float64 {
	if relative > 100 {
		relative = 100
	}
	if relative < 0 {
		relative = 0
	}
	return min + (max-min)*(relative/100.0)
}
