package flatten

// Percentage returns count as a percentage of total, or 0 when total is not
// positive.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
