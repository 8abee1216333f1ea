package resource

import "fmt"

var suffixes = []struct {
	threshold float64
	suffix    string
}{
	{1e15, "Q"},
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatNumber renders a currency amount on the fixed magnitude ladder:
// exponential from 1e18, Q/T/B/M/K suffixes with two decimals, plain two decimals below 1000.
func FormatNumber(v float64) string {
	if v >= 1e18 {
		return fmt.Sprintf("%.2e", v)
	}
	for _, s := range suffixes {
		if v >= s.threshold {
			return fmt.Sprintf("%.2f%s", v/s.threshold, s.suffix)
		}
	}
	return fmt.Sprintf("%.2f", v)
}
