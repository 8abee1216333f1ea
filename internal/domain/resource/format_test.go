package resource

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.346, "12.35"},
		{999.99, "999.99"},
		{1000, "1.00K"},
		{1500, "1.50K"},
		{2_340_000, "2.34M"},
		{7.5e9, "7.50B"},
		{1e12, "1.00T"},
		{3.21e15, "3.21Q"},
		{1e18, "1.00e+18"},
		{4.56e21, "4.56e+21"},
	}

	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
