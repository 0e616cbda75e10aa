package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// absent page/page_size params come through as ""
		{"", 1, 1},
		{"", 20, 20},
		// valid values
		{"3", 1, 3},
		{"50", 20, 50},
		{"0012", 20, 12},
		// negatives parse; the listing service clamps them afterwards
		{"-1", 1, -1},
		// garbage -> default (no trim)
		{"abc", 1, 1},
		{" 3", 1, 1},
		// overflow -> default
		{"999999999999999999999999", 20, 20},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}
