package extractor

import "testing"

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"plain decimal", "150.00", 150.00, true},
		{"thousands separator", "1,234.56", 1234.56, true},
		{"leading plus", "+1.25", 1.25, true},
		{"negative", "-0.84", -0.84, true},
		{"currency prefix", "$193.42", 193.42, true},
		{"percent display", "4.8%", 4.8, true},
		{"integer", "42", 42, true},
		{"no digits", "N/A", 0, false},
		{"empty", "", 0, false},
		{"only punctuation", "--..", 0, false},
		{"two numeric runs", "150.00 1.25", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseNumber(tc.input)
			if !tc.ok {
				if got != nil {
					t.Errorf("ParseNumber(%q) = %v, expected nil", tc.input, *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseNumber(%q) = nil, expected %v", tc.input, tc.expected)
			}
			if *got != tc.expected {
				t.Errorf("ParseNumber(%q) = %v, expected %v", tc.input, *got, tc.expected)
			}
		})
	}
}

func TestCleanPercent(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"+(0.84%)", "0.84"},
		{"(0.84%)", "0.84"},
		{"-1.20%", "-1.20"},
		{"+4.8%", "4.8"},
	}

	for _, tc := range testCases {
		if got := CleanPercent(tc.input); got != tc.expected {
			t.Errorf("CleanPercent(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestIsPlausiblePrice(t *testing.T) {
	testCases := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"typical price", 150.00, true},
		{"penny stock", 0.02, true},
		{"large cap", 99999.99, true},
		{"lower bound excluded", 0.01, false},
		{"upper bound excluded", 100000, false},
		{"zero", 0, false},
		{"negative", -5, false},
		{"decoy ad number", 250000, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPlausiblePrice(tc.input); got != tc.expected {
				t.Errorf("IsPlausiblePrice(%v) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}
