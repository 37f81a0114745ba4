package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"1800000", 1800000, true},
		{"1.800.000", 1800000, true},
		{"1,800,000", 1800000, true},
		{"1 800 000", 1800000, true},
		{"Rp 50.000", 50000, true},
		{"rp50000", 50000, true},
		{" 2500 ", 2500, true},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"12,34", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"Rp", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestParseStoredAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"60000", 60000, true},
		{"60000.0", 60000, true},
		{"60,000", 60000, true},
		{"1.000", 1000, true},
		{"Rp 12.500", 12500, true},
		{"60000.5", 0, false},
		{"-10", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseStoredAmount(tc.in)
		if tc.ok {
			if err != nil || got.Minor != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Minor, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := NewDate(2026, 1, 15)
	for _, in := range []string{
		"2026-01-15",
		"2026-01-15 00:00:00",
		"2026-01-15T08:30:00Z",
		"2026/01/15",
		"01/15/2026",
		"Jan 15, 2026",
		"15 January 2026",
	} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if !got.Equal(want.Time) {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
		if got.String() != "2026-01-15" {
			t.Fatalf("%q: expected ISO output, got %s", in, got.String())
		}
	}
	for _, in := range []string{"", "yesterday", "2026-13-45"} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}
