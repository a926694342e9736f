package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{" 2.50 ", 2.5, true},
		{"1000", 1000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{1, "1.00"},
		{1.5, "1.50"},
		{1.005, "1.00"}, // banker's-adjacent artifact of binary floats; display only
		{1234.567, "1234.57"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.out {
			t.Fatalf("FormatAmount(%v) expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"05-09-2026", true},
		{"31-12-1999", true},
		{" 01-01-2020 ", true},
		{"2026-09-05", false},
		{"32-01-2020", false},
		{"05/09/2026", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected parse, got %v", tc.in, err)
			}
			if d.String() == "" {
				t.Fatalf("%q round-tripped to empty string", tc.in)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(2026, 9, 5)
	if d.String() != "05-09-2026" {
		t.Fatalf("expected 05-09-2026, got %q", d.String())
	}
	parsed, err := ParseDate(d.String())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, d)
	}
}
