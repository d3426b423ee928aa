package core

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"3750.00", 375000, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("ParseMoney(%q) = %d, %v; want %d", tc.in, got.Cents, err, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ParseMoney(%q) expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{123, "1.23"},
		{375000, "3750.00"},
		{-50, "-0.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	m := Money{Cents: 216800}
	data, err := m.MarshalJSON()
	if err != nil || string(data) != `"2168.00"` {
		t.Fatalf("MarshalJSON = %s, %v", data, err)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil || back.Cents != m.Cents {
		t.Fatalf("UnmarshalJSON(%s) = %d, %v", data, back.Cents, err)
	}
	// Bare JSON numbers are accepted too.
	if err := back.UnmarshalJSON([]byte("12.34")); err != nil || back.Cents != 1234 {
		t.Fatalf("UnmarshalJSON(12.34) = %d, %v", back.Cents, err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 150}
	b := Money{Cents: 250}
	if a.Add(b).Cents != 400 {
		t.Fatalf("Add failed")
	}
	if a.Sub(b).Cents != -100 {
		t.Fatalf("Sub failed")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
}
