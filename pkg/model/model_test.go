package model

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{125, "2:05"},
		{59, "0:59"},
		{0, "0:00"},
		{600, "10:00"},
		{1421, "23:41"},
		{-7, "0:00"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.seconds); got != c.want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestNormalizeSetLabel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Set 1", "1"},
		{"1", "1"},
		{"SET 2", "2"},
		{"Encore", "e"},
		{"e", "e"},
		{"Encore 2", "e2"},
		{"Soundcheck", "s"},
		{"", "1"},
	}
	for _, c := range cases {
		if got := NormalizeSetLabel(c.in); got != c.want {
			t.Fatalf("NormalizeSetLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-07-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || int(d.Month()) != 7 || d.Day() != 25 {
		t.Fatalf("parsed wrong date: %v", d)
	}

	if _, err := ParseDate("07/25/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
