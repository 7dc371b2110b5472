package match

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Fee", "fee"},
		{"  Back on the Train ", "back on the train"},
		{"Runnin' Down a Dream", "runnin down a dream"},
		{"Mike's Song", "mikes song"},
		{"Pre-Dawn Highway", "predawn highway"},
		{"Twist   Around", "twist around"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	names := []string{"Mike's Song", "Down with Disease", "A-Frame"}
	for _, n := range names {
		once := Normalize(n)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", n, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("tweezer", "tweezer"); got != 1 {
		t.Fatalf("identical strings scored %v, want 1", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("empty strings scored %v, want 1", got)
	}

	// One character off in an 8-rune name is well above the 0.8 threshold.
	if got := Similarity("tweezer", "tweezers"); got <= 0.8 {
		t.Fatalf("near-identical names scored %v, want > 0.8", got)
	}

	// Unrelated names must fall below it.
	if got := Similarity("tweezer", "fee"); got > 0.5 {
		t.Fatalf("unrelated names scored %v, want <= 0.5", got)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"gumbo", "gambol", 2},
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b); got != c.want {
			t.Fatalf("editDistance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
