package match

import "strings"

var nameReplacer = strings.NewReplacer(
	"'", "",
	"’", "", // curly apostrophe, common in one source only
	"-", "",
	"‐", "",
)

// Normalize canonicalizes a song name for cross-source comparison: lower-case,
// trimmed, apostrophes and hyphens stripped, inner whitespace collapsed.
// Total and pure. Never the sole matching criterion; position agrees first.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nameReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity scores two normalized names in [0, 1] as 1 - editDistance/maxLen.
// Two empty strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

// editDistance is plain Levenshtein over runes, two-row DP.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
