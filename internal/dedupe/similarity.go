package dedupe

// Ratio returns a normalized similarity in [0, 1] between two strings,
// computed from the Indel distance over runes. Identical strings score 1,
// strings with no common subsequence score 0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	lcs := lcsLength(ra, rb)
	distance := total - 2*lcs
	return 1 - float64(distance)/float64(total)
}

// lcsLength computes the longest common subsequence length with a rolling
// single-row table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prev = cur
		}
	}
	return row[len(b)]
}
