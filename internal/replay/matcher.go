package replay

// separators is the recursive tokenization priority order: split first
// on "/", then within each resulting piece on "(", then ")", then "\",
// then on whitespace. Each level only applies to pieces the previous
// level didn't already split.
var separators = []byte{'/', '(', ')', '\\'}

// tokenize splits s into words by applying separators in priority
// order, recursively, and finally splitting whatever remains on
// whitespace.
func tokenize(s string) []string {
	return tokenizeLevel(s, 0)
}

func tokenizeLevel(s string, level int) []string {
	if level >= len(separators) {
		return splitWhitespace(s)
	}
	sep := separators[level]
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			out = append(out, tokenizeLevel(s[start:i], level+1)...)
			start = i + 1
		}
	}
	out = append(out, tokenizeLevel(s[start:], level+1)...)
	return out
}

func splitWhitespace(s string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// lcsMatch is the longest-common-subsequence alignment of two token
// lists, reported as the count of matched tokens and the number of gap
// runs (maximal stretches of unmatched tokens on either side before the
// first match or between consecutive matches), plus whether the final matched token is the
// last token of both lists (the "end touching" case).
type lcsMatch struct {
	matched   int
	gapRuns   int
	endTouch  bool
}

func lcs(a, b []string) lcsMatch {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	// Walk the chosen alignment to recover the matched index pairs.
	var pairs [][2]int
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}

	if len(pairs) == 0 {
		return lcsMatch{}
	}

	gapRuns := 0
	prevI, prevJ := -1, -1
	for _, p := range pairs {
		gapBefore := (prevI >= 0 && p[0] != prevI+1) || (prevJ >= 0 && p[1] != prevJ+1)
		if prevI == -1 {
			gapBefore = p[0] != 0 || p[1] != 0
		}
		if gapBefore {
			gapRuns++
		}
		prevI, prevJ = p[0], p[1]
	}

	last := pairs[len(pairs)-1]
	endTouch := last[0] == n-1 && last[1] == m-1

	return lcsMatch{matched: len(pairs), gapRuns: gapRuns, endTouch: endTouch}
}

// isBetterMatch ranks candidate lcsMatch results the way the original
// fuzzy matcher does: more matched tokens wins; ties go to fewer gap
// runs (an end-touching alignment counts its trailing gap as one
// cheaper, modeled by subtracting one from its gap count before
// comparing); remaining ties go to whichever candidate has more unused
// response groups left (passed in separately, see bestFuzzyMatch).
func isBetterMatch(candidate, current lcsMatch, candidateRemaining, currentRemaining int) bool {
	cGaps := candidate.gapRuns
	if candidate.endTouch && cGaps > 0 {
		cGaps--
	}
	curGaps := current.gapRuns
	if current.endTouch && curGaps > 0 {
		curGaps--
	}

	if candidate.matched != current.matched {
		return candidate.matched > current.matched
	}
	if cGaps != curGaps {
		return cGaps < curGaps
	}
	return candidateRemaining > currentRemaining
}

func (idx *Index) bestFuzzyMatch(question, tag string) string {
	qTokens := tokenize(question)

	var bestKey string
	var bestScore lcsMatch
	bestRemaining := -1
	found := false

	for _, key := range idx.order {
		if len(key) < 5 || key[2:5] != tag {
			continue
		}
		h := idx.byQuestion[key]
		score := lcs(qTokens, tokenize(key))
		remaining := h.remainingGroups()

		if !found || isBetterMatch(score, bestScore, remaining, bestRemaining) {
			found = true
			bestKey = key
			bestScore = score
			bestRemaining = remaining
		}
	}

	if !found || bestScore.matched == 0 {
		return ""
	}
	return bestKey
}
