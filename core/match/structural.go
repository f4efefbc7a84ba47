package match

// structural is the last-resort scan for heavy rewording that preserved
// paragraph shape: character length, punctuation pattern, and word count
// of same-sized windows are compared instead of the words themselves.
func (d *Document) structural(paste string, cfg Config) (Candidate, bool) {
	pasteWords := tokenize(paste)
	n := len(pasteWords)
	if n == 0 || len(d.words) < n {
		return Candidate{}, false
	}
	pastePunct := countPunctuation(paste)

	bestScore := 0.0
	bestAt := -1
	for i := 0; i+n <= len(d.words); i++ {
		window := d.folded[d.words[i].start:d.words[i+n-1].end]

		lengthSim := ratioSimilarity(len(paste), len(window))
		punctSim := 0.5
		if countPunctuation(window) == pastePunct {
			punctSim = 1.0
		}
		wordCountSim := ratioSimilarity(n, n) // windows are length-matched

		score := 0.4*lengthSim + 0.3*punctSim + 0.3*wordCountSim
		if score >= cfg.StructuralThreshold && score > bestScore {
			bestScore = score
			bestAt = i
		}
	}
	if bestAt < 0 {
		return Candidate{}, false
	}
	return d.candidateAt(bestAt, n, MethodStructural, bestScore), true
}

// ratioSimilarity is 1 - |a-b| / max(a,b), the closeness measure used for
// both character lengths and word counts.
func ratioSimilarity(a, b int) float64 {
	if a == b {
		return 1.0
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return 1.0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - float64(diff)/float64(max)
}
