package match

// fuzzy slides a window of the paste's word count over the document words
// and scores each window by per-position word equivalence, surviving the
// common case where spell-correction altered a couple of characters in a
// handful of words. All windows above the threshold are ranked and the
// best one wins, not the leftmost.
func (d *Document) fuzzy(paste string, cfg Config) (Candidate, bool) {
	pasteWords := tokenize(paste)
	n := len(pasteWords)
	if n == 0 || len(d.words) < n {
		return Candidate{}, false
	}

	bestScore := 0.0
	bestAt := -1
	for i := 0; i+n <= len(d.words); i++ {
		score := windowSimilarity(pasteWords, d.words[i:i+n], cfg.WordEditDistance)
		if score >= cfg.FuzzyThreshold && score > bestScore {
			bestScore = score
			bestAt = i
		}
	}
	if bestAt < 0 {
		return Candidate{}, false
	}
	return d.candidateAt(bestAt, n, MethodFuzzy, bestScore), true
}
