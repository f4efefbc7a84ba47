package match

// positional is the weakest-signal fallback: when content words were fully
// reworded, the grammatical skeleton often survives. A window is accepted
// when enough positions carry the same function word in the same slot as
// the paste text. False-positive prone by nature; it only runs when every
// other matcher came up empty.
func (d *Document) positional(paste string, cfg Config) (Candidate, bool) {
	pasteWords := tokenize(paste)
	n := len(pasteWords)
	if n == 0 || len(d.words) < n {
		return Candidate{}, false
	}

	bestRatio := 0.0
	bestAt := -1
	for i := 0; i+n <= len(d.words); i++ {
		hits := 0
		for j := 0; j < n; j++ {
			pw := pasteWords[j].core
			if !isFunctionWord(pw) {
				continue
			}
			if d.words[i+j].core == pw {
				hits++
			}
		}
		ratio := float64(hits) / float64(n)
		if hits >= cfg.PositionalMinHits && ratio > cfg.PositionalMinRatio && ratio > bestRatio {
			bestRatio = ratio
			bestAt = i
		}
	}
	if bestAt < 0 {
		return Candidate{}, false
	}
	return d.candidateAt(bestAt, n, MethodPositional, bestRatio), true
}
