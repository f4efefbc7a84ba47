package match

import "strings"

// sentenceMatches compares every paste sentence against every document
// sentence using the same word-equivalence similarity as the fuzzy
// matcher, but over whole sentences instead of a sliding window. Each
// paste sentence independently picks its best-scoring document sentence
// above the threshold.
func (d *Document) sentenceMatches(paste string, cfg Config) []Candidate {
	docSents := splitSentences(d.folded)
	if len(docSents) == 0 {
		return nil
	}
	docTokens := make([][]token, len(docSents))
	for i, s := range docSents {
		docTokens[i] = tokenize(s.text)
	}

	var out []Candidate
	for _, ps := range splitSentences(paste) {
		if len(ps.text) <= cfg.MinSubUnitLength {
			continue
		}
		pTokens := tokenize(ps.text)
		if len(pTokens) == 0 {
			continue
		}
		bestScore := 0.0
		bestAt := -1
		for i := range docSents {
			score := windowSimilarity(pTokens, docTokens[i], cfg.WordEditDistance)
			if score >= cfg.SentenceThreshold && score > bestScore {
				bestScore = score
				bestAt = i
			}
		}
		if bestAt < 0 {
			continue
		}
		hit := docSents[bestAt]
		out = append(out, Candidate{
			Text:       d.clean[hit.start:hit.end],
			Start:      hit.start,
			End:        hit.end,
			Method:     MethodSentence,
			Confidence: bestScore,
		})
	}
	return out
}

// phraseMatches slides fixed-size word windows over the paste text and
// accepts any window found literally in the document. Long windows are
// reported as chunks, short ones as phrases; the merge step lets the
// longer, higher-priority chunks absorb overlapping phrases.
func (d *Document) phraseMatches(paste string, cfg Config) []Candidate {
	pasteWords := tokenize(paste)
	var out []Candidate
	out = append(out, d.phraseScan(pasteWords, cfg.ChunkWords, MethodChunk, cfg)...)
	out = append(out, d.phraseScan(pasteWords, cfg.PhraseWords, MethodPhrase, cfg)...)
	return out
}

func (d *Document) phraseScan(pasteWords []token, size int, m Method, cfg Config) []Candidate {
	if size <= 0 || len(pasteWords) < size {
		return nil
	}
	confidence := float64(size) / 8
	if confidence > 0.95 {
		confidence = 0.95
	}

	var out []Candidate
	for i := 0; i+size <= len(pasteWords); {
		phrase := joinTokens(pasteWords[i : i+size])
		if len(phrase) <= cfg.MinSubUnitLength {
			i++
			continue
		}
		idx := strings.Index(d.folded, phrase)
		if idx < 0 {
			i++
			continue
		}
		out = append(out, Candidate{
			Text:       d.clean[idx : idx+len(phrase)],
			Start:      idx,
			End:        idx + len(phrase),
			Method:     m,
			Confidence: confidence,
		})
		i += size
	}
	return out
}

func joinTokens(tokens []token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
