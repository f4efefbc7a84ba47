package match

// Document is the prepared clean-text view a set of paste events is
// matched against. Offsets in emitted candidates index the clean text the
// document was built from.
type Document struct {
	clean  string
	folded string
	words  []token
}

// NewDocument prepares clean text for matching. The text is expected to be
// a normalizer projection: whitespace already collapsed, markup stripped.
func NewDocument(clean string) *Document {
	folded := foldASCII(clean)
	return &Document{
		clean:  clean,
		folded: folded,
		words:  tokenize(folded),
	}
}

// Words returns the number of words in the document.
func (d *Document) Words() int {
	return len(d.words)
}

// Match runs the matcher ladder for one paste event and returns the
// accepted candidates. Stages run in priority order and each stage only
// runs when no earlier stage accepted anything for the event; the
// sentence and phrase stages are the exception and may both contribute
// independent candidates for different sub-units of the same event.
func (d *Document) Match(pasteText string, cfg Config) []Candidate {
	paste := foldASCII(collapseSpace(pasteText))
	if len(paste) < cfg.MinEventLength {
		return nil
	}

	if c, ok := d.exact(paste); ok {
		return []Candidate{c}
	}
	if c, ok := d.fuzzy(paste, cfg); ok {
		return []Candidate{c}
	}

	out := d.sentenceMatches(paste, cfg)
	out = append(out, d.phraseMatches(paste, cfg)...)
	if len(out) > 0 {
		return out
	}

	if c, ok := d.structural(paste, cfg); ok {
		return []Candidate{c}
	}
	if c, ok := d.positional(paste, cfg); ok {
		return []Candidate{c}
	}
	return nil
}

// candidateAt builds a candidate covering document words [i, i+n).
func (d *Document) candidateAt(i, n int, m Method, confidence float64) Candidate {
	start := d.words[i].start
	end := d.words[i+n-1].end
	return Candidate{
		Text:       d.clean[start:end],
		Start:      start,
		End:        end,
		Method:     m,
		Confidence: confidence,
	}
}
