package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// token is a whitespace-delimited word with its clean-space offsets.
type token struct {
	text  string // folded (lowercased) surface form
	core  string // folded form with surrounding punctuation trimmed
	start int
	end   int
}

const wordTrimSet = ".,!?;:'\"()[]{}" + "‘’“”"

// foldASCII lowercases A-Z in place without changing byte offsets, which
// keeps clean-space positions valid after folding. Non-ASCII runes are
// compared as-is; case-folding them could change byte lengths.
func foldASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// tokenize splits folded text into whitespace-delimited tokens with their
// byte offsets in the original string.
func tokenize(folded string) []token {
	var out []token
	i := 0
	for i < len(folded) {
		if folded[i] == ' ' {
			i++
			continue
		}
		j := i
		for j < len(folded) && folded[j] != ' ' {
			j++
		}
		word := folded[i:j]
		out = append(out, token{
			text:  word,
			core:  strings.Trim(word, wordTrimSet),
			start: i,
			end:   j,
		})
		i = j
	}
	return out
}

// wordsEquivalent reports whether two words match directly or within the
// configured edit distance. Classic DP Levenshtein via agnivade/levenshtein.
func wordsEquivalent(a, b string, maxDist int) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= maxDist
}

// windowSimilarity is the fraction of positions where the two word
// sequences carry equivalent words. Sequences of unequal length are
// compared over the shorter one against the longer one's length.
func windowSimilarity(a, b []token, maxDist int) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	total := len(a)
	if len(b) > total {
		total = len(b)
	}
	if total == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < n; i++ {
		if wordsEquivalent(a[i].core, b[i].core, maxDist) {
			hits++
		}
	}
	return float64(hits) / float64(total)
}

// sentence is a terminator-delimited stretch of text with offsets.
type sentence struct {
	text  string
	start int
	end   int
}

// splitSentences splits folded text on sentence terminators, keeping the
// terminator with the sentence it ends.
func splitSentences(folded string) []sentence {
	var out []sentence
	start := 0
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		if c == '.' || c == '!' || c == '?' {
			s := strings.TrimSpace(folded[start : i+1])
			if s != "" {
				lead := leadingSpace(folded[start : i+1])
				out = append(out, sentence{text: s, start: start + lead, end: i + 1})
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(folded[start:]); tail != "" {
		lead := leadingSpace(folded[start:])
		out = append(out, sentence{text: tail, start: start + lead, end: start + lead + len(tail)})
	}
	return out
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

// countPunctuation counts the sentence and clause punctuation marks the
// structural matcher compares.
func countPunctuation(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?', ',', ':', ';':
			n++
		}
	}
	return n
}

// functionWords is the closed set of high-frequency grammatical words the
// positional matcher anchors on.
var functionWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

func isFunctionWord(w string) bool {
	_, ok := functionWords[w]
	return ok
}

// collapseSpace trims s and collapses internal whitespace runs to a single
// space, mirroring what the normalizer does to document text.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
