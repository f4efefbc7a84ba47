// Package markup provides the clean-text projection of a markup-bearing
// document: tags stripped, the common entity set decoded, whitespace
// collapsed, with a position map from clean-text offsets back to raw
// offsets. Matching always happens in clean space; annotation happens in
// raw space through the map.
package markup

import (
	"strings"
)

// HighlightClass is the class attribute carried by highlight spans that
// this module's annotator inserts. The normalizer recognizes it so that
// re-running the engine over already-annotated output never double-wraps.
const HighlightClass = "pastemark"

// Span is a half-open [Start, End) interval in clean-text byte offsets.
type Span struct {
	Start int
	End   int
}

// Covers reports whether s fully contains other.
func (s Span) Covers(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one offset.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Projection is the clean-text view of a raw markup document.
type Projection struct {
	// Text is the clean text: tags removed, entities decoded, whitespace
	// runs collapsed to a single space, leading/trailing whitespace dropped.
	Text string

	// Flagged lists the clean-space intervals whose raw text already sits
	// inside a highlight span from a previous annotation pass.
	Flagged []Span

	rawLo []int // rawLo[i] = raw offset where clean byte i begins
	rawHi []int // rawHi[i] = raw offset just past clean byte i
}

// entities is the minimal entity set decoded for comparison purposes.
// Anything else is left literal; under-decoding only risks under-detection.
var entities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
	"&apos;": "'",
	"&nbsp;": " ",
}

// Strip derives the clean-text projection of raw. It never fails: malformed
// markup (an unmatched "<" with no closing ">") degrades to literal text.
func Strip(raw string) *Projection {
	p := &Projection{
		rawLo: make([]int, 0, len(raw)),
		rawHi: make([]int, 0, len(raw)),
	}

	var clean strings.Builder
	clean.Grow(len(raw))

	pendingSpace := false
	pendingRaw := 0
	flagStart := -1 // clean offset where the current flagged region began

	// openTags tracks open elements by name. A close tag removes only the
	// topmost open with the same name, so formatting that straddles a
	// highlight boundary (the annotator closes a span wherever the match
	// ends, even past a "</b>" whose "<b>" opened earlier) cannot pop the
	// highlight entry and cut the flagged region short.
	var openTags []element
	inHighlight := func() bool {
		for _, t := range openTags {
			if t.highlight {
				return true
			}
		}
		return false
	}

	emit := func(s string, lo, hi int) {
		if pendingSpace && clean.Len() > 0 {
			clean.WriteByte(' ')
			p.rawLo = append(p.rawLo, pendingRaw)
			p.rawHi = append(p.rawHi, pendingRaw+1)
		}
		pendingSpace = false
		if inHighlight() && flagStart < 0 {
			flagStart = clean.Len()
		}
		clean.WriteString(s)
		for n := 0; n < len(s); n++ {
			p.rawLo = append(p.rawLo, lo)
			p.rawHi = append(p.rawHi, hi)
		}
	}
	closeFlag := func() {
		if flagStart >= 0 && clean.Len() > flagStart {
			p.Flagged = append(p.Flagged, Span{Start: flagStart, End: clean.Len()})
		}
		flagStart = -1
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == '<':
			end, ok := tagEnd(raw, i)
			if !ok {
				// Unbalanced "<": literal text.
				emit("<", i, i+1)
				i++
				continue
			}
			tag := raw[i : end+1]
			switch {
			case isHighlightOpen(tag):
				openTags = append(openTags, element{name: tagName(tag), highlight: true})
			case isCloseTag(tag):
				name := tagName(tag)
				for k := len(openTags) - 1; k >= 0; k-- {
					if openTags[k].name == name {
						openTags = append(openTags[:k], openTags[k+1:]...)
						break
					}
				}
				if !inHighlight() {
					closeFlag()
				}
			case isVoidTag(tag):
				// no element opened
			default:
				openTags = append(openTags, element{name: tagName(tag)})
			}
			i = end + 1

		case c == '&':
			if dec, n := decodeEntity(raw, i); n > 0 {
				if dec == " " {
					if !pendingSpace {
						pendingSpace = true
						pendingRaw = i
					}
					i += n
					continue
				}
				emit(dec, i, i+n)
				i += n
				continue
			}
			emit("&", i, i+1)
			i++

		case isSpace(c):
			if !pendingSpace {
				pendingSpace = true
				pendingRaw = i
			}
			i++

		default:
			emit(string(c), i, i+1)
			i++
		}
	}
	closeFlag()

	p.Text = clean.String()
	return p
}

// RawRange maps the clean-space interval [start, end) to the corresponding
// raw-document interval. Both bounds are clamped to the projection; an
// empty or inverted interval maps to an empty raw interval.
func (p *Projection) RawRange(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(p.rawLo) {
		end = len(p.rawLo)
	}
	if start >= end {
		return 0, 0
	}
	return p.rawLo[start], p.rawHi[end-1]
}

// AlreadyFlagged reports whether the clean-space interval is fully covered
// by a highlight span present in the input document.
func (p *Projection) AlreadyFlagged(s Span) bool {
	for _, f := range p.Flagged {
		if f.Covers(s) {
			return true
		}
	}
	return false
}

// element is one entry of the open-element stack kept during Strip.
type element struct {
	name      string
	highlight bool
}

// tagName extracts the lowercased element name from an open or close tag.
func tagName(tag string) string {
	s := strings.TrimPrefix(tag[1:], "/")
	end := 0
	for end < len(s) {
		c := s[end]
		if c == '>' || c == '/' || isSpace(c) {
			break
		}
		end++
	}
	return strings.ToLower(s[:end])
}

// tagEnd finds the ">" closing the tag that starts at raw[i]. It requires
// a plausible tag start so that stray "<" in prose stays literal.
func tagEnd(raw string, i int) (int, bool) {
	if i+1 >= len(raw) {
		return 0, false
	}
	c := raw[i+1]
	if !isTagStart(c) {
		return 0, false
	}
	j := i + 1
	for j < len(raw) {
		switch raw[j] {
		case '"', '\'':
			quote := raw[j]
			j++
			for j < len(raw) && raw[j] != quote {
				j++
			}
			if j >= len(raw) {
				return 0, false
			}
			j++
		case '>':
			return j, true
		default:
			j++
		}
	}
	return 0, false
}

func isTagStart(c byte) bool {
	return c == '/' || c == '!' || c == '?' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isCloseTag(tag string) bool {
	return strings.HasPrefix(tag, "</")
}

// isVoidTag reports whether tag opens no element: self-closing syntax,
// HTML void elements, comments, and processing instructions.
func isVoidTag(tag string) bool {
	if strings.HasSuffix(tag, "/>") {
		return true
	}
	lower := strings.ToLower(tag)
	if strings.HasPrefix(lower, "<!") || strings.HasPrefix(lower, "<?") {
		return true
	}
	for _, name := range []string{"br", "hr", "img", "input", "meta", "link", "wbr"} {
		if strings.HasPrefix(lower, "<"+name) {
			rest := lower[1+len(name):]
			if rest == ">" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
				return true
			}
		}
	}
	return false
}

// isHighlightOpen reports whether tag is an opening span carrying the
// pastemark highlight class.
func isHighlightOpen(tag string) bool {
	if isCloseTag(tag) {
		return false
	}
	lower := strings.ToLower(tag)
	if !strings.HasPrefix(lower, "<span") {
		return false
	}
	return strings.Contains(lower, HighlightClass)
}

// decodeEntity decodes a known entity at raw[i]. Returns the decoded text
// and the matched byte length (0 when no known entity starts at i).
func decodeEntity(raw string, i int) (string, int) {
	for entity, dec := range entities {
		if strings.HasPrefix(raw[i:], entity) {
			return dec, len(entity)
		}
	}
	return "", 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
