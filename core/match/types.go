// Package match implements the layered matchers that decide which parts of
// a clean-text document still correspond to recorded paste events. Matchers
// run in fixed priority order; each emits candidates as clean-space
// intervals for the annotator to merge and wrap.
package match

// Method identifies which matcher produced a candidate. Declaration order
// is priority order: when candidates overlap, the lower value wins.
type Method int

const (
	MethodExact Method = iota
	MethodFuzzy
	MethodSentence
	MethodChunk
	MethodPhrase
	MethodStructural
	MethodPositional
)

// String returns the method name used in the data-method attribute of
// emitted highlight spans.
func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodFuzzy:
		return "fuzzy"
	case MethodSentence:
		return "sentence"
	case MethodChunk:
		return "chunk"
	case MethodPhrase:
		return "phrase"
	case MethodStructural:
		return "structural"
	case MethodPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// Rationale returns the human-readable explanation carried in the title
// attribute of emitted highlight spans.
func (m Method) Rationale() string {
	switch m {
	case MethodExact:
		return "pasted text found verbatim"
	case MethodFuzzy:
		return "pasted text with minor spelling changes"
	case MethodSentence:
		return "pasted sentence with partial rewording"
	case MethodChunk:
		return "long phrase from pasted text"
	case MethodPhrase:
		return "phrase from pasted text"
	case MethodStructural:
		return "structural match to pasted text"
	case MethodPositional:
		return "function-word pattern match to pasted text"
	default:
		return "match"
	}
}

// Candidate is a fragment of the clean document text accepted by a matcher.
// Start and End are clean-space byte offsets.
type Candidate struct {
	Text       string
	Start      int
	End        int
	Method     Method
	Confidence float64
}
