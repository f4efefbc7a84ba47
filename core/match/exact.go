package match

import "strings"

// exact is the literal containment test: the whole normalized paste text,
// case-insensitively, anywhere in the clean document. Because matching
// happens in clean space, a verbatim paste that was later split across
// inline formatting boundaries in the raw document still matches here.
func (d *Document) exact(paste string) (Candidate, bool) {
	idx := strings.Index(d.folded, paste)
	if idx < 0 {
		return Candidate{}, false
	}
	end := idx + len(paste)
	return Candidate{
		Text:       d.clean[idx:end],
		Start:      idx,
		End:        end,
		Method:     MethodExact,
		Confidence: 1.0,
	}, true
}
