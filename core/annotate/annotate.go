// Package annotate converts accepted match candidates into highlight spans
// in the raw document. Candidates are merged as an interval set over the
// clean-text offset space, resolved by matcher priority, then mapped
// through the position map and wrapped in a single pass. Insertion points
// always fall between text content, never inside a tag, because the
// position map only addresses text bytes.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pastemark/pastemark/core/markup"
	"github.com/pastemark/pastemark/core/match"
)

// Apply wraps the accepted candidates into raw and returns the annotated
// markup. raw must be the document proj was built from. Candidates that
// overlap a higher-priority candidate, or text already highlighted in the
// input, are dropped; the original document content is never altered
// beyond span insertion.
func Apply(raw string, proj *markup.Projection, candidates []match.Candidate) string {
	kept := merge(proj, candidates)
	if len(kept) == 0 {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw) + len(kept)*96)
	cursor := 0
	for _, c := range kept {
		lo, hi := proj.RawRange(c.Start, c.End)
		if hi <= lo || lo < cursor {
			continue
		}
		b.WriteString(raw[cursor:lo])
		b.WriteString(openTag(c))
		b.WriteString(raw[lo:hi])
		b.WriteString("</span>")
		cursor = hi
	}
	b.WriteString(raw[cursor:])
	return b.String()
}

// merge resolves overlaps: candidates are ranked by method priority, then
// confidence, then length, and kept greedily so the final set is pairwise
// disjoint. Candidates covering text that already carries a highlight span
// are dropped, which makes repeated annotation idempotent.
func merge(proj *markup.Projection, candidates []match.Candidate) []match.Candidate {
	ranked := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.End <= c.Start {
			continue
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
			return la > lb
		}
		return a.Start < b.Start
	})

	var kept []match.Candidate
	for _, c := range ranked {
		span := markup.Span{Start: c.Start, End: c.End}
		if proj.AlreadyFlagged(span) {
			continue
		}
		if overlapsFlagged(proj, span) || overlapsAny(kept, span) {
			continue
		}
		kept = append(kept, c)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

func overlapsAny(kept []match.Candidate, span markup.Span) bool {
	for _, k := range kept {
		if span.Overlaps(markup.Span{Start: k.Start, End: k.End}) {
			return true
		}
	}
	return false
}

func overlapsFlagged(proj *markup.Projection, span markup.Span) bool {
	for _, f := range proj.Flagged {
		if f.Overlaps(span) {
			return true
		}
	}
	return false
}

func openTag(c match.Candidate) string {
	return fmt.Sprintf(`<span class=%q data-method=%q data-confidence="%.2f" title=%q>`,
		markup.HighlightClass, c.Method.String(), c.Confidence, c.Method.Rationale())
}
