// Package reconcile is the provenance reconciliation engine: given a
// markup document and the log of paste events recorded while it was
// written, it determines which spans of the current document still
// correspond to pasted content and wraps them in highlight spans.
//
// The engine is a pure function of its inputs. It holds no state between
// invocations, performs no I/O, and never fails: the worst outcome is
// under-detection, never corruption of the document.
package reconcile

import (
	"github.com/pastemark/pastemark/core/annotate"
	"github.com/pastemark/pastemark/core/markup"
	"github.com/pastemark/pastemark/core/match"
	"github.com/pastemark/pastemark/core/paste"
)

// Engine runs reconciliation with a fixed matcher configuration. The zero
// value is not usable; construct with New.
type Engine struct {
	cfg match.Config
}

// New returns an engine with the given matcher thresholds.
func New(cfg match.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Reconcile returns documentMarkup with highlight spans inserted around
// every detected paste fragment. The output is the input markup unmodified
// except for span insertion and is safe to render in its place. Calling
// Reconcile on its own output adds nothing (annotation is idempotent).
func (e *Engine) Reconcile(documentMarkup string, events []paste.Event) string {
	if documentMarkup == "" || len(events) == 0 {
		return documentMarkup
	}

	proj := markup.Strip(documentMarkup)
	if proj.Text == "" {
		return documentMarkup
	}
	doc := match.NewDocument(proj.Text)

	var candidates []match.Candidate
	for _, ev := range events {
		candidates = append(candidates, doc.Match(ev.Text, e.cfg)...)
	}
	if len(candidates) == 0 {
		return documentMarkup
	}

	return annotate.Apply(documentMarkup, proj, candidates)
}

// Reconcile runs a single reconciliation with default thresholds.
func Reconcile(documentMarkup string, events []paste.Event) string {
	return New(match.DefaultConfig()).Reconcile(documentMarkup, events)
}
