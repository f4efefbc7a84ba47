package annotate

import (
	"strings"
	"testing"

	"github.com/pastemark/pastemark/core/markup"
	"github.com/pastemark/pastemark/core/match"
)

func candidate(text string, start, end int, m match.Method, conf float64) match.Candidate {
	return match.Candidate{Text: text, Start: start, End: end, Method: m, Confidence: conf}
}

func TestApplyWrapsOneSpan(t *testing.T) {
	raw := "<p>one two three four</p>"
	proj := markup.Strip(raw)
	// "two three" is clean [4, 13)
	out := Apply(raw, proj, []match.Candidate{
		candidate("two three", 4, 13, match.MethodExact, 1.0),
	})

	if !strings.Contains(out, `<span class="pastemark" data-method="exact"`) {
		t.Errorf("output missing highlight span: %q", out)
	}
	if !strings.Contains(out, ">two three</span>") {
		t.Errorf("span does not wrap the fragment: %q", out)
	}
	if !strings.HasPrefix(out, "<p>one ") || !strings.HasSuffix(out, " four</p>") {
		t.Errorf("surrounding markup altered: %q", out)
	}
}

func TestApplyNoCandidates(t *testing.T) {
	raw := "<p>untouched</p>"
	proj := markup.Strip(raw)
	if out := Apply(raw, proj, nil); out != raw {
		t.Errorf("Apply with no candidates = %q, want input unchanged", out)
	}
}

func TestApplyPreservesCleanText(t *testing.T) {
	raw := "<p>The <b>quick</b> brown fox, so to speak.</p>"
	proj := markup.Strip(raw)
	out := Apply(raw, proj, []match.Candidate{
		candidate("quick brown", 4, 15, match.MethodFuzzy, 0.9),
	})

	if got := markup.Strip(out).Text; got != proj.Text {
		t.Errorf("clean text changed:\n got %q\nwant %q", got, proj.Text)
	}
}

func TestMergeDropsOverlapsByPriority(t *testing.T) {
	proj := markup.Strip("word one two three four five six")
	cands := []match.Candidate{
		candidate("two three", 9, 18, match.MethodPhrase, 0.4),
		candidate("one two three four", 5, 23, match.MethodExact, 1.0),
		candidate("five", 24, 28, match.MethodStructural, 0.7),
	}
	kept := merge(proj, cands)
	if len(kept) != 2 {
		t.Fatalf("merge kept %d candidates, want 2: %v", len(kept), kept)
	}
	if kept[0].Method != match.MethodExact {
		t.Errorf("kept[0].Method = %v, want exact (priority win)", kept[0].Method)
	}
	if kept[1].Method != match.MethodStructural {
		t.Errorf("kept[1].Method = %v, want structural", kept[1].Method)
	}
	for i := 1; i < len(kept); i++ {
		if kept[i].Start < kept[i-1].End {
			t.Errorf("kept candidates overlap: %v", kept)
		}
	}
}

func TestMergeSkipsAlreadyFlagged(t *testing.T) {
	raw := `pre <span class="pastemark">known</span> post`
	proj := markup.Strip(raw)
	if proj.Text != "pre known post" {
		t.Fatalf("Text = %q", proj.Text)
	}
	// "known" is clean [4, 9): already highlighted in the input.
	kept := merge(proj, []match.Candidate{
		candidate("known", 4, 9, match.MethodExact, 1.0),
	})
	if len(kept) != 0 {
		t.Errorf("merge kept %v, want nothing (already flagged)", kept)
	}
}

func TestApplyMultipleDisjointSpans(t *testing.T) {
	raw := "<p>alpha beta gamma delta epsilon</p>"
	proj := markup.Strip(raw)
	out := Apply(raw, proj, []match.Candidate{
		candidate("alpha", 0, 5, match.MethodExact, 1.0),
		candidate("delta", 17, 22, match.MethodExact, 1.0),
	})

	if got := strings.Count(out, `class="pastemark"`); got != 2 {
		t.Errorf("span count = %d, want 2: %q", got, out)
	}
	if !strings.Contains(out, ">alpha</span>") || !strings.Contains(out, ">delta</span>") {
		t.Errorf("expected both fragments wrapped: %q", out)
	}
}

func TestApplySpanAcrossInlineMarkup(t *testing.T) {
	raw := "<p>say <b>hello</b> there friend</p>"
	proj := markup.Strip(raw)
	// "hello there" spans the </b> boundary: clean [4, 15)
	out := Apply(raw, proj, []match.Candidate{
		candidate("hello there", 4, 15, match.MethodExact, 1.0),
	})

	if !strings.Contains(out, "hello</b> there</span>") {
		t.Errorf("span must close after crossing inline markup: %q", out)
	}
	if got := markup.Strip(out).Text; got != proj.Text {
		t.Errorf("clean text changed: %q", got)
	}
}
