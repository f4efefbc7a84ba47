package verify

import (
	"strings"
	"testing"

	"github.com/pastemark/pastemark/core/errors"
)

func TestAnnotatedClean(t *testing.T) {
	original := `<p>The quick brown fox jumps over the lazy dog.</p>`
	annotated := `<p>The <span class="pastemark" data-method="exact" data-confidence="1.00" title="Exact text match">quick brown fox</span> jumps over the lazy dog.</p>`

	report := Annotated(original, annotated)
	if !report.OK() {
		t.Fatalf("report not OK: %v", report.Issues)
	}
	if !report.WellFormed {
		t.Error("WellFormed = false, want true")
	}
	if !report.TextIntact {
		t.Error("TextIntact = false, want true")
	}
	if report.Highlights != 1 {
		t.Errorf("Highlights = %d, want 1", report.Highlights)
	}
	if report.ByMethod["exact"] != 1 {
		t.Errorf("ByMethod[exact] = %d, want 1", report.ByMethod["exact"])
	}
}

func TestAnnotatedMultipleMethods(t *testing.T) {
	annotated := `<p><span class="pastemark" data-method="exact" data-confidence="1.00" title="t">alpha</span> middle <span class="pastemark" data-method="fuzzy" data-confidence="0.82" title="t">omega</span></p>`
	original := `<p>alpha middle omega</p>`

	report := Annotated(original, annotated)
	if report.Highlights != 2 {
		t.Errorf("Highlights = %d, want 2", report.Highlights)
	}
	if report.ByMethod["exact"] != 1 || report.ByMethod["fuzzy"] != 1 {
		t.Errorf("ByMethod = %v, want one exact and one fuzzy", report.ByMethod)
	}
}

func TestAnnotatedTextMutation(t *testing.T) {
	original := `<p>hello world</p>`
	annotated := `<p>hello <span class="pastemark" data-method="exact" data-confidence="1.00" title="t">planet</span></p>`

	report := Annotated(original, annotated)
	if report.TextIntact {
		t.Error("TextIntact = true, want false")
	}
	if report.OK() {
		t.Error("OK() = true for mutated text")
	}
}

func TestAnnotatedNestedHighlight(t *testing.T) {
	original := `<p>outer inner</p>`
	annotated := `<p><span class="pastemark" data-method="exact" data-confidence="1.00" title="t">outer <span class="pastemark" data-method="fuzzy" data-confidence="0.80" title="t">inner</span></span></p>`

	report := Annotated(original, annotated)
	if report.Nested != 1 {
		t.Errorf("Nested = %d, want 1", report.Nested)
	}
	if report.OK() {
		t.Error("OK() = true with nested highlight")
	}
}

func TestAnnotatedInvalidConfidence(t *testing.T) {
	original := `<p>word</p>`
	annotated := `<p><span class="pastemark" data-method="exact" data-confidence="high" title="t">word</span></p>`

	report := Annotated(original, annotated)
	if report.OK() {
		t.Error("OK() = true with non-numeric confidence")
	}
	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "data-confidence") {
			found = true
		}
	}
	if !found {
		t.Errorf("Issues = %v, want a data-confidence issue", report.Issues)
	}
}

func TestAnnotatedMalformedMarkup(t *testing.T) {
	original := `<p>text</p>`
	annotated := `<p>text</div>`

	report := Annotated(original, annotated)
	if report.WellFormed {
		t.Error("WellFormed = true for mismatched tags")
	}
	if report.OK() {
		t.Error("OK() = true for malformed markup")
	}
}

func TestAnnotatedNoHighlights(t *testing.T) {
	doc := `<p>nothing pasted here</p>`
	report := Annotated(doc, doc)
	if !report.OK() {
		t.Fatalf("report not OK: %v", report.Issues)
	}
	if report.Highlights != 0 {
		t.Errorf("Highlights = %d, want 0", report.Highlights)
	}
}

func TestQuery(t *testing.T) {
	annotated := `<p><span class="pastemark" data-method="exact" data-confidence="1.00" title="t">alpha</span> and <span class="pastemark" data-method="sentence" data-confidence="0.90" title="t">beta</span></p>`

	texts, err := Query(annotated, `//span[@data-method='sentence']`)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(texts) != 1 || texts[0] != "beta" {
		t.Errorf("Query() = %v, want [beta]", texts)
	}
}

func TestQueryBadExpression(t *testing.T) {
	_, err := Query(`<p>x</p>`, `//span[`)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Query() error = %v, want ErrInvalidInput", err)
	}
}
