// Package verify inspects annotated documents and reports on the highlight
// spans they carry. It is used after reconciliation to confirm the output is
// structurally sound and that annotation did not disturb the visible text.
package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/markup"
)

// Report summarizes the highlight spans found in an annotated document.
type Report struct {
	// WellFormed is true when the annotated markup parses as XML. Spans that
	// cross element boundaries produce non-well-formed output; browsers
	// tolerate it, strict parsers do not.
	WellFormed bool

	// Highlights is the number of highlight spans found.
	Highlights int

	// ByMethod counts highlight spans per data-method value.
	ByMethod map[string]int

	// Nested is the number of highlight spans found inside another
	// highlight span. Reconciliation should never produce these.
	Nested int

	// TextIntact is true when the annotated document's visible text equals
	// the original document's visible text.
	TextIntact bool

	// Issues lists human-readable problems found during verification.
	Issues []string
}

// OK returns true when the report shows no problems.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Annotated verifies an annotated document against the original it was
// produced from. Structural queries require well-formed markup; when the
// markup does not parse, only the text comparison runs.
func Annotated(original, annotated string) *Report {
	report := &Report{ByMethod: make(map[string]int)}

	origText := markup.Strip(original).Text
	annoText := markup.Strip(annotated).Text
	report.TextIntact = origText == annoText
	if !report.TextIntact {
		report.Issues = append(report.Issues, "visible text differs from original")
	}

	root, err := xmlquery.Parse(strings.NewReader("<root>" + annotated + "</root>"))
	if err != nil {
		report.Issues = append(report.Issues,
			fmt.Sprintf("markup does not parse as XML: %v", err))
		return report
	}
	report.WellFormed = true

	spans, err := xmlquery.QueryAll(root, highlightQuery)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("highlight query failed: %v", err))
		return report
	}
	report.Highlights = len(spans)

	for _, span := range spans {
		method := span.SelectAttr("data-method")
		if method == "" {
			report.Issues = append(report.Issues, "highlight span missing data-method")
			continue
		}
		report.ByMethod[method]++

		conf := span.SelectAttr("data-confidence")
		if v, err := strconv.ParseFloat(conf, 64); err != nil || v < 0 || v > 1 {
			report.Issues = append(report.Issues,
				fmt.Sprintf("highlight span has invalid data-confidence %q", conf))
		}
	}

	nested, err := xmlquery.QueryAll(root, nestedQuery)
	if err == nil {
		report.Nested = len(nested)
	}
	if report.Nested > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%d highlight span(s) nested inside another highlight", report.Nested))
	}

	return report
}

// Query runs an XPath expression against annotated markup and returns the
// inner text of each match. The expression is compiled first so syntax
// errors are reported distinctly from parse failures.
func Query(annotated, expr string) ([]string, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.NewValidation("expr", err.Error())
	}
	root, err := xmlquery.Parse(strings.NewReader("<root>" + annotated + "</root>"))
	if err != nil {
		return nil, errors.NewParse("markup", "", err.Error())
	}
	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, errors.Wrap(err, "xpath query")
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.InnerText()
	}
	return out, nil
}

var (
	highlightQuery = fmt.Sprintf("//span[@class='%s']", markup.HighlightClass)
	nestedQuery    = fmt.Sprintf("//span[@class='%s']//span[@class='%s']",
		markup.HighlightClass, markup.HighlightClass)
)
