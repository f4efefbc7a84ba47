// Package pastelog reads and writes the plain-text paste log format.
//
// A log is a sequence of lines, one per paste event:
//
//	paste at 2026-03-01T12:00:00Z span 120..180 "The quick brown fox"
//
// The span clause records where the paste was inserted at capture time and
// is optional. Lines starting with '#' are comments. Timestamps are RFC 3339.
package pastelog

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/paste"
)

// logGrammar is the participle grammar for a whole paste log.
//
//nolint:govet // participle grammar tags are not standard struct tags
type logGrammar struct {
	Entries []*entryGrammar `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type entryGrammar struct {
	Timestamp string    `parser:"\"paste\" \"at\" @Timestamp"`
	Span      *spanPart `parser:"( \"span\" @@ )?"`
	Text      string    `parser:"@String"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type spanPart struct {
	Start int `parser:"@Int"`
	End   int `parser:"\"..\" @Int"`
}

// logLexer defines the lexer for paste logs.
// Note: Timestamp must precede Int so "2026-..." is not split at the dash.
var logLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Timestamp", Pattern: `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "DotDot", Pattern: `\.\.`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-z]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// logParser is the participle parser for paste logs.
var logParser = participle.MustBuild[logGrammar](
	participle.Lexer(logLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Parse parses a paste log into events, ordered by timestamp.
func Parse(input string) ([]paste.Event, error) {
	if strings.TrimSpace(stripComments(input)) == "" {
		return nil, nil
	}

	parsed, err := logParser.ParseString("", input)
	if err != nil {
		return nil, errors.NewParse("pastelog", "", err.Error())
	}

	events := make([]paste.Event, 0, len(parsed.Entries))
	for _, entry := range parsed.Entries {
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			return nil, errors.NewParse("pastelog", "", "invalid timestamp "+strconv.Quote(entry.Timestamp))
		}
		ev := paste.Event{Text: entry.Text, Timestamp: ts}
		if entry.Span != nil {
			if entry.Span.End < entry.Span.Start {
				return nil, errors.NewParse("pastelog", "",
					"span end before start: "+strconv.Itoa(entry.Span.Start)+".."+strconv.Itoa(entry.Span.End))
			}
			ev.StartIndex = entry.Span.Start
			ev.EndIndex = entry.Span.End
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

// ParseFile parses the paste log at path.
func ParseFile(path string) ([]paste.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	events, err := Parse(string(data))
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return events, nil
}

// Format writes events to w in paste log form, one line per event.
func Format(w io.Writer, events []paste.Event) error {
	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString("paste at ")
		sb.WriteString(ev.Timestamp.UTC().Format(time.RFC3339))
		if ev.EndIndex > ev.StartIndex {
			sb.WriteString(" span ")
			sb.WriteString(strconv.Itoa(ev.StartIndex))
			sb.WriteString("..")
			sb.WriteString(strconv.Itoa(ev.EndIndex))
		}
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(ev.Text))
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "write paste log")
	}
	return nil
}

// WriteFile writes events to a paste log at path.
func WriteFile(path string, events []paste.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	if err := Format(f, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func stripComments(input string) string {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
