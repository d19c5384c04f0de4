package search

import (
	"fmt"
	"strings"
)

// EmptyResults is the informational notice for a search without matches.
const EmptyResults = "no test cases found"

// Header is the title line above the result cards.
func Header(query string, n int) string {
	return fmt.Sprintf(`Search results: "%s" (%d found)`, query, n)
}

// Span is a run of text that either matches the search term or not.
type Span struct {
	Text  string
	Match bool
}

// Spans splits text into matching and non-matching runs. Matching is
// case-insensitive and covers every non-overlapping occurrence of term.
func Spans(text, term string) []Span {
	needle := []rune(term)
	if len(needle) == 0 {
		return []Span{{Text: text}}
	}

	runes := []rune(text)
	var spans []Span
	plain := 0
	for i := 0; i+len(needle) <= len(runes); {
		if strings.EqualFold(string(runes[i:i+len(needle)]), term) {
			if i > plain {
				spans = append(spans, Span{Text: string(runes[plain:i])})
			}
			spans = append(spans, Span{Text: string(runes[i : i+len(needle)]), Match: true})
			i += len(needle)
			plain = i
			continue
		}
		i++
	}
	if plain < len(runes) || len(spans) == 0 {
		spans = append(spans, Span{Text: string(runes[plain:])})
	}
	return spans
}

// Render joins spans, passing matches through mark and the rest through plain.
// A nil func leaves its runs unchanged.
func Render(spans []Span, plain, mark func(string) string) string {
	var b strings.Builder
	for _, s := range spans {
		f := plain
		if s.Match {
			f = mark
		}
		if f == nil {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(f(s.Text))
	}
	return b.String()
}

// Highlight wraps every case-insensitive occurrence of term in text with mark.
// Text outside the matches is returned unchanged.
func Highlight(text, term string, mark func(string) string) string {
	return Render(Spans(text, term), nil, mark)
}

// Count returns the number of case-insensitive occurrences of term in text.
func Count(text, term string) int {
	n := 0
	for _, s := range Spans(text, term) {
		if s.Match {
			n++
		}
	}
	return n
}
