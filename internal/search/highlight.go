package search

import (
	"html"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// Highlight splits text into alternating plain and matched fragments.
// Concatenating the fragment texts always yields text. Regex mode marks every
// non-empty, non-overlapping pattern match; the other modes mark literal
// occurrences of query. An invalid pattern falls back to literal marking.
func Highlight(text, query string, mode domain.MatchMode, caseSensitive bool) []domain.Fragment {
	return newMatcher(domain.SearchFilter{
		Text:          query,
		MatchMode:     mode,
		CaseSensitive: caseSensitive,
	}).highlight(text)
}

func (m *matcher) highlight(text string) []domain.Fragment {
	if m.query == "" {
		return []domain.Fragment{{Text: text}}
	}

	var spans [][]int
	if m.mode == domain.MatchModeRegex && m.re != nil {
		for _, loc := range m.re.FindAllStringIndex(text, -1) {
			if loc[1] > loc[0] {
				spans = append(spans, loc)
			}
		}
	} else {
		spans = m.literalSpans(text)
	}

	if len(spans) == 0 {
		return []domain.Fragment{{Text: text}}
	}

	fragments := make([]domain.Fragment, 0, 2*len(spans)+1)
	last := 0
	for _, span := range spans {
		if span[0] > last {
			fragments = append(fragments, domain.Fragment{Text: text[last:span[0]]})
		}
		fragments = append(fragments, domain.Fragment{Text: text[span[0]:span[1]], Matched: true})
		last = span[1]
	}
	if last < len(text) {
		fragments = append(fragments, domain.Fragment{Text: text[last:]})
	}
	return fragments
}

func (m *matcher) literalSpans(text string) [][]int {
	var spans [][]int
	from := 0
	for from < len(text) {
		start, end := m.index(text, from)
		if start < 0 || end == start {
			break
		}
		spans = append(spans, []int{start, end})
		from = end
	}
	return spans
}

// Join concatenates fragment texts
func Join(fragments []domain.Fragment) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Mark renders fragments as HTML with matched spans wrapped in <mark>
func Mark(fragments []domain.Fragment) string {
	var b strings.Builder
	for _, f := range fragments {
		if f.Matched {
			b.WriteString("<mark>")
			b.WriteString(html.EscapeString(f.Text))
			b.WriteString("</mark>")
			continue
		}
		b.WriteString(html.EscapeString(f.Text))
	}
	return b.String()
}
