package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// matcher holds the per-filter state shared by every record of one pass.
// re is nil when the mode is not regex or the pattern does not compile.
type matcher struct {
	mode          domain.MatchMode
	query         string
	caseSensitive bool
	re            *regexp.Regexp
}

func newMatcher(filter domain.SearchFilter) *matcher {
	m := &matcher{
		mode:          filter.MatchMode,
		query:         filter.Text,
		caseSensitive: filter.CaseSensitive,
	}
	if m.mode == domain.MatchModeRegex {
		m.re = compilePattern(filter.Text, filter.CaseSensitive)
	}
	return m
}

func compilePattern(pattern string, caseSensitive bool) *regexp.Regexp {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// score reports whether candidate matches and with which score
func (m *matcher) score(candidate string) (bool, float64) {
	switch m.mode {
	case domain.MatchModeExact:
		if m.contains(candidate) {
			return true, 1
		}
		return false, 0
	case domain.MatchModeFuzzy:
		s := FuzzyScore(m.query, candidate)
		return s > FuzzyThreshold, s
	case domain.MatchModeRegex:
		if m.re != nil && m.re.MatchString(candidate) {
			return true, 1
		}
		return false, 0
	}
	return false, 0
}

func (m *matcher) contains(s string) bool {
	if m.caseSensitive {
		return strings.Contains(s, m.query)
	}
	start, _ := indexFold(s, m.query, 0)
	return start >= 0
}

// indexFold finds the first case-insensitive occurrence of substr in s at or
// after byte offset from. It returns byte offsets into s, so spans stay valid
// even when case mapping changes encoded lengths.
func indexFold(s, substr string, from int) (int, int) {
	if substr == "" {
		return from, from
	}
	n := utf8.RuneCountInString(substr)
	for i := from; i < len(s); {
		j, count := i, 0
		for j < len(s) && count < n {
			_, w := utf8.DecodeRuneInString(s[j:])
			j += w
			count++
		}
		if count < n {
			return -1, -1
		}
		if equalFold(s[i:j], substr) {
			return i, j
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return -1, -1
}

// equalFold is strings.EqualFold except that an invalid UTF-8 byte only
// equals the same raw byte, never U+FFFD or another invalid byte.
func equalFold(a, b string) bool {
	for a != "" && b != "" {
		ra, wa := utf8.DecodeRuneInString(a)
		rb, wb := utf8.DecodeRuneInString(b)
		if (ra == utf8.RuneError && wa == 1) || (rb == utf8.RuneError && wb == 1) {
			if wa != wb || a[0] != b[0] {
				return false
			}
		} else if !strings.EqualFold(a[:wa], b[:wb]) {
			return false
		}
		a, b = a[wa:], b[wb:]
	}
	return a == b
}

func (m *matcher) index(s string, from int) (int, int) {
	if m.caseSensitive {
		idx := strings.Index(s[from:], m.query)
		if idx < 0 {
			return -1, -1
		}
		return from + idx, from + idx + len(m.query)
	}
	return indexFold(s, m.query, from)
}
