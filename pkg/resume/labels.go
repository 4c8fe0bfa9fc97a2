package resume

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// DefaultStopKeywords end the header when a paragraph reads as a heading for one.
	DefaultStopKeywords = []string{"experience", "education", "skills"}
	// DefaultSectionTitles mark a rewritten line as a section title when it starts with one.
	DefaultSectionTitles = []string{"experience", "education", "skills", "summary", "objective"}
)

// fold lowercases s for label matching. A cases.Caser holds transform
// state and is not safe for concurrent use, so each call builds its own.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Labels is a set of recognized section words, stored case-folded.
type Labels struct {
	words []string
}

// NewLabels builds a label set. Blank entries are dropped.
func NewLabels(words ...string) Labels {
	l := Labels{words: make([]string, 0, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		l.words = append(l.words, fold(w))
	}
	return l
}

// Words returns the folded labels in order.
func (l Labels) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Empty reports whether the set has no labels.
func (l Labels) Empty() bool {
	return len(l.words) == 0
}

// FoundIn reports whether any label occurs anywhere in text.
func (l Labels) FoundIn(text string) bool {
	t := fold(text)
	for _, w := range l.words {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// Prefixes reports whether text starts with any label.
func (l Labels) Prefixes(text string) bool {
	t := fold(text)
	for _, w := range l.words {
		if strings.HasPrefix(t, w) {
			return true
		}
	}
	return false
}
