package parse

import (
	"strings"
	"unicode"

	"github.com/fwojciec/manparse"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSearch folds text to the search alphabet: accents are decomposed
// and dropped, letters lowercased, and everything other than ASCII letters,
// digits, hyphens and whitespace removed. Whitespace runs become one space.
func NormalizeSearch(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// BuildSearchContent flattens a document's text fields into one normalized
// string. Each section contributes its title and at most prefix runes of its
// content.
func BuildSearchContent(doc *manparse.Document, prefix int) string {
	parts := []string{doc.Name, doc.Title, doc.Description, doc.Synopsis}
	parts = append(parts, doc.Keywords...)
	for _, f := range doc.Flags {
		parts = append(parts, f.Flag+" "+f.Description)
	}
	for _, e := range doc.Examples {
		parts = append(parts, e.Command+" "+e.Description)
	}
	for _, s := range doc.Sections {
		parts = append(parts, s.Title+" "+truncateRunes(s.Content, prefix))
	}
	return NormalizeSearch(strings.Join(parts, " "))
}

// Keywords builds document keywords from the rule data it was created with.
type Keywords struct {
	stop   map[string]bool
	minLen int
	max    int
}

// NewKeywords returns a Keywords configured from rules.
func NewKeywords(rules *manparse.Rules) *Keywords {
	return &Keywords{
		stop:   stringSet(rules.StopWords),
		minLen: rules.MinTokenLength,
		max:    rules.MaxKeywords,
	}
}

// Build returns lowercase keywords taken, in order, from the name and its
// parts, the title, the description, the category and the flag names.
// Prose words shorter than the minimum length or in the stop list are skipped.
func (k *Keywords) Build(doc *manparse.Document) []string {
	keywords := []string{}
	seen := make(map[string]bool)

	add := func(w string) {
		if w == "" || seen[w] || (k.max > 0 && len(keywords) >= k.max) {
			return
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	addWords := func(text string) {
		for _, w := range strings.Fields(NormalizeSearch(text)) {
			w = strings.Trim(w, "-")
			if len(w) >= k.minLen && !k.stop[w] {
				add(w)
			}
		}
	}

	name := strings.ToLower(doc.Name)
	add(name)
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == '.' }) {
		if len(part) >= 2 {
			add(part)
		}
	}
	addWords(doc.Title)
	addWords(doc.Description)
	add(strings.ToLower(doc.Category))
	for _, f := range doc.Flags {
		w := strings.ToLower(strings.TrimLeft(f.Flag, "-"))
		if len(w) >= k.minLen {
			add(w)
		}
	}
	return keywords
}
