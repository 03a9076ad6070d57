package manparse

import (
	"sort"
	"strings"
)

// Index holds lookup tables derived from a set of documents. Values are
// document keys in name.section form, sorted.
type Index struct {
	Words      map[string][]string     `json:"words"`
	Categories map[string][]string     `json:"categories"`
	Complexity map[Complexity][]string `json:"complexity"`
}

// BuildIndex derives the word, category and complexity indexes from docs.
// Words are the distinct search-content tokens of at least two characters.
func BuildIndex(docs []*Document) *Index {
	idx := &Index{
		Words:      make(map[string][]string),
		Categories: make(map[string][]string),
		Complexity: make(map[Complexity][]string),
	}

	for _, doc := range docs {
		key := doc.Key().String()

		seen := make(map[string]bool)
		for _, word := range strings.Fields(doc.SearchContent) {
			if len(word) < 2 || seen[word] {
				continue
			}
			seen[word] = true
			idx.Words[word] = append(idx.Words[word], key)
		}

		if doc.Category != "" {
			idx.Categories[doc.Category] = append(idx.Categories[doc.Category], key)
		}
		if doc.Complexity != "" {
			idx.Complexity[doc.Complexity] = append(idx.Complexity[doc.Complexity], key)
		}
	}

	for _, keys := range idx.Words {
		sort.Strings(keys)
	}
	for _, keys := range idx.Categories {
		sort.Strings(keys)
	}
	for _, keys := range idx.Complexity {
		sort.Strings(keys)
	}

	return idx
}
