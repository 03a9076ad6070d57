package manparse

import (
	"strconv"
	"strings"
	"unicode"
)

// AssignSectionIDs sets the ID of every section and subsection to a slug of
// its title. Siblings that would share an ID get numeric suffixes.
func AssignSectionIDs(sections []Section) {
	counts := make(map[string]int)

	for i := range sections {
		base := Slugify(sections[i].Title)
		if base == "" {
			base = "section"
		}

		id := base
		if count, exists := counts[base]; exists {
			id = base + "-" + strconv.Itoa(count)
			counts[base]++
		} else {
			counts[base] = 1
		}
		sections[i].ID = id

		AssignSectionIDs(sections[i].Subsections)
	}
}

// Slugify creates a URL-safe identifier from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func Slugify(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
