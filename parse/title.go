package parse

import (
	"regexp"
	"strings"
)

var (
	nameLineRe  = regexp.MustCompile(`^\s*(.+?)\s+[-–—]+\s+(.+)$`)
	fontLeftRe  = regexp.MustCompile(`\\f(?:\[[^\]]*\]|\(..|.)`)
	writtenByRe = regexp.MustCompile(`(?i)^written\s+by\s+`)
)

// ExtractTitle returns the one-line summary from the NAME section, the text
// after the dash in "name - summary". Falls back to "<name> manual page".
func ExtractTitle(p *Page, name string) string {
	line := firstParagraph(p.Body("NAME"))
	if m := nameLineRe.FindStringSubmatch(line); m != nil {
		if title := strings.TrimSpace(m[2]); title != "" {
			return title
		}
	}
	return name + " manual page"
}

// ExtractDescription returns the first sentence of the DESCRIPTION section,
// searching at most max runes. Returns "" when the page has no description.
func ExtractDescription(p *Page, max int) string {
	body := collapseSpace(p.Body("DESCRIPTION"))
	return firstSentence(truncateRunes(body, max))
}

// ExtractSynopsis returns the SYNOPSIS (or SYNTAX) section body on one line
// with any font-change escapes removed.
func ExtractSynopsis(p *Page) string {
	body := p.Body("SYNOPSIS", "SYNTAX")
	return collapseSpace(fontLeftRe.ReplaceAllString(body, ""))
}

// ExtractAuthor returns the first paragraph of the AUTHOR or AUTHORS section
// without a leading "Written by" or trailing period.
func ExtractAuthor(p *Page) string {
	para := firstParagraph(p.Body("AUTHOR", "AUTHORS"))
	para = writtenByRe.ReplaceAllString(para, "")
	return strings.TrimSuffix(para, ".")
}
