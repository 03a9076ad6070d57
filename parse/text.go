package parse

import (
	"regexp"
	"strings"
)

var (
	overstrikeRe = regexp.MustCompile(".\b")
	ansiRe       = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

	// A page header or footer starts in the first column and ends with the
	// page's name(section) after a gap of two or more spaces.
	headerFooterRe = regexp.MustCompile(`^\S.*\s{2,}[A-Za-z0-9_.:+-]+\(\d[A-Za-z]*\)\s*$`)

	hyphens = strings.NewReplacer("‐", "-", "‑", "-", "−", "-")
)

// CleanRendered prepares the output of a man renderer for segmentation:
// overstrike sequences and terminal escapes are removed, typographic hyphens
// become ASCII, and page headers and footers are dropped.
func CleanRendered(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = overstrikeRe.ReplaceAllString(text, "")
	text = ansiRe.ReplaceAllString(text, "")
	text = hyphens.Replace(text)

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if headerFooterRe.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(out, "\n")
}

// collapseSpace replaces every whitespace run with a single space and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstParagraph returns the lines of text up to the first blank line,
// whitespace-collapsed into one line.
func firstParagraph(text string) string {
	text = strings.TrimLeft(text, "\n")
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = text[:i]
	}
	return collapseSpace(text)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// firstSentence returns s up to and including the first '.', '!' or '?' that
// is followed by whitespace or ends the text. Returns s if there is none.
func firstSentence(s string) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' {
				return s[:i+1]
			}
		}
	}
	return s
}

// stringSet builds a set from words, lowercased.
func stringSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}
