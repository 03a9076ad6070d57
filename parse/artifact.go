package parse

import (
	"regexp"

	"github.com/fwojciec/manparse"
)

// residualRe matches markup that should never survive normalization:
// directive lines, font changes, named glyphs, string and size escapes.
var residualRe = regexp.MustCompile(`(?m)^[.'][A-Za-z]{1,2}(?:\s|$)|\\f[BIRP(\[]|\\\([a-z]{2}|\\\*[(\[]?[A-Za-z]|\\s[+-]?\d`)

// CheckArtifacts returns EARTIFACT if the prose of any section still contains
// markup. Code blocks are not inspected.
func CheckArtifacts(doc *manparse.Document) error {
	return checkSections(doc.Key(), doc.Sections)
}

func checkSections(key manparse.DocumentKey, sections []manparse.Section) error {
	for _, s := range sections {
		if loc := residualRe.FindStringIndex(s.Content); loc != nil {
			return manparse.Errorf(manparse.EARTIFACT, "%s: residual markup %q in section %q", key, snippet(s.Content, loc[0]), s.Title)
		}
		if err := checkSections(key, s.Subsections); err != nil {
			return err
		}
	}
	return nil
}

func snippet(s string, at int) string {
	end := at + 20
	if end > len(s) {
		end = len(s)
	}
	return s[at:end]
}
