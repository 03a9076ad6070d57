package troff

import (
	"regexp"
	"strings"

	"github.com/fwojciec/manparse"
)

var versionRe = regexp.MustCompile(`\d+(?:\.\d+)+`)

// ParseHeader recovers metadata from the .TH title line of man pages or the
// .Dd, .Os and .An macros of mdoc pages. Returns nil when the markup carries
// no header information.
func (n *Normalizer) ParseHeader(raw string) *manparse.Metadata {
	var md manparse.Metadata

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, ".") && !strings.HasPrefix(line, "'") {
			continue
		}

		macro, args := splitRequest(stripComment(line))
		switch macro {
		case "TH":
			// .TH title section [date [source [manual]]]
			if len(args) > 2 {
				md.Date = n.Inline(args[2])
			}
			if len(args) > 3 {
				md.Source = n.Inline(args[3])
			}
			if len(args) > 4 {
				md.Manual = n.Inline(args[4])
			}
		case "Dd":
			md.Date = mdocDate(n.Inline(strings.Join(args, " ")))
		case "Os":
			md.Source = n.Inline(strings.Join(args, " "))
		case "Dt":
			if len(args) > 2 && md.Manual == "" {
				md.Manual = n.Inline(args[2])
			}
		case "An":
			if md.Author == "" {
				md.Author = authorName(n, args)
			}
		}
	}

	if md.Version == "" {
		md.Version = versionRe.FindString(md.Source)
	}

	if md == (manparse.Metadata{}) {
		return nil
	}
	return &md
}

// mdocDate strips the $Mdocdate$ keyword wrapper used by OpenBSD pages.
func mdocDate(s string) string {
	s = strings.TrimPrefix(s, "$Mdocdate:")
	s = strings.TrimSuffix(s, "$")
	return strings.TrimSpace(s)
}

// authorName joins .An arguments up to the first mdoc macro, skipping the
// -split and -nosplit switches.
func authorName(n *Normalizer, args []string) string {
	var parts []string
	for _, a := range args {
		if a == "-split" || a == "-nosplit" {
			continue
		}
		if mdocMacros[a] {
			break
		}
		parts = append(parts, n.Inline(a))
	}
	return strings.Join(parts, " ")
}
