package troff

import "strings"

// mdocMacros are the mdoc macros that produce inline text. Parsed macros may
// appear as arguments of other macros.
var mdocMacros = map[string]bool{
	"Ar": true, "Cm": true, "Dv": true, "Em": true, "Er": true, "Ev": true,
	"Fa": true, "Fl": true, "Fn": true, "Ft": true, "Ic": true, "Li": true,
	"Nm": true, "No": true, "Ns": true, "Op": true, "Oo": true, "Oc": true,
	"Pa": true, "Pq": true, "Ql": true, "Dq": true, "Do": true, "Dc": true,
	"Qq": true, "Sq": true, "Sy": true, "Va": true, "Xr": true, "Cd": true,
	"Lk": true, "Mt": true, "Aq": true, "Bq": true, "Brq": true, "Tn": true,
	"Ux": true, "St": true, "Lb": true, "In": true, "Fd": true, "An": true,
	"Ad": true, "Ms": true, "Sx": true,
}

// closing punctuation attaches to the preceding word.
func isClosingPunct(s string) bool {
	switch s {
	case ".", ",", ";", ":", ")", "]", "?", "!":
		return true
	}
	return false
}

// mdoc renders a line of mdoc macros and words as plain text, for example
// "Op Fl a Ar file" becomes "[-a file]".
func (st *state) mdoc(tokens []string) string {
	var words []string
	noSpace := false

	add := func(w string) {
		if w == "" {
			return
		}
		if len(words) > 0 && (noSpace || isClosingPunct(w)) {
			words[len(words)-1] += w
		} else {
			words = append(words, w)
		}
		noSpace = false
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		next := func() (string, bool) {
			if i+1 < len(tokens) && !mdocMacros[tokens[i+1]] {
				i++
				return st.n.inline(tokens[i]), true
			}
			return "", false
		}

		switch tok {
		case "Fl":
			w, ok := next()
			if !ok {
				add("-")
				continue
			}
			if isClosingPunct(w) {
				add("-")
				add(w)
				continue
			}
			add("-" + w)
		case "Nm":
			if w, ok := next(); ok {
				add(w)
			} else {
				add(st.name)
			}
		case "Xr":
			name, ok := next()
			if !ok {
				continue
			}
			if sec, ok := next(); ok && !isClosingPunct(sec) {
				add(name + "(" + sec + ")")
			} else {
				add(name)
				if ok {
					add(sec)
				}
			}
		case "Op":
			add("[" + st.mdoc(tokens[i+1:]) + "]")
			return strings.Join(words, " ")
		case "Pq":
			add("(" + st.mdoc(tokens[i+1:]) + ")")
			return strings.Join(words, " ")
		case "Dq", "Qq":
			add(`"` + st.mdoc(tokens[i+1:]) + `"`)
			return strings.Join(words, " ")
		case "Sq", "Ql":
			add("'" + st.mdoc(tokens[i+1:]) + "'")
			return strings.Join(words, " ")
		case "Aq":
			add("<" + st.mdoc(tokens[i+1:]) + ">")
			return strings.Join(words, " ")
		case "Oo":
			add("[")
			noSpace = true
		case "Oc":
			if len(words) > 0 {
				words[len(words)-1] += "]"
			} else {
				add("]")
			}
		case "Do":
			add(`"`)
			noSpace = true
		case "Dc":
			if len(words) > 0 {
				words[len(words)-1] += `"`
			}
		case "Ns":
			noSpace = true
		case "Ux":
			add("UNIX")
		default:
			if mdocMacros[tok] {
				// Font and semantic markers only change presentation.
				continue
			}
			add(st.n.inline(tok))
		}
	}

	return strings.Join(words, " ")
}
