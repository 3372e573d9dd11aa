package index

import (
	"strconv"
	"strings"
)

// Compares two version strings, returning a negative, zero, or positive
// result.
//
// Versions are split into dot-separated components, each of which is
// tokenized into alternating numeric and alphabetic runs. Numeric runs
// compare numerically, alphabetic runs lexically, and an alphabetic run
// sorts before the absence of one so that pre-releases order below their
// release ("2.0a0" < "2.0"). Underscores and hyphens are treated as dots.
func compareVersions(a, b string) int {
	as := splitComponents(a)
	bs := splitComponents(b)

	for i := 0; i < len(as) || i < len(bs); i++ {
		var ac, bc string
		if i < len(as) {
			ac = as[i]
		}
		if i < len(bs) {
			bc = bs[i]
		}
		if c := compareComponent(ac, bc); c != 0 {
			return c
		}
	}
	return 0
}

func splitComponents(version string) []string {
	return strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
}

// A component token: either a number or a letter run.
type token struct {
	num   int
	text  string
	isNum bool
}

func tokenize(component string) []token {
	var tokens []token
	for component != "" {
		isDigit := component[0] >= '0' && component[0] <= '9'
		i := 0
		for i < len(component) && (component[i] >= '0' && component[i] <= '9') == isDigit {
			i++
		}
		run := component[:i]
		component = component[i:]
		if isDigit {
			n, _ := strconv.Atoi(run)
			tokens = append(tokens, token{num: n, isNum: true})
		} else {
			tokens = append(tokens, token{text: run})
		}
	}
	return tokens
}

func compareComponent(a, b string) int {
	at := tokenize(a)
	bt := tokenize(b)

	for i := 0; i < len(at) || i < len(bt); i++ {
		switch {
		case i >= len(at):
			// A ran out: a trailing letter run on B marks a pre-release.
			if !bt[i].isNum {
				return 1
			}
			if bt[i].num != 0 {
				return -1
			}
		case i >= len(bt):
			if !at[i].isNum {
				return -1
			}
			if at[i].num != 0 {
				return 1
			}
		case at[i].isNum != bt[i].isNum:
			// Numbers sort above letters at the same position.
			if at[i].isNum {
				return 1
			}
			return -1
		case at[i].isNum:
			if at[i].num != bt[i].num {
				if at[i].num < bt[i].num {
					return -1
				}
				return 1
			}
		default:
			if c := strings.Compare(at[i].text, bt[i].text); c != 0 {
				return c
			}
		}
	}
	return 0
}
