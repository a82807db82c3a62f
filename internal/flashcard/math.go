package flashcard

import (
	"regexp"
	"strings"
)

var (
	blockMath  = regexp.MustCompile(`(?s)\\\[(.+?)\\\]`)
	inlineMath = regexp.MustCompile(`(?s)\\\((.+?)\\\)`)
)

// NormalizeMath rewrites LaTeX \( \) and \[ \] delimiters to $ $ and $$ $$.
// Everything else is left untouched.
func NormalizeMath(s string) string {
	if !strings.Contains(s, `\[`) && !strings.Contains(s, `\(`) {
		return s
	}
	s = blockMath.ReplaceAllStringFunc(s, func(m string) string {
		return "$$" + blockMath.FindStringSubmatch(m)[1] + "$$"
	})
	return inlineMath.ReplaceAllStringFunc(s, func(m string) string {
		return "$" + inlineMath.FindStringSubmatch(m)[1] + "$"
	})
}
