package parser

import (
	"regexp"
	"strings"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\]]*?)\]\]`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldAltRe  = regexp.MustCompile(`__(.*?)__`)
	italicRe   = regexp.MustCompile(`\*(.*?)\*`)
	strikeRe   = regexp.MustCompile(`~~(.*?)~~`)
	codeRe     = regexp.MustCompile("`([^`]*)`")
	headingRe  = regexp.MustCompile(`(?m)^\s*#{1,6}\s+`)
)

// Sanitize joins content lines and strips markdown syntax: emphasis
// markers are removed, links keep only their display text, headings keep
// only their text. Block-quote markers are already gone by this point.
func Sanitize(lines []string) string {
	s := strings.Join(lines, "\n")

	s = wikilinkRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := wikilinkRe.FindStringSubmatch(m)[1]
		// [[Target|Alias]] renders its alias.
		if i := strings.Index(inner, "|"); i >= 0 {
			return inner[i+1:]
		}
		return inner
	})
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = boldRe.ReplaceAllString(s, "$1")
	s = boldAltRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = strikeRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")

	// Collapse runs of blank lines left over from stripped markup.
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

// WordCount returns the number of whitespace-delimited tokens. It is
// always recomputed from sanitized content, never taken from input.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
