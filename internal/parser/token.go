package parser

import (
	"regexp"
	"strings"

	"github.com/holmgren/dagaz/internal/models"
)

var (
	calloutOpenRe = regexp.MustCompile(`^\[!\s*([A-Za-z0-9][A-Za-z0-9_/-]*)\s*\]\s*(.*)$`)
	metricPairRe  = regexp.MustCompile(`[^:,\s][^:,]*:\s*\S`)
)

// openBlock tracks a lexically open callout so the tokenizer can tell
// metrics lines apart from plain content.
type openBlock struct {
	depth       int
	metricsType bool
}

// Tokenize classifies each line of text into a token. metricsTypes is
// the lowercased set of callout types whose bodies hold metric pairs.
// Tokenization never fails; malformed lines degrade to plain text.
func Tokenize(text string, metricsTypes map[string]bool) []models.Token {
	lines := strings.Split(text, "\n")
	tokens := make([]models.Token, 0, len(lines))
	var open []openBlock

	for i, line := range lines {
		depth, rest := stripQuoteMarkers(line)
		trimmed := strings.TrimSpace(rest)
		tok := models.Token{Depth: depth, RawText: trimmed, LineNumber: i + 1}

		switch {
		case trimmed == "":
			tok.Kind = models.TokenBlankLine

		case calloutOpenRe.MatchString(trimmed):
			m := calloutOpenRe.FindStringSubmatch(trimmed)
			tok.Kind = models.TokenBlockOpen
			tok.CalloutType = strings.ToLower(m[1])
			tok.CalloutTitle = strings.TrimSpace(m[2])
			// A new block closes anything at the same or deeper level.
			for len(open) > 0 && open[len(open)-1].depth >= depth {
				open = open[:len(open)-1]
			}
			open = append(open, openBlock{depth: depth, metricsType: metricsTypes[tok.CalloutType]})

		case insideMetrics(open, depth) && metricPairRe.MatchString(trimmed):
			tok.Kind = models.TokenMetricsLine

		default:
			tok.Kind = models.TokenPlainText
		}

		tokens = append(tokens, tok)
	}
	return tokens
}

// insideMetrics reports whether a line at the given depth falls inside
// an open metrics callout.
func insideMetrics(open []openBlock, depth int) bool {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i].depth <= depth {
			return open[i].metricsType
		}
	}
	return false
}

// stripQuoteMarkers counts leading block-quote markers and returns the
// remaining text. Tabs and spaces between markers are normalized away so
// mixed indentation yields a single depth unit per marker.
func stripQuoteMarkers(line string) (int, string) {
	depth := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case '>':
			depth++
			i++
		case ' ', '\t':
			i++
		default:
			return depth, line[i:]
		}
	}
	return depth, ""
}
