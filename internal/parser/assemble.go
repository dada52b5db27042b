package parser

import (
	"fmt"

	"github.com/holmgren/dagaz/internal/models"
)

const titleFallbackLimit = 60

// AssembleEntries walks the forest and materializes one DreamEntry per
// anchor callout occurrence. Missing pieces degrade to documented
// fallbacks with diagnostics; a bad entry never aborts the batch.
func AssembleEntries(forest []*models.CalloutNode, file string, st models.JournalStructure) ([]models.DreamEntry, []models.Diagnostic) {
	anchors := models.Anchors(forest, st)
	var (
		entries []models.DreamEntry
		diags   []models.Diagnostic
	)

	for i, anchor := range anchors {
		span := models.SpanOf(forest, anchor, st)
		source := models.Source{File: file}
		if len(anchors) > 1 {
			source.ID = fmt.Sprintf("entry-%d", i+1)
		}

		date, dateDiag := resolveDate(anchor, span, st)
		if dateDiag != nil {
			diags = append(diags, *dateDiag)
		}

		lines, contributors := collectContent(anchor, span, st)
		content := Sanitize(lines)

		metrics := map[string]models.MetricValue{}
		metricsNode := anchor
		if !anchor.IsType(st.MetricsCallout) {
			metricsNode = models.FindInSpan(span, st.MetricsCallout)
		}
		if metricsNode == nil {
			diags = append(diags, models.Diagnostic{
				Severity:    models.SeverityWarning,
				Code:        models.CodeNoMetricsFound,
				Message:     fmt.Sprintf("no %q callout found for entry %s", st.MetricsCallout, source),
				LineNumber:  anchor.StartLine,
				CalloutPath: []string{anchor.Type},
			})
		} else {
			var mdiags []models.Diagnostic
			metrics, mdiags = ExtractMetrics(metricsNode.MetricsRaw, st,
				[]string{anchor.Type, metricsNode.Type}, metricsNode.StartLine)
			diags = append(diags, mdiags...)
			if metricsNode != anchor {
				contributors = append(contributors, metricsNode)
			}
		}

		entries = append(entries, models.DreamEntry{
			Date:            date,
			Title:           resolveTitle(anchor, span, content),
			Content:         content,
			WordCount:       WordCount(content),
			Metrics:         metrics,
			Source:          source,
			CalloutMetadata: calloutRefs(anchor, contributors),
		})
	}
	return entries, diags
}

// resolveDate searches the anchor title first, then every other title in
// the span, and falls back to a placeholder with an error diagnostic so
// extraction still proceeds.
func resolveDate(anchor *models.CalloutNode, span []*models.CalloutNode, st models.JournalStructure) (string, *models.Diagnostic) {
	layouts := st.Layouts()
	if date, ok := models.ExtractDate(anchor.Title, layouts); ok {
		return date, nil
	}
	for _, node := range span {
		var date string
		node.Walk(func(n *models.CalloutNode) {
			if date == "" && n != anchor {
				if d, ok := models.ExtractDate(n.Title, layouts); ok {
					date = d
				}
			}
		})
		if date != "" {
			return date, nil
		}
	}
	return "unknown", &models.Diagnostic{
		Severity:    models.SeverityError,
		Code:        models.CodeMissingDate,
		Message:     fmt.Sprintf("no date matching configured formats found for %q entry", anchor.Type),
		LineNumber:  anchor.StartLine,
		CalloutPath: []string{anchor.Type},
	}
}

// resolveTitle picks the first non-empty of: anchor title, nearest child
// title, first line of content truncated to a bounded length.
func resolveTitle(anchor *models.CalloutNode, span []*models.CalloutNode, content string) string {
	if anchor.Title != "" {
		return anchor.Title
	}
	for _, node := range span {
		var title string
		node.Walk(func(n *models.CalloutNode) {
			if title == "" && n != anchor && n.Title != "" {
				title = n.Title
			}
		})
		if title != "" {
			return title
		}
	}
	for _, line := range splitFirstLine(content) {
		runes := []rune(line)
		if len(runes) > titleFallbackLimit {
			return string(runes[:titleFallbackLimit])
		}
		return line
	}
	return ""
}

func splitFirstLine(content string) []string {
	for _, line := range splitLines(content) {
		if line != "" {
			return []string{line}
		}
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// collectContent gathers the anchor's own content plus the content of
// the designated content callout. Scope controls whether only direct
// children count or any descendant in the span.
func collectContent(anchor *models.CalloutNode, span []*models.CalloutNode, st models.JournalStructure) ([]string, []*models.CalloutNode) {
	lines := append([]string{}, anchor.ContentLines...)
	var contributors []*models.CalloutNode
	if st.ContentCallout == "" {
		return lines, contributors
	}

	appendNode := func(n *models.CalloutNode) {
		lines = append(lines, n.ContentLines...)
		contributors = append(contributors, n)
	}

	switch st.Scope() {
	case models.ContentScopeDeep:
		for _, node := range span {
			node.Walk(func(n *models.CalloutNode) {
				if n != anchor && n.IsType(st.ContentCallout) {
					appendNode(n)
				}
			})
		}
	default:
		for _, c := range anchor.Children {
			if c.IsType(st.ContentCallout) {
				appendNode(c)
			}
		}
		for _, sib := range span[1:] {
			if sib.IsType(st.ContentCallout) {
				appendNode(sib)
			}
		}
	}
	return lines, contributors
}

// calloutRefs records which callouts contributed to an entry, in
// document order, keyed by a stable type-line identifier.
func calloutRefs(anchor *models.CalloutNode, contributors []*models.CalloutNode) []models.CalloutRef {
	refs := []models.CalloutRef{refOf(anchor)}
	seen := map[string]bool{refOf(anchor).ID: true}
	for _, n := range contributors {
		r := refOf(n)
		if !seen[r.ID] {
			seen[r.ID] = true
			refs = append(refs, r)
		}
	}
	return refs
}

func refOf(n *models.CalloutNode) models.CalloutRef {
	return models.CalloutRef{Type: n.Type, ID: fmt.Sprintf("%s-%d", n.Type, n.StartLine)}
}
