// Package lint validates callout trees against configured journal
// structures. The validator never mutates the tree and never blocks
// entry assembly; it only produces diagnostics.
package lint

import (
	"fmt"
	"strings"

	"github.com/holmgren/dagaz/internal/models"
)

// Evaluate checks the forest against one structure. Every candidate root
// is evaluated independently through the full requirement set; a failed
// check records a diagnostic and evaluation continues, so one pass
// surfaces everything.
func Evaluate(forest []*models.CalloutNode, st models.JournalStructure) []models.Diagnostic {
	var diags []models.Diagnostic

	// ExpectingRoot: at least one anchor callout must exist.
	anchors := models.Anchors(forest, st)
	if len(anchors) == 0 {
		return append(diags, models.Diagnostic{
			Severity: models.SeverityError,
			Code:     models.CodeMissingRequiredCallout,
			Message:  fmt.Sprintf("structure %q: no %q callout found", st.ID, st.AnchorType()),
		})
	}

	vocab := st.Vocabulary()
	for _, anchor := range anchors {
		span := models.SpanOf(forest, anchor, st)

		// ExpectingRequiredChildren: unknown callout types in the span
		// are tolerated but flagged.
		for _, node := range span {
			node.Walk(func(n *models.CalloutNode) {
				if n == anchor || n.Type == "" {
					return
				}
				if !vocab[strings.ToLower(n.Type)] {
					diags = append(diags, models.Diagnostic{
						Severity:    models.SeverityWarning,
						Code:        models.CodeUnexpectedCallout,
						Message:     fmt.Sprintf("structure %q: unexpected callout type %q", st.ID, n.Type),
						LineNumber:  n.StartLine,
						CalloutPath: []string{anchor.Type, n.Type},
					})
				}
			})
		}

		// ExpectingMetrics, then Satisfied: every required field must be
		// locatable in the span.
		for _, field := range st.RequiredFields {
			if d := checkRequired(anchor, span, st, field); d != nil {
				diags = append(diags, *d)
			}
		}
	}
	return diags
}

// checkRequired verifies one required field against an entry span.
// Fields name either a built-in ("date", "title", "metrics"), a callout
// type, or a metric name expected inside the metrics callout.
func checkRequired(anchor *models.CalloutNode, span []*models.CalloutNode, st models.JournalStructure, field string) *models.Diagnostic {
	missing := func(code models.DiagnosticCode, msg string) *models.Diagnostic {
		return &models.Diagnostic{
			Severity:    models.SeverityError,
			Code:        code,
			Message:     fmt.Sprintf("structure %q: %s", st.ID, msg),
			LineNumber:  anchor.StartLine,
			CalloutPath: []string{anchor.Type},
		}
	}

	switch strings.ToLower(field) {
	case "date":
		if !spanHasDate(span, st) {
			return missing(models.CodeMissingRequiredField, "required date not found in any callout title")
		}
	case "title":
		if !spanHasTitle(span) {
			return missing(models.CodeMissingRequiredField, "required title is empty")
		}
	case "metrics", strings.ToLower(st.MetricsCallout):
		if metricsNodeOf(anchor, span, st) == nil {
			return missing(models.CodeMissingRequiredCallout, fmt.Sprintf("required %q callout not found", st.MetricsCallout))
		}
	default:
		if isCalloutField(st, field) {
			if anchor.IsType(field) {
				return nil
			}
			if models.FindInSpan(span, field) == nil {
				return missing(models.CodeMissingRequiredCallout, fmt.Sprintf("required %q callout not found", field))
			}
			return nil
		}
		// A metric name: it must appear in the metrics callout body.
		node := metricsNodeOf(anchor, span, st)
		if node == nil || !strings.Contains(strings.ToLower(node.MetricsRaw), strings.ToLower(field)) {
			return missing(models.CodeMissingRequiredField, fmt.Sprintf("required metric %q not found", field))
		}
	}
	return nil
}

func isCalloutField(st models.JournalStructure, field string) bool {
	if strings.EqualFold(field, st.RootCallout) || strings.EqualFold(field, st.ContentCallout) {
		return true
	}
	for _, c := range st.ChildCallouts {
		if strings.EqualFold(field, c) {
			return true
		}
	}
	return false
}

func metricsNodeOf(anchor *models.CalloutNode, span []*models.CalloutNode, st models.JournalStructure) *models.CalloutNode {
	if anchor.IsType(st.MetricsCallout) {
		return anchor
	}
	return models.FindInSpan(span, st.MetricsCallout)
}

func spanHasDate(span []*models.CalloutNode, st models.JournalStructure) bool {
	layouts := st.Layouts()
	found := false
	for _, node := range span {
		node.Walk(func(n *models.CalloutNode) {
			if !found {
				if _, ok := models.ExtractDate(n.Title, layouts); ok {
					found = true
				}
			}
		})
	}
	return found
}

func spanHasTitle(span []*models.CalloutNode) bool {
	found := false
	for _, node := range span {
		node.Walk(func(n *models.CalloutNode) {
			if n.Title != "" {
				found = true
			}
		})
	}
	return found
}

// Score weighs a diagnostic set for structure matching: errors count
// double.
func Score(diags []models.Diagnostic) int {
	errs, warns := models.CountBySeverity(diags)
	return 2*errs + warns
}

// BestMatch evaluates every configured structure and returns the
// best-scoring one together with its diagnostics. Ties break toward
// declaration order. Alternatives considered are surfaced as Info
// diagnostics so callers can see what else was tried.
func BestMatch(forest []*models.CalloutNode, structures []models.JournalStructure) (models.JournalStructure, []models.Diagnostic) {
	if len(structures) == 0 {
		structures = models.DefaultStructures()
	}

	type candidate struct {
		st    models.JournalStructure
		diags []models.Diagnostic
		score int
	}
	candidates := make([]candidate, 0, len(structures))
	bestIdx := 0
	for i, st := range structures {
		d := Evaluate(forest, st)
		c := candidate{st: st, diags: d, score: Score(d)}
		candidates = append(candidates, c)
		if c.score < candidates[bestIdx].score {
			bestIdx = i
		}
	}

	best := candidates[bestIdx]
	out := append([]models.Diagnostic{}, best.diags...)
	for i, c := range candidates {
		if i == bestIdx {
			continue
		}
		errs, warns := models.CountBySeverity(c.diags)
		out = append(out, models.Diagnostic{
			Severity: models.SeverityInfo,
			Code:     models.CodeAlternativeStructure,
			Message:  fmt.Sprintf("structure %q also considered: score %d (%d errors, %d warnings)", c.st.ID, c.score, errs, warns),
		})
	}
	return best.st, out
}
