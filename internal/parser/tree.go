package parser

import (
	"fmt"

	"github.com/holmgren/dagaz/internal/models"
)

// BuildTree assembles the token stream into a forest of callout nodes.
// Nesting is driven purely by block-quote depth: a callout closes when a
// new block opens at the same or a shallower depth, or at end of input.
// Structural anomalies (depth jumps, orphan content) are reported as
// diagnostics, never as failures.
func BuildTree(tokens []models.Token) ([]*models.CalloutNode, []models.Diagnostic) {
	var (
		forest []*models.CalloutNode
		stack  []*models.CalloutNode
		diags  []models.Diagnostic
		orphan *models.CalloutNode
	)

	closeTo := func(depth, line int) {
		for len(stack) > 0 && stack[len(stack)-1].Depth >= depth {
			stack[len(stack)-1].EndLine = line
			stack = stack[:len(stack)-1]
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case models.TokenBlockOpen:
			closeTo(tok.Depth, tok.LineNumber-1)
			node := &models.CalloutNode{
				Type:      tok.CalloutType,
				Title:     tok.CalloutTitle,
				Depth:     tok.Depth,
				StartLine: tok.LineNumber,
				EndLine:   tok.LineNumber,
			}
			if len(stack) == 0 {
				if tok.Depth > 1 {
					diags = append(diags, depthJump(tok, nil))
				}
				forest = append(forest, node)
			} else {
				parent := stack[len(stack)-1]
				if tok.Depth > parent.Depth+1 {
					diags = append(diags, depthJump(tok, stack))
				}
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case models.TokenMetricsLine:
			if len(stack) == 0 {
				if orphan == nil {
					diags = append(diags, orphanContent(tok))
				}
				appendOrphan(&orphan, &forest, tok)
				continue
			}
			top := stack[len(stack)-1]
			if top.MetricsRaw != "" {
				top.MetricsRaw += "\n"
			}
			top.MetricsRaw += tok.RawText
			top.EndLine = tok.LineNumber

		case models.TokenPlainText:
			if len(stack) == 0 {
				if orphan == nil {
					diags = append(diags, orphanContent(tok))
				}
				appendOrphan(&orphan, &forest, tok)
				continue
			}
			top := stack[len(stack)-1]
			top.ContentLines = append(top.ContentLines, tok.RawText)
			top.EndLine = tok.LineNumber

		case models.TokenBlankLine:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if len(top.ContentLines) > 0 {
				top.ContentLines = append(top.ContentLines, "")
			}
		}
	}

	if len(tokens) > 0 {
		closeTo(0, tokens[len(tokens)-1].LineNumber)
	}
	return forest, diags
}

// appendOrphan buffers content that appears before any callout opens.
// The synthetic untyped node keeps the content reachable instead of
// dropping it.
func appendOrphan(orphan **models.CalloutNode, forest *[]*models.CalloutNode, tok models.Token) {
	if *orphan == nil {
		*orphan = &models.CalloutNode{StartLine: tok.LineNumber}
		*forest = append(*forest, *orphan)
	}
	(*orphan).ContentLines = append((*orphan).ContentLines, tok.RawText)
	(*orphan).EndLine = tok.LineNumber
}

func orphanContent(tok models.Token) models.Diagnostic {
	return models.Diagnostic{
		Severity:   models.SeverityInfo,
		Code:       models.CodeOrphanContent,
		Message:    "content found outside any callout; kept on a synthetic node",
		LineNumber: tok.LineNumber,
	}
}

func depthJump(tok models.Token, stack []*models.CalloutNode) models.Diagnostic {
	path := make([]string, 0, len(stack)+1)
	for _, n := range stack {
		path = append(path, n.Type)
	}
	path = append(path, tok.CalloutType)
	parentDepth := 0
	if len(stack) > 0 {
		parentDepth = stack[len(stack)-1].Depth
	}
	return models.Diagnostic{
		Severity:    models.SeverityWarning,
		Code:        models.CodeDepthJump,
		Message:     fmt.Sprintf("callout %q at depth %d jumps past its parent at depth %d; attached to nearest ancestor", tok.CalloutType, tok.Depth, parentDepth),
		LineNumber:  tok.LineNumber,
		CalloutPath: path,
	}
}
