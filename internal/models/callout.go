package models

import (
	"strings"
	"time"
)

// IsType reports whether the node has the given callout type,
// case-insensitively.
func (n *CalloutNode) IsType(t string) bool {
	return t != "" && strings.EqualFold(n.Type, t)
}

// Walk visits n and all of its descendants in document order.
func (n *CalloutNode) Walk(fn func(*CalloutNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// AnchorType returns the callout type that anchors one entry for the
// given structure: the root callout, or the metrics callout for flat
// structures with no root configured.
func (s JournalStructure) AnchorType() string {
	if s.RootCallout != "" {
		return s.RootCallout
	}
	return s.MetricsCallout
}

// Anchors returns every node in the forest whose type matches the
// structure's anchor type, in document order.
func Anchors(forest []*CalloutNode, s JournalStructure) []*CalloutNode {
	anchor := s.AnchorType()
	var out []*CalloutNode
	for _, top := range forest {
		top.Walk(func(n *CalloutNode) {
			if n.IsType(anchor) {
				out = append(out, n)
			}
		})
	}
	return out
}

// SpanOf returns the nodes that belong to one entry: the anchor itself
// followed by its later siblings up to (not including) the next anchor
// occurrence. Journals commonly place the metrics callout at the same
// quote depth as the entry callout rather than nesting it, so the span
// is the unit the assembler and validator both search.
func SpanOf(forest []*CalloutNode, anchor *CalloutNode, s JournalStructure) []*CalloutNode {
	siblings := siblingListOf(forest, anchor)
	if siblings == nil {
		return []*CalloutNode{anchor}
	}
	span := []*CalloutNode{anchor}
	seen := false
	for _, n := range siblings {
		if n == anchor {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		if n.IsType(s.AnchorType()) {
			break
		}
		span = append(span, n)
	}
	return span
}

// FindInSpan locates the nearest node of the given type within a span:
// direct children of the anchor first, then deeper descendants, then the
// trailing sibling nodes and their descendants.
func FindInSpan(span []*CalloutNode, typ string) *CalloutNode {
	if len(span) == 0 || typ == "" {
		return nil
	}
	// Breadth-first over the anchor's subtree.
	queue := append([]*CalloutNode{}, span[0].Children...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.IsType(typ) {
			return n
		}
		queue = append(queue, n.Children...)
	}
	// Then the rest of the span.
	for _, sib := range span[1:] {
		if sib.IsType(typ) {
			return sib
		}
		var found *CalloutNode
		sib.Walk(func(n *CalloutNode) {
			if found == nil && n != sib && n.IsType(typ) {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// siblingListOf finds the child list (or the forest itself) that directly
// contains the node.
func siblingListOf(forest []*CalloutNode, node *CalloutNode) []*CalloutNode {
	for _, n := range forest {
		if n == node {
			return forest
		}
	}
	var found []*CalloutNode
	var search func(n *CalloutNode)
	search = func(n *CalloutNode) {
		if found != nil {
			return
		}
		for _, c := range n.Children {
			if c == node {
				found = n.Children
				return
			}
			search(c)
		}
	}
	for _, n := range forest {
		search(n)
		if found != nil {
			return found
		}
	}
	return nil
}

// ExtractDate scans text for a date token matching any of the layouts
// and returns it normalized to ISO-8601 (YYYY-MM-DD). Whole-string
// parses are tried first, then sliding windows of up to four words.
func ExtractDate(text string, layouts []string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	words := strings.Fields(trimmed)
	for size := 1; size <= 4 && size <= len(words); size++ {
		for i := 0; i+size <= len(words); i++ {
			candidate := strings.Join(words[i:i+size], " ")
			candidate = strings.Trim(candidate, ".,;:!?()[]")
			for _, layout := range layouts {
				if t, err := time.Parse(layout, candidate); err == nil {
					return t.Format("2006-01-02"), true
				}
			}
		}
	}
	return "", false
}
