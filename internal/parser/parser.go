// Package parser extracts structured dream entries from journal notes
// written as nested block-quote callouts.
package parser

import (
	"strings"

	"github.com/holmgren/dagaz/internal/lint"
	"github.com/holmgren/dagaz/internal/models"
)

// Result holds the output of parsing one note: the extracted entries and
// every diagnostic collected along the way, in a stable order (builder,
// assembler, validator).
type Result struct {
	Entries     []models.DreamEntry `json:"entries"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// ParseNote runs the full pipeline over raw note text: tokenize, build
// the callout tree, assemble entries with the best-matching structure,
// and validate. It is pure and deterministic, never fails on any textual
// input, and is safe to call from concurrent goroutines on different
// notes.
func ParseNote(text, file string, structures []models.JournalStructure) *Result {
	if len(structures) == 0 {
		structures = models.DefaultStructures()
	}

	tokens := Tokenize(text, metricsVocabulary(structures))
	forest, buildDiags := BuildTree(tokens)

	// Validation and assembly run independently over the same tree; the
	// validator picks which configured structure drives assembly.
	best, lintDiags := lint.BestMatch(forest, structures)
	entries, asmDiags := AssembleEntries(forest, file, best)

	diags := make([]models.Diagnostic, 0, len(buildDiags)+len(asmDiags)+len(lintDiags))
	diags = append(diags, buildDiags...)
	diags = append(diags, asmDiags...)
	diags = append(diags, lintDiags...)

	return &Result{Entries: entries, Diagnostics: diags}
}

// BuildForest tokenizes and builds the callout tree without assembling
// entries. Lint-only callers use it to evaluate the same tree against
// several structures.
func BuildForest(text string, structures []models.JournalStructure) ([]*models.CalloutNode, []models.Diagnostic) {
	if len(structures) == 0 {
		structures = models.DefaultStructures()
	}
	tokens := Tokenize(text, metricsVocabulary(structures))
	return BuildTree(tokens)
}

// metricsVocabulary collects the lowercased metrics callout types of
// every configured structure for the tokenizer.
func metricsVocabulary(structures []models.JournalStructure) map[string]bool {
	vocab := make(map[string]bool, len(structures))
	for _, st := range structures {
		if st.MetricsCallout != "" {
			vocab[strings.ToLower(st.MetricsCallout)] = true
		}
	}
	return vocab
}
