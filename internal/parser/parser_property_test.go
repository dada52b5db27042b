package parser

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/holmgren/dagaz/internal/models"
)

// noteGen produces arbitrary journal-ish text: a mix of callout opens,
// quoted prose, metric pairs, and junk lines at varying depths.
func noteGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		n := rapid.IntRange(0, 12).Draw(t, "lines")
		lines := make([]string, 0, n)
		for i := 0; i < n; i++ {
			depth := rapid.IntRange(0, 4).Draw(t, "depth")
			prefix := strings.Repeat("> ", depth)
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				typ := rapid.SampledFrom([]string{"dream", "metrics", "diary", "odd"}).Draw(t, "type")
				title := rapid.SampledFrom([]string{"", "2024-01-01", "A Title", "not a date"}).Draw(t, "title")
				lines = append(lines, strings.TrimSpace(prefix+"[!"+typ+"] "+title))
			case 1:
				lines = append(lines, prefix+rapid.SampledFrom([]string{
					"Lucid: 1", "Vivid: 4, Mood: 2", "Clarity: x", "broken:", "plain words here",
				}).Draw(t, "body"))
			case 2:
				lines = append(lines, prefix)
			default:
				lines = append(lines, rapid.StringMatching(`[a-zA-Z *_#\[\]().:-]{0,30}`).Draw(t, "junk"))
			}
		}
		return strings.Join(lines, "\n")
	})
}

// Parsing the same text twice must yield identical entries and
// diagnostics: the pipeline holds no hidden mutable state.
func TestParseNote_Idempotent(t *testing.T) {
	structures := []models.JournalStructure{nestedStructure()}
	rapid.Check(t, func(t *rapid.T) {
		text := noteGen().Draw(t, "text")
		first := ParseNote(text, "prop.md", structures)
		second := ParseNote(text, "prop.md", structures)

		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		if !reflect.DeepEqual(first.Diagnostics, second.Diagnostics) || string(a) != string(b) {
			t.Fatalf("parse not deterministic:\n%s\n%s", a, b)
		}
	})
}

// WordCount must always equal the whitespace-token count of the
// sanitized content, recomputed, never trusted from input.
func TestParseNote_WordCountInvariant(t *testing.T) {
	structures := []models.JournalStructure{nestedStructure()}
	rapid.Check(t, func(t *rapid.T) {
		text := noteGen().Draw(t, "text")
		res := ParseNote(text, "prop.md", structures)
		for _, e := range res.Entries {
			if e.WordCount != len(strings.Fields(e.Content)) {
				t.Fatalf("word count %d != token count %d for content %q",
					e.WordCount, len(strings.Fields(e.Content)), e.Content)
			}
		}
	})
}

// Appending a syntactically valid but structurally non-conforming
// callout never changes the number of extracted entries, only the
// diagnostics.
func TestParseNote_MonotonicDiagnostics(t *testing.T) {
	structures := []models.JournalStructure{nestedStructure()}
	rapid.Check(t, func(t *rapid.T) {
		text := noteGen().Draw(t, "text")
		base := ParseNote(text, "prop.md", structures)
		extended := ParseNote(text+"\n> [!intruder] not part of the plan\n> stray", "prop.md", structures)

		if len(extended.Entries) != len(base.Entries) {
			t.Fatalf("entry count changed from %d to %d after adding non-conforming callout",
				len(base.Entries), len(extended.Entries))
		}
		if len(extended.Diagnostics) < len(base.Diagnostics) {
			t.Fatalf("diagnostics shrank from %d to %d", len(base.Diagnostics), len(extended.Diagnostics))
		}
	})
}
