package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holmgren/dagaz/internal/models"
)

// ExtractMetrics parses the raw body of a metrics callout into a typed
// map. Pairs are `Name: value` separated by commas or newlines. Numeric
// values parse as float64; declared fields may carry enumerated string
// values; anything else is skipped with a warning. Extraction of one
// pair never aborts the rest.
func ExtractMetrics(raw string, st models.JournalStructure, path []string, line int) (map[string]models.MetricValue, []models.Diagnostic) {
	out := make(map[string]models.MetricValue)
	var diags []models.Diagnostic

	warn := func(format string, args ...any) {
		diags = append(diags, models.Diagnostic{
			Severity:    models.SeverityWarning,
			Code:        models.CodeUnparsableMetric,
			Message:     fmt.Sprintf(format, args...),
			LineNumber:  line,
			CalloutPath: path,
		})
	}

	for _, segment := range splitPairs(raw) {
		name, value, ok := strings.Cut(segment, ":")
		if !ok {
			warn("metric segment %q has no value", segment)
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			warn("incomplete metric pair %q", segment)
			continue
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[name] = models.NumberValue(f)
			continue
		}
		if st.DeclaresField(name) {
			out[name] = models.StringValue(value)
			continue
		}
		warn("metric %q has non-numeric value %q", name, value)
	}
	return out, diags
}

// splitPairs breaks raw metrics text on newlines and commas, dropping
// empty segments.
func splitPairs(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		for _, seg := range strings.Split(line, ",") {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}
