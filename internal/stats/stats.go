// Package stats reduces dream entry metrics into per-metric summaries.
package stats

import (
	"math"
	"sort"

	"github.com/holmgren/dagaz/internal/models"
)

// Summarize computes count, min, max, and average for every distinct
// metric name across the entries. It is a pure fold: no state survives
// between calls, so it can be re-run cheaply whenever the entry set
// changes. Enumerated string values are counted but excluded from
// min/max/average; the exclusion is surfaced via NonNumeric so callers
// can tell "no numeric data" from "zero-valued data".
func Summarize(entries []models.DreamEntry) []models.MetricSummary {
	type acc struct {
		sum        float64
		min        float64
		max        float64
		numeric    int
		nonNumeric int
	}
	accs := make(map[string]*acc)

	for _, e := range entries {
		for name, v := range e.Metrics {
			a := accs[name]
			if a == nil {
				a = &acc{min: math.Inf(1), max: math.Inf(-1)}
				accs[name] = a
			}
			if !v.Numeric {
				a.nonNumeric++
				continue
			}
			a.numeric++
			a.sum += v.Num
			if v.Num < a.min {
				a.min = v.Num
			}
			if v.Num > a.max {
				a.max = v.Num
			}
		}
	}

	out := make([]models.MetricSummary, 0, len(accs))
	for name, a := range accs {
		s := models.MetricSummary{
			MetricName: name,
			Count:      a.numeric + a.nonNumeric,
			NonNumeric: a.nonNumeric,
		}
		if a.numeric > 0 {
			s.Min = a.min
			s.Max = a.max
			s.Average = roundTo(a.sum/float64(a.numeric), 3)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricName < out[j].MetricName })
	return out
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
