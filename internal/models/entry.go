// Package models defines the domain types for Dagaz.
package models

import (
	"encoding/json"
	"strconv"
)

// TokenKind classifies one line of note text.
type TokenKind int

// Token kinds emitted by the tokenizer.
const (
	TokenBlockOpen TokenKind = iota
	TokenMetricsLine
	TokenPlainText
	TokenBlankLine
)

// Token is one classified line of note text. Tokens are created once per
// line and discarded after tree building.
type Token struct {
	Kind         TokenKind
	Depth        int
	CalloutType  string
	CalloutTitle string
	RawText      string // line text with block-quote markers stripped
	LineNumber   int    // 1-based
}

// CalloutNode is a node in the callout structure tree. Parents own their
// children; there are no back-pointers.
type CalloutNode struct {
	Type         string
	Title        string
	Depth        int
	Children     []*CalloutNode
	ContentLines []string
	MetricsRaw   string
	StartLine    int
	EndLine      int
}

// Source identifies where an entry came from. ID distinguishes multiple
// entries extracted from the same file.
type Source struct {
	File string `json:"file"`
	ID   string `json:"id,omitempty"`
}

// String renders the source as file or file#id.
func (s Source) String() string {
	if s.ID == "" {
		return s.File
	}
	return s.File + "#" + s.ID
}

// CalloutRef records one callout that contributed to an entry.
type CalloutRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// MetricValue is a tagged variant: either a numeric metric or an
// enumerated string metric, decided once at parse time.
type MetricValue struct {
	Num     float64
	Str     string
	Numeric bool
}

// NumberValue returns a numeric MetricValue.
func NumberValue(f float64) MetricValue {
	return MetricValue{Num: f, Numeric: true}
}

// StringValue returns an enumerated MetricValue.
func StringValue(s string) MetricValue {
	return MetricValue{Str: s}
}

// MarshalJSON renders numeric values as JSON numbers and enumerated
// values as JSON strings.
func (v MetricValue) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *MetricValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = NumberValue(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = StringValue(s)
	return nil
}

// DreamEntry is the assembled, user-facing unit of the journal. Immutable
// once produced.
type DreamEntry struct {
	Date            string                 `json:"date"`
	Title           string                 `json:"title"`
	Content         string                 `json:"content"`
	WordCount       int                    `json:"word_count"`
	Metrics         map[string]MetricValue `json:"metrics"`
	Source          Source                 `json:"source"`
	CalloutMetadata []CalloutRef           `json:"callout_metadata,omitempty"`
}

// MetricSummary holds per-metric statistics over an aggregation batch.
// NonNumeric counts values that were enumerated strings and therefore
// excluded from min/max/average.
type MetricSummary struct {
	MetricName string  `json:"metric_name"`
	Average    float64 `json:"average"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Count      int     `json:"count"`
	NonNumeric int     `json:"non_numeric,omitempty"`
}
