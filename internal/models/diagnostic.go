package models

// Severity grades a diagnostic.
type Severity int

// Diagnostic severities, ordered from least to most severe.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so severities render as
// names in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DiagnosticCode identifies a class of parsing or structural issue.
type DiagnosticCode string

// Diagnostic codes produced by the tokenizer, builder, assembler, and
// structure validator.
const (
	CodeDepthJump              DiagnosticCode = "DepthJump"
	CodeOrphanContent          DiagnosticCode = "OrphanContent"
	CodeUnparsableMetric       DiagnosticCode = "UnparsableMetric"
	CodeMissingDate            DiagnosticCode = "MissingDate"
	CodeNoMetricsFound         DiagnosticCode = "NoMetricsFound"
	CodeMissingRequiredCallout DiagnosticCode = "MissingRequiredCallout"
	CodeUnexpectedCallout      DiagnosticCode = "UnexpectedCallout"
	CodeMissingRequiredField   DiagnosticCode = "MissingRequiredField"
	CodeAlternativeStructure   DiagnosticCode = "AlternativeStructure"
)

// Diagnostic is a structured, non-fatal report of a parsing or structural
// issue. Diagnostics are data: they are collected and returned, never
// raised as control flow.
type Diagnostic struct {
	Severity    Severity       `json:"severity"`
	Code        DiagnosticCode `json:"code"`
	Message     string         `json:"message"`
	LineNumber  int            `json:"line_number,omitempty"`
	CalloutPath []string       `json:"callout_path,omitempty"`
}

// CountBySeverity tallies errors and warnings in one pass.
func CountBySeverity(diags []Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}
