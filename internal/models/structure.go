package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Journal structure layouts.
const (
	StructureFlat   = "flat"
	StructureNested = "nested"
)

// Content scopes controlling which descendants contribute entry content.
const (
	ContentScopeDirect = "direct"
	ContentScopeDeep   = "deep"
)

// JournalStructure describes the expected callout layout of a journal
// note: which callout anchors an entry, which children are allowed, and
// where the metrics live. Structures are supplied by configuration and
// are read-only to the parsing core.
type JournalStructure struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Type           string   `yaml:"type" json:"type"`
	RootCallout    string   `yaml:"root_callout" json:"root_callout"`
	ChildCallouts  []string `yaml:"child_callouts" json:"child_callouts,omitempty"`
	ContentCallout string   `yaml:"content_callout" json:"content_callout,omitempty"`
	MetricsCallout string   `yaml:"metrics_callout" json:"metrics_callout"`
	ContentScope   string   `yaml:"content_scope" json:"content_scope,omitempty"`
	DateFormats    []string `yaml:"date_formats" json:"date_formats,omitempty"`
	RequiredFields []string `yaml:"required_fields" json:"required_fields,omitempty"`
	OptionalFields []string `yaml:"optional_fields" json:"optional_fields,omitempty"`
}

// Validate checks a structure record loaded from configuration.
func (s JournalStructure) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.Type, validation.Required, validation.In(StructureFlat, StructureNested)),
		validation.Field(&s.RootCallout, validation.Required.When(s.Type == StructureNested)),
		validation.Field(&s.MetricsCallout, validation.Required),
		validation.Field(&s.ContentScope, validation.In("", ContentScopeDirect, ContentScopeDeep)),
	)
}

// Scope returns the effective content scope, defaulting to direct.
func (s JournalStructure) Scope() string {
	if s.ContentScope == ContentScopeDeep {
		return ContentScopeDeep
	}
	return ContentScopeDirect
}

// Layouts returns the effective date layouts, falling back to ISO dates.
func (s JournalStructure) Layouts() []string {
	if len(s.DateFormats) > 0 {
		return s.DateFormats
	}
	return []string{"2006-01-02"}
}

// Vocabulary returns the set of callout types this structure recognizes,
// lowercased. Type matching is case-insensitive throughout.
func (s JournalStructure) Vocabulary() map[string]bool {
	vocab := make(map[string]bool)
	add := func(t string) {
		if t != "" {
			vocab[strings.ToLower(t)] = true
		}
	}
	add(s.RootCallout)
	add(s.ContentCallout)
	add(s.MetricsCallout)
	for _, c := range s.ChildCallouts {
		add(c)
	}
	return vocab
}

// DeclaresField reports whether name is listed as a required or optional
// field. Declared metric fields may carry enumerated string values;
// undeclared metrics must be numeric.
func (s JournalStructure) DeclaresField(name string) bool {
	for _, f := range s.RequiredFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	for _, f := range s.OptionalFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// DefaultStructures returns the built-in journal structure used when no
// structures are configured.
func DefaultStructures() []JournalStructure {
	return []JournalStructure{
		{
			ID:             "default-nested",
			Name:           "Nested dream journal",
			Type:           StructureNested,
			RootCallout:    "dream",
			ChildCallouts:  []string{"diary"},
			ContentCallout: "diary",
			MetricsCallout: "metrics",
			ContentScope:   ContentScopeDirect,
			DateFormats:    []string{"2006-01-02", "January 2, 2006", "02.01.2006"},
		},
	}
}
