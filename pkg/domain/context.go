package domain

import "strings"

// Unspecified is the sentinel a classifier returns for a slot it could not fill.
const Unspecified = "unspecified"

// ContextStore holds the slots accumulated across the turns of one session.
// Empty strings mean "not set".
type ContextStore struct {
	LearningObjectives string `json:"learning_objectives,omitempty"`
	GradeLevel         string `json:"grade_level,omitempty"`
	Subject            string `json:"subject,omitempty"`

	AssessmentContent   string    `json:"assessment_content,omitempty"`
	AssessmentAlignment Alignment `json:"assessment_alignment,omitempty"`

	LastGeneratedArtifact string `json:"last_generated_artifact,omitempty"`
}

// SlotResult is the typed contract of slot classification.
// Any field may hold Unspecified (or be empty) when the text did not mention it.
type SlotResult struct {
	Objectives string `json:"objectives" mapstructure:"objectives"`
	Subject    string `json:"subject" mapstructure:"subject"`
	Grade      string `json:"grade" mapstructure:"grade"`
}

// IsUnspecified reports whether v carries no concrete slot value.
func IsUnspecified(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Unspecified)
}

// Merge folds r into c and returns the result. A slot is replaced only by a
// concrete value; sentinels never clear a filled slot. Merge is deterministic
// and idempotent.
func (c ContextStore) Merge(r SlotResult) ContextStore {
	c.LearningObjectives = mergeSlot(c.LearningObjectives, r.Objectives)
	c.Subject = mergeSlot(c.Subject, r.Subject)
	c.GradeLevel = mergeSlot(c.GradeLevel, r.Grade)
	return c
}

func mergeSlot(existing, incoming string) string {
	if IsUnspecified(incoming) {
		return existing
	}
	return strings.TrimSpace(incoming)
}

// Empty reports whether no slot has been filled.
func (c ContextStore) Empty() bool {
	return c == ContextStore{}
}

// Summary is the compact view of a ContextStore returned to clients.
type Summary struct {
	LearningObjectives string    `json:"learning_objectives,omitempty"`
	GradeLevel         string    `json:"grade_level,omitempty"`
	Subject            string    `json:"subject,omitempty"`
	HasAssessment      bool      `json:"has_assessment"`
	Alignment          Alignment `json:"alignment,omitempty"`
	HasArtifact        bool      `json:"has_artifact"`
}

// Summary omits the large text fields.
func (c ContextStore) Summary() Summary {
	return Summary{
		LearningObjectives: c.LearningObjectives,
		GradeLevel:         c.GradeLevel,
		Subject:            c.Subject,
		HasAssessment:      c.AssessmentContent != "",
		Alignment:          c.AssessmentAlignment,
		HasArtifact:        c.LastGeneratedArtifact != "",
	}
}
