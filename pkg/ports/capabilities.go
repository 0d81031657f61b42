package ports

import (
	"context"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// IntentClassifier extracts structured values from free text.
type IntentClassifier interface {
	// ClassifySlots returns the objectives, subject and grade mentioned in text.
	// Slots the text does not mention are domain.Unspecified.
	ClassifySlots(ctx context.Context, text string) (domain.SlotResult, error)

	// ClassifyAlignment returns the binary verdict for an assessment.
	// Implementations return domain.AlignmentNotAligned when the backend answer
	// cannot be parsed; an error is reserved for transport failures.
	ClassifyAlignment(ctx context.Context, assessment string) (domain.Alignment, error)
}

// InstructionKind selects what the ContentGenerator produces.
type InstructionKind string

const (
	KindAssessmentSet    InstructionKind = "assessment_set"
	KindEvaluationReport InstructionKind = "evaluation_report"
	KindRefinement       InstructionKind = "refinement"
	KindRationale        InstructionKind = "not_aligned_rationale"
)

// GenerateRequest is the input of a generation step.
type GenerateRequest struct {
	Kind    InstructionKind
	Context domain.ContextStore

	// PriorArtifact is the cached artifact being refined (KindRefinement only).
	PriorArtifact string

	// Instruction is the user's refinement request (KindRefinement only).
	Instruction string
}

// ContentGenerator produces formatted markdown content.
// On failure it returns an error and no text; partial output is never returned as success.
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// DocumentExtractor converts an uploaded document into plain text.
type DocumentExtractor interface {
	// Extract returns the text of the document. name is the original file name
	// and is used to detect the format. Unsupported formats return
	// domain.ErrUnsupportedDocument.
	Extract(ctx context.Context, name string, data []byte) (string, error)
}
