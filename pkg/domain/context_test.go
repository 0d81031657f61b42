package domain_test

import (
	"testing"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestContextStore_Merge(t *testing.T) {
	t.Run("Fills empty slots", func(t *testing.T) {
		c := domain.ContextStore{}.Merge(domain.SlotResult{
			Objectives: "Explain photosynthesis",
			Subject:    "Biology",
			Grade:      "7",
		})
		assert.Equal(t, "Explain photosynthesis", c.LearningObjectives)
		assert.Equal(t, "Biology", c.Subject)
		assert.Equal(t, "7", c.GradeLevel)
	})

	t.Run("Sentinels never clear filled slots", func(t *testing.T) {
		start := domain.ContextStore{LearningObjectives: "Fractions", Subject: "Math", GradeLevel: "4"}
		c := start.Merge(domain.SlotResult{
			Objectives: domain.Unspecified,
			Subject:    "UNSPECIFIED",
			Grade:      "",
		})
		assert.Equal(t, start, c)
	})

	t.Run("Concrete values replace concrete values", func(t *testing.T) {
		start := domain.ContextStore{Subject: "Math", GradeLevel: "4"}
		c := start.Merge(domain.SlotResult{Subject: "Science", Grade: domain.Unspecified})
		assert.Equal(t, "Science", c.Subject)
		assert.Equal(t, "4", c.GradeLevel)
	})

	t.Run("Idempotent", func(t *testing.T) {
		r := domain.SlotResult{Objectives: "Write a persuasive essay", Subject: domain.Unspecified, Grade: "10"}
		start := domain.ContextStore{Subject: "English"}
		once := start.Merge(r)
		twice := once.Merge(r)
		assert.Equal(t, once, twice)
	})

	t.Run("Leaves other fields alone", func(t *testing.T) {
		start := domain.ContextStore{
			AssessmentContent:     "Quiz",
			AssessmentAlignment:   domain.AlignmentAligned,
			LastGeneratedArtifact: "Option A",
		}
		c := start.Merge(domain.SlotResult{Subject: "Art"})
		assert.Equal(t, "Quiz", c.AssessmentContent)
		assert.Equal(t, domain.AlignmentAligned, c.AssessmentAlignment)
		assert.Equal(t, "Option A", c.LastGeneratedArtifact)
	})
}

func TestContextStore_Summary(t *testing.T) {
	c := domain.ContextStore{
		Subject:               "Math",
		AssessmentContent:     "long text",
		LastGeneratedArtifact: "Option A",
	}
	s := c.Summary()
	assert.Equal(t, "Math", s.Subject)
	assert.True(t, s.HasAssessment)
	assert.True(t, s.HasArtifact)
	assert.Empty(t, s.Alignment)
	assert.True(t, domain.ContextStore{}.Empty())
	assert.False(t, c.Empty())
}
