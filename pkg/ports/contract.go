package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionRepositoryContract runs a suite of tests to verify that a SessionRepository
// implementation adheres to the defined interface contract.
func RunSessionRepositoryContract(t *testing.T, repo SessionRepository) {
	ctx := context.Background()
	token := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Put and Get round trip", func(t *testing.T) {
		now := time.Date(2025, 5, 4, 12, 30, 0, 0, time.UTC)
		record := domain.NewRecord(token, now)
		record.State = domain.StateQualityCheck
		record.Branch = domain.BranchDesign
		record.Append(domain.RoleUser, "design", now)
		record.Append(domain.RoleAssistant, "Tell me about your learners.", now.Add(time.Second))
		record.Context = domain.ContextStore{
			LearningObjectives:    "Compare fractions",
			GradeLevel:            "4",
			Subject:               "Math",
			AssessmentContent:     "10 question quiz",
			AssessmentAlignment:   domain.AlignmentNotAligned,
			LastGeneratedArtifact: "## Option A",
		}
		record.LastActivityAt = now.Add(time.Second)

		require.NoError(t, repo.Put(ctx, token, record), "Put should not return error")

		loaded, err := repo.Get(ctx, token)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, record.Token, loaded.Token)
		assert.Equal(t, record.State, loaded.State)
		assert.Equal(t, record.Branch, loaded.Branch)
		assert.Equal(t, record.Context, loaded.Context)
		require.Len(t, loaded.Transcript, 2)
		for i := range record.Transcript {
			assert.Equal(t, record.Transcript[i].Role, loaded.Transcript[i].Role)
			assert.Equal(t, record.Transcript[i].Text, loaded.Transcript[i].Text)
			assert.True(t, record.Transcript[i].Timestamp.Equal(loaded.Transcript[i].Timestamp))
		}
		assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))
		assert.True(t, record.LastActivityAt.Equal(loaded.LastActivityAt))
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		loaded, err := repo.Get(ctx, token)
		require.NoError(t, err)
		loaded.Context.Subject = "mutated"
		loaded.Transcript = append(loaded.Transcript, domain.Message{Role: domain.RoleUser, Text: "x"})

		again, err := repo.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "Math", again.Context.Subject)
		assert.Len(t, again.Transcript, 2)
	})

	t.Run("Put replaces", func(t *testing.T) {
		fresh := domain.NewRecord(token, time.Now().UTC())
		require.NoError(t, repo.Put(ctx, token, fresh))

		loaded, err := repo.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, domain.StateStart, loaded.State)
		assert.True(t, loaded.Context.Empty())
		assert.Empty(t, loaded.Transcript)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := repo.Get(ctx, "non-existent-"+token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, token, domain.NewRecord(token, time.Now().UTC())))

		require.NoError(t, repo.Delete(ctx, token), "Delete should not return error")

		_, err := repo.Get(ctx, token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Get after Delete should return ErrSessionNotFound")

		assert.NoError(t, repo.Delete(ctx, token), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := token + "-1"
		id2 := token + "-2"
		require.NoError(t, repo.Put(ctx, id1, domain.NewRecord(id1, time.Now().UTC())))
		require.NoError(t, repo.Put(ctx, id2, domain.NewRecord(id2, time.Now().UTC())))

		tokens, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, tokens, id1)
		assert.Contains(t, tokens, id2)

		_ = repo.Delete(ctx, id1)
		_ = repo.Delete(ctx, id2)
	})
}
