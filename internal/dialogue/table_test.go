package dialogue_test

import (
	"testing"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Exhaustive(t *testing.T) {
	for _, s := range domain.States {
		row, ok := dialogue.Table[s]
		require.True(t, ok, "state %s has no transitions", s)
		_, ok = row[dialogue.Any]
		assert.True(t, ok, "state %s has no wildcard row", s)
	}
	assert.Len(t, dialogue.Table, len(domain.States), "table has rows for unknown states")
}

func TestTable_TargetsAreKnownStates(t *testing.T) {
	for from, row := range dialogue.Table {
		for intent, tr := range row {
			if tr.To == "" {
				// Verdict-routed edges.
				assert.Contains(t, []dialogue.Action{dialogue.ActClassifyAlignment, dialogue.ActStoreAndClassify}, tr.Action,
					"%s/%s has no target", from, intent)
				continue
			}
			assert.True(t, tr.To.Valid(), "%s/%s -> %s", from, intent, tr.To)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		state  domain.State
		intent domain.Intent
		to     domain.State
		action dialogue.Action
	}{
		{domain.StateStart, domain.IntentModeDesign, domain.StateDesignMode, dialogue.ActEnterDesign},
		{domain.StateStart, domain.IntentModeEvaluate, domain.StateEvaluateMode, dialogue.ActEnterEvaluate},
		{domain.StateStart, domain.IntentAffirmative, domain.StateStart, dialogue.ActPromptMode},
		{domain.StateDesignInputReceived, domain.IntentAffirmative, domain.StateDesignAssessmentYes, dialogue.ActAskForAssessment},
		{domain.StateDesignInputReceived, domain.IntentNegative, domain.StateQualityCheck, dialogue.ActGenerateAssessment},
		{domain.StateDesignInputReceived, domain.IntentContinue, domain.StateQualityCheck, dialogue.ActGenerateAssessment},
		{domain.StateDesignAssessmentReceived, domain.IntentOptionEvaluate, "", dialogue.ActClassifyAlignment},
		{domain.StateDesignAssessmentReceived, domain.IntentOptionGenerate, domain.StateQualityCheck, dialogue.ActGenerateAssessment},
		{domain.StateEvaluateNotAligned, domain.IntentAffirmative, domain.StateQualityCheck, dialogue.ActGenerateAssessment},
		{domain.StateEvaluateNotAligned, domain.IntentOther, domain.StateProvideNotAlignedReason, dialogue.ActRationale},
		{domain.StateQualityCheck, domain.IntentFinalize, domain.StateEnd, dialogue.ActFinalize},
		{domain.StateQualityCheck, domain.IntentContinue, domain.StateQualityCheck, dialogue.ActReprompt},
		{domain.StateQualityCheck, domain.IntentOther, domain.StateQualityCheck, dialogue.ActRefine},
		{domain.StateEnd, domain.IntentModeEvaluate, domain.StateStart, dialogue.ActRestart},
		{domain.StateEnd, domain.IntentAffirmative, domain.StateEnd, dialogue.ActRestartPrompt},
	}

	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+tt.intent.String(), func(t *testing.T) {
			tr, err := dialogue.Lookup(tt.state, tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.to, tr.To)
			assert.Equal(t, tt.action, tr.Action)
		})
	}

	_, err := dialogue.Lookup(domain.State("bogus"), domain.IntentOther)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "refine", dialogue.ActRefine.String())
	assert.Equal(t, "action(99)", dialogue.Action(99).String())
}

func TestEdges(t *testing.T) {
	edges := dialogue.Edges()

	has := func(from, to domain.State, intent string) bool {
		for _, e := range edges {
			if e.From == from && e.To == to && e.Intent == intent {
				return true
			}
		}
		return false
	}

	assert.True(t, has(domain.StateStart, domain.StateDesignMode, "mode_design"))
	assert.True(t, has(domain.StateEvaluateInputReceived, domain.StateEvaluateAligned, "*"))
	assert.True(t, has(domain.StateEvaluateInputReceived, domain.StateEvaluateNotAligned, "*"))
	assert.True(t, has(domain.StateEnd, domain.StateEvaluateMode, "mode_evaluate"), "restart lands on the mode node")
	assert.Equal(t, domain.StateStart, edges[0].From)

	for _, e := range edges {
		assert.NotEmpty(t, e.To, "edge %s -%s-> has no target", e.From, e.Intent)
	}
}
