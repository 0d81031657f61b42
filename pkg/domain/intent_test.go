package domain_test

import (
	"testing"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Intent
	}{
		{"yes", domain.IntentAffirmative},
		{"  YeS ", domain.IntentAffirmative},
		{"Y", domain.IntentAffirmative},
		{"yeah!", domain.IntentAffirmative},
		{"I have it", domain.IntentAffirmative},
		{"i do", domain.IntentAffirmative},
		{"sure.", domain.IntentAffirmative},
		{"no", domain.IntentNegative},
		{"Nope", domain.IntentNegative},
		{"design", domain.IntentModeDesign},
		{"EVALUATE", domain.IntentModeEvaluate},
		{"finalize", domain.IntentFinalize},
		{"Done", domain.IntentFinalize},
		{"finish", domain.IntentFinalize},
		{"", domain.IntentContinue},
		{"   ", domain.IntentContinue},
		{"ok", domain.IntentContinue},
		{"continue", domain.IntentContinue},
		{"1", domain.IntentOptionEvaluate},
		{"2", domain.IntentOptionGenerate},
		{"yes please design something", domain.IntentOther},
		{"add captions to option 2", domain.IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(tt.input))
		})
	}
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "affirmative", domain.IntentAffirmative.String())
	assert.Equal(t, "unknown", domain.Intent(99).String())
}

func TestParseAlignment(t *testing.T) {
	assert.Equal(t, domain.AlignmentAligned, domain.ParseAlignment("Aligned"))
	assert.Equal(t, domain.AlignmentAligned, domain.ParseAlignment(" yes. "))
	assert.Equal(t, domain.AlignmentNotAligned, domain.ParseAlignment("not aligned"))
	assert.Equal(t, domain.AlignmentNotAligned, domain.ParseAlignment("maybe"))
	assert.Equal(t, domain.AlignmentNotAligned, domain.ParseAlignment(""))
}
