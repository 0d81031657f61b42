package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/internal/presentation/graph"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(dialogue.Edges(), nil)

	tests := []struct {
		name     string
		contains string
	}{
		{"header", "graph TD\n"},
		{"start shape", `start(("start"))`},
		{"end shape", `end_node((("end")))`},
		{"generator shape", `quality_check_phase[["quality_check_phase"]]`},
		{"input shape", `design_mode[/"design_mode"/]`},
		{"labeled edge", `start -- "mode_design" --> design_mode`},
		{"wildcard edge", "design_mode --> design_input_received"},
		{"verdict fan-out", "evaluate_input_received --> evaluate_not_aligned"},
		{"restart edge", `end_node -. "mode_design" .-> design_mode`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}

	assert.NotContains(t, out, "end_node --> end_node", "wildcard self loops are omitted")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(dialogue.Edges(), &graph.GraphOverlay{CurrentNode: domain.StateQualityCheck})
	assert.True(t, strings.HasSuffix(out, "    class quality_check_phase current;\n"))
}
