package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	CurrentNode domain.State
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Capability calls (classifier, generator): [[Subroutine]]
// - Nodes waiting for educator input: [/Parallelogram/]
// - End: (((Double circle)))
// Wildcard edges are drawn unlabeled; restarts are dotted.
func GenerateMermaid(edges []dialogue.Edge, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	generators := make(map[domain.State]bool)
	for _, e := range edges {
		switch e.Action {
		case dialogue.ActGenerateAssessment, dialogue.ActRefine, dialogue.ActEvaluationReport, dialogue.ActRationale:
			generators[e.To] = true
		}
	}

	for _, s := range domain.States {
		opener, closer := "[/", "/]"
		switch {
		case s == domain.StateStart:
			opener, closer = "((", "))"
		case s == domain.StateEnd:
			opener, closer = "(((", ")))"
		case generators[s]:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(string(s)), opener, s, closer))
	}

	for _, e := range edges {
		if e.From == e.To && e.Intent == "*" {
			continue
		}
		arrow := "-->"
		if e.Intent != "*" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(e.Intent, "\"", "'"))
		}
		if e.Action == dialogue.ActRestart {
			arrow = fmt.Sprintf("-. \"%s\" .->", e.Intent)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(e.From)), arrow, sanitizeMermaidID(string(e.To))))
	}

	if overlay != nil && overlay.CurrentNode != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentNode))))
	}

	return sb.String()
}

// sanitizeMermaidID also renames "end", a reserved word in Mermaid flowcharts.
func sanitizeMermaidID(id string) string {
	if strings.EqualFold(id, "end") {
		return id + "_node"
	}
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
