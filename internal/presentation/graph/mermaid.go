// Package graph renders script graphs as Mermaid flowcharts for
// administrative review.
package graph

import (
	"fmt"
	"strings"

	"github.com/callguide/roteiro/pkg/domain"
)

// Overlay contains dynamic session state to visualize on the graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid produces a Mermaid flowchart from a product's steps.
// The entry step renders as a circle, terminal buttons flow into a
// shared END sink, and an overlay highlights visited/current steps.
func GenerateMermaid(entryStepID string, steps []domain.Step, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasTerminal := false
	for _, step := range steps {
		safeID := sanitizeMermaidID(step.ID)

		opener, closer := "[", "]"
		if step.ID == entryStepID {
			opener, closer = "((", "))" // Circle
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(step.Title), closer))

		for _, b := range step.Buttons {
			label := escapeLabel(b.Label)
			if b.Terminal() {
				hasTerminal = true
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> __end__\n", safeID, label))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(b.NextStepID)))
		}
	}

	if hasTerminal {
		sb.WriteString("    __end__((\"FIM\"))\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high-contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
