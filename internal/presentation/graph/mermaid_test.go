package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/callguide/roteiro/internal/presentation/graph"
	"github.com/callguide/roteiro/pkg/domain"
)

func demoSteps() []domain.Step {
	return []domain.Step{
		{
			ID:    "hab-abordagem",
			Title: "Abordagem \"Inicial\"",
			Buttons: []domain.Button{
				{ID: "b1", Label: "É O CLIENTE", NextStepID: "hab-identificacao"},
				{ID: "b2", Label: "ENCERRAR", NextStepID: ""},
			},
		},
		{
			ID:    "hab-identificacao",
			Title: "Identificação",
			Buttons: []domain.Button{
				{ID: "b3", Label: "FIM", NextStepID: ""},
			},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid("hab-abordagem", demoSteps(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))

	// Entry step is a circle; ids are sanitized for Mermaid.
	assert.Contains(t, out, `hab_abordagem(("Abordagem 'Inicial'"))`)
	assert.Contains(t, out, `hab_identificacao["Identificação"]`)

	// Button edges carry their labels.
	assert.Contains(t, out, `hab_abordagem -- "É O CLIENTE" --> hab_identificacao`)

	// Terminal buttons share one END sink, declared once.
	assert.Contains(t, out, `hab_abordagem -- "ENCERRAR" --> __end__`)
	assert.Contains(t, out, `hab_identificacao -- "FIM" --> __end__`)
	assert.Equal(t, 1, strings.Count(out, `__end__(("FIM"))`))
}

func TestGenerateMermaid_NoTerminalNoSink(t *testing.T) {
	steps := []domain.Step{
		{ID: "a", Title: "A", Buttons: []domain.Button{{ID: "b", Label: "IR", NextStepID: "a"}}},
	}

	out := graph.GenerateMermaid("a", steps, nil)
	assert.NotContains(t, out, "__end__")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	overlay := &graph.Overlay{
		VisitedSteps: []string{"hab-abordagem", "hab-abordagem", "hab-identificacao"},
		CurrentStep:  "hab-identificacao",
	}

	out := graph.GenerateMermaid("hab-abordagem", demoSteps(), overlay)

	assert.Contains(t, out, "classDef visited")
	assert.Contains(t, out, "classDef current")
	assert.Contains(t, out, "class hab_identificacao current;")
	// Duplicate visited entries collapse to one class line.
	assert.Equal(t, 1, strings.Count(out, "class hab_abordagem visited;"))
}
