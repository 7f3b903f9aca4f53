// Package graphcheck validates script graphs for administrative tooling.
//
// The engine itself tolerates broken graphs at runtime (dangling button
// targets degrade to no-ops); this package exists so script authors can
// find those problems before operators do.
package graphcheck

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/ports"
)

// Issue is one problem found while crawling a product's graph.
type Issue struct {
	ProductID string
	StepID    string // step holding the bad reference, empty for unreachable steps
	TargetID  string // unresolvable target, or the unreachable step itself
	Kind      string // "dangling" or "unreachable"
}

func (i Issue) String() string {
	switch i.Kind {
	case "dangling":
		return fmt.Sprintf("product %s: step %s points at missing step %s", i.ProductID, i.StepID, i.TargetID)
	case "unreachable":
		return fmt.Sprintf("product %s: step %s is unreachable from the entry step", i.ProductID, i.TargetID)
	default:
		return fmt.Sprintf("product %s: %s", i.ProductID, i.TargetID)
	}
}

// Report aggregates the issues of one validation run.
type Report struct {
	Issues []Issue
}

// OK reports whether the crawl found no problems.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) Error() string {
	lines := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		lines = append(lines, i.String())
	}
	return fmt.Sprintf("found %d issues:\n- %s", len(r.Issues), strings.Join(lines, "\n- "))
}

// ValidateProduct crawls the product's graph breadth-first from its entry
// step, reporting dangling button targets and steps owned by the product
// that the crawl never reached.
func ValidateProduct(ctx context.Context, store ports.StepStore, product *domain.Product) (*Report, error) {
	report := &Report{}

	entry, err := store.GetStepByID(ctx, product.ScriptID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("entry step %q not found for product %s: %w", product.ScriptID, product.ID, err)
	}

	visited := map[string]bool{entry.ID: true}
	queue := []*domain.Step{entry}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, b := range current.Buttons {
			if b.Terminal() {
				continue
			}
			if visited[b.NextStepID] {
				continue
			}

			next, err := store.GetStepByID(ctx, b.NextStepID, product.ID)
			if err != nil {
				report.Issues = append(report.Issues, Issue{
					ProductID: product.ID,
					StepID:    current.ID,
					TargetID:  b.NextStepID,
					Kind:      "dangling",
				})
				continue
			}

			visited[next.ID] = true
			queue = append(queue, next)
		}
	}

	// Any step owned by this product that the crawl never reached is
	// authoring debris.
	all, err := store.ListSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	var unreachable []string
	for _, step := range all {
		if step.ProductID == product.ID && !visited[step.ID] {
			unreachable = append(unreachable, step.ID)
		}
	}
	sort.Strings(unreachable)
	for _, id := range unreachable {
		report.Issues = append(report.Issues, Issue{
			ProductID: product.ID,
			TargetID:  id,
			Kind:      "unreachable",
		})
	}

	return report, nil
}
