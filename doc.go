/*
Package roteiro is a navigation engine for branching call-center scripts.

A script is a directed graph of steps; each step carries HTML content and a
set of labeled buttons, and each button points at the next step (or at
nothing, which ends the attendance). Products resolve to the entry step of
their script, and operators walk the graph one button press at a time with
an undo-style history.

# Architecture

The core is split hexagonally. pkg/domain holds the data model (Step,
Button, Product, AttendanceConfig, SessionSnapshot), pkg/ports defines the
storage and resolution contracts, pkg/session implements the navigation
state machine and the concurrent session manager, and internal/adapters
provides memory, Postgres and Redis implementations of the ports. This
package is a thin facade over those pieces for library consumers.

# Session semantics

Starting a session is the only operation that can fail with a configuration
error: an unknown product, a product without a script, or a script whose
entry step is missing. Once a session is running, navigation failures
(dangling button targets, going back past the entry step, searches with no
match) never surface as errors. The current step simply does not change,
and the incident is logged and reported through lifecycle hooks.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/callguide/roteiro"
		"github.com/callguide/roteiro/pkg/domain"
		"github.com/callguide/roteiro/pkg/importer"
	)

	func main() {
		data, err := os.ReadFile("scripts.json")
		if err != nil {
			log.Fatal(err)
		}

		eng, report, err := roteiro.New(data, importer.FormatJSON)
		if err != nil {
			log.Fatal(err)
		}
		for _, q := range report.Quarantined {
			log.Printf("rejected %s %s: %s", q.Kind, q.ID, q.Reason)
		}

		ctx := context.Background()
		id, snap, err := eng.StartSession(ctx, domain.AttendanceConfig{
			ProductID:      "prod-habitacional",
			AttendanceType: domain.AttendanceAtivo,
			PersonType:     domain.PersonFisica,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("entry step:", snap.CurrentStepID)

		// Follow the first button of the current step.
		_, step, err := eng.Current(ctx, id)
		if err != nil {
			log.Fatal(err)
		}
		if len(step.Buttons) > 0 {
			if _, err := eng.Advance(ctx, id, step.Buttons[0].NextStepID); err != nil {
				log.Fatal(err)
			}
		}
	}
*/
package roteiro
