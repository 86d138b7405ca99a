/*
Package bramble is a behavior-tree execution engine for orchestrating
reactive task switching in robots, game agents and automation workflows.

It separates tree structure (a declarative YAML document) from leaf behavior
(registered Go callbacks), so the control flow of an agent can be edited,
validated and visualized without recompiling the host. The engine manages
ticking, cancellation, scoped data flow and status notification, while your
application ("Host") supplies the actions and conditions that touch the
outside world.

# Concept

A behavior tree is ticked from the root: each tick propagates down the
active branch and every node answers Success, Failure, Running or Skipped.
Composites (Sequence, Fallback, Parallel) route the tick among their
children; decorators reshape a single child's verdict; leaves do the work.
A node that answers Running suspends the branch and is resumed, not
restarted, on the next tick. Halting is the single cancellation mechanism
and cascades only through the branch that is actually active.

# Key Features

  - Reactive Execution: guards (skip_if, success_if, failure_if) re-route
    flow on every tick without polling logic in your leaves.
  - Scoped Blackboards: each subtree gets its own namespace, connected to
    the parent through explicit port remapping or autoremap.
  - Strict Contracts: node manifests declare directed, typed ports, and the
    builder rejects bad wiring before the first tick.
  - Observability: every status transition is published on a bus feeding
    file, database and Prometheus consumers, plus a live HTTP/SSE view.

# Usage

Create a Factory, register your leaves, and tick the composed tree.

	package main

	import (
		"context"
		"log"

		"github.com/bramblebt/bramble"
		"github.com/bramblebt/bramble/pkg/domain"
		"github.com/bramblebt/bramble/pkg/node"
	)

	func main() {
		f := bramble.New()

		f.RegisterCondition("DoorOpen", nil, func(cfg *node.Config) (domain.Status, error) {
			return domain.StatusFailure, nil // closed
		})
		f.RegisterAction("OpenDoor", nil, func(cfg *node.Config) (domain.Status, error) {
			return domain.StatusSuccess, nil
		})

		t, err := f.CreateTreeFromFile("./door.yaml")
		if err != nil {
			log.Fatal(err)
		}

		status, err := bramble.NewRunner().Run(context.Background(), t)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("verdict:", status)
	}
*/
package bramble
