/*
Package skein is the client-side synchronization core for a visually
edited workflow canvas. It keeps one canonical workflow model in sync
across three planes: local edits, the renderable view the canvas draws,
and live run telemetry streamed from the execution service.

The canonical model (pkg/domain) is a plain value; every edit produces a
new value and never mutates the old one. The bridge (pkg/bridge) maps
that model to the renderable graph and memoizes the mapping on structural
equality, so a stable model means a stable view. Run telemetry arrives
over a self-healing websocket (pkg/adapters/ws), is reduced to per-node
visual states by the projector (pkg/projection), and is overlaid onto the
renderable graph without ever touching the canonical model.

# Usage

Connect to a workflow service and open an editing session:

	package main

	import (
		"context"
		"log"

		"github.com/avelst/skein"
		"github.com/avelst/skein/pkg/domain"
	)

	func main() {
		client, err := skein.New("http://localhost:8787")
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		ctx := context.Background()
		if err := client.Connect(ctx); err != nil {
			log.Printf("connecting in background: %v", err)
		}

		sess, err := client.OpenSession(ctx, "my-flow")
		if err != nil {
			log.Fatal(err)
		}
		defer sess.Detach()

		sess.AddNode(domain.NodeTypeWriter, domain.Position{X: 200, Y: 80})
		if err := sess.Save(ctx); err != nil {
			log.Fatal(err)
		}

		runID, err := sess.Execute(ctx, map[string]any{"input": "hello"})
		if err != nil {
			log.Fatal(err)
		}
		log.Println("run started:", runID)

		// Render() returns the graph with live node states overlaid as
		// workflow.status frames arrive.
	}

The session is single-owner: it serializes local edits and telemetry
internally, but the workflow it manages belongs to that session alone.
Concurrent editors resolve last-write-wins at save time.
*/
package skein
