package cli

import (
	"context"
	"fmt"

	"github.com/avelst/skein"
	"github.com/avelst/skein/internal/presentation/graph"
	"github.com/avelst/skein/internal/presentation/tui"
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/notify"
	"github.com/avelst/skein/pkg/ports"
)

// WatchOptions contains the configuration for the watch command.
type WatchOptions struct {
	Server     string
	WorkflowID string
	Graph      bool
	Execute    bool
	Notify     bool
	LogLevel   string
}

// RunWatch attaches to a workflow's live telemetry and renders status
// lines until interrupted. With Execute it starts a run first; with Graph
// it prints a Mermaid snapshot of the final state.
func RunWatch(opts WatchOptions) error {
	logger := NewLogger(opts.LogLevel)
	tui.PrintBanner(skein.Version)

	clientOpts := []skein.Option{skein.WithLogger(logger)}
	if opts.Notify {
		desktop := notify.NewDesktop(notify.WithLogger(logger))
		desktop.Enable()
		clientOpts = append(clientOpts, skein.WithNotifier(desktop))
	}

	client, err := skein.New(opts.Server, clientOpts...)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := NewSignalContext(context.Background())
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		logger.Warn("initial connect failed, retrying in background", "err", err)
	}

	sess, err := client.OpenSession(ctx, opts.WorkflowID)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer sess.Detach()

	printSystemMessage("Watching workflow '%s' on %s", opts.WorkflowID, opts.Server)

	terminal := make(chan domain.RunStatus, 1)
	removeTerminal := client.Transport().OnTerminal(func(status domain.RunStatus) {
		if status.FlowID == opts.WorkflowID {
			select {
			case terminal <- status:
			default:
			}
		}
	})
	defer removeTerminal()

	unsubscribe := client.Transport().Subscribe(ports.TopicStatus, func(p ports.Payload) {
		status, ok := p.(ports.StatusEvent)
		if !ok || status.FlowID != opts.WorkflowID {
			return
		}
		fmt.Println(tui.StatusLine(status.RunStatus))
	})
	defer unsubscribe()

	if opts.Execute {
		runID, err := sess.Execute(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		printSystemMessage("Run started: %s", runID)
	}

	// Plain watch keeps streaming across runs; with --execute we exit
	// after the run we started reaches a terminal state.
	for {
		select {
		case <-ctx.Done():
			printSystemMessage("Interrupted.")
			return nil
		case <-terminal:
			if opts.Graph {
				run := sess.RunState()
				fmt.Println()
				fmt.Print(graph.GenerateMermaid(sess.Workflow(), &run))
			}
			if opts.Execute {
				return nil
			}
		}
	}
}
