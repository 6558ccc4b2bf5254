package devserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// startRun simulates a run: nodes are walked in declared order, one
// telemetry frame per step, ending in success or error. A node whose Data
// carries "fail": true aborts the run there, which is how tests exercise
// the error path.
func (s *Server) startRun(flow domain.Workflow, input map[string]any) string {
	status := domain.RunStatus{
		RunID:            uuid.NewString(),
		FlowID:           flow.ID,
		Status:           domain.RunRunning,
		TotalSteps:       len(flow.Nodes),
		CompletedNodeIDs: []string{},
		Results:          map[string]any{},
	}
	s.store.saveRun(status)
	s.hub.broadcast(flow.ID, ports.TopicStatus, status)

	go s.walk(flow, input, status)
	return status.RunID
}

func (s *Server) walk(flow domain.Workflow, input map[string]any, status domain.RunStatus) {
	for _, node := range flow.Nodes {
		status.CurrentNodeID = node.ID
		status.Progress++
		s.store.saveRun(status)
		s.hub.broadcast(flow.ID, ports.TopicStatus, status)

		if s.stepDelay > 0 {
			time.Sleep(s.stepDelay)
		}

		if fail, _ := node.Data["fail"].(bool); fail {
			status.Status = domain.RunError
			status.Error = fmt.Sprintf("applet %q failed", node.Type)
			s.store.saveRun(status)
			s.hub.broadcast(flow.ID, ports.TopicStatus, status)
			return
		}

		status.CompletedNodeIDs = append(status.CompletedNodeIDs, node.ID)
		status.Results[node.ID] = map[string]any{"node": node.ID, "input": input}
	}

	status.Status = domain.RunSuccess
	status.CurrentNodeID = ""
	s.store.saveRun(status)
	s.hub.broadcast(flow.ID, ports.TopicStatus, status)
	s.logger.Info("run finished", "run_id", status.RunID, "flow_id", flow.ID)
}
