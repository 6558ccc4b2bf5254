package devserver

import (
	"context"
	"sync"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// MemStore is the in-memory workflow store backing the dev server. It also
// serves as the reference ports.WorkflowStore implementation for contract
// tests.
type MemStore struct {
	mu    sync.RWMutex
	flows map[string]domain.Workflow
	runs  map[string]domain.RunStatus
}

var _ ports.WorkflowStore = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		flows: make(map[string]domain.Workflow),
		runs:  make(map[string]domain.RunStatus),
	}
}

// List returns every stored workflow.
func (s *MemStore) List(ctx context.Context) ([]domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Workflow, 0, len(s.flows))
	for _, w := range s.flows {
		out = append(out, domain.Clone(w))
	}
	return out, nil
}

// Get retrieves one workflow.
func (s *MemStore) Get(ctx context.Context, id string) (domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.flows[id]
	if !ok {
		return domain.Workflow{}, domain.ErrWorkflowNotFound
	}
	return domain.Clone(w), nil
}

// Save creates or overwrites a workflow, last write wins.
func (s *MemStore) Save(ctx context.Context, w domain.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[w.ID] = domain.Clone(w)
	return nil
}

// Delete removes a workflow; unknown ids are a no-op.
func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	return nil
}

// saveRun stores a detached copy so the walker can keep appending to its
// own slices without racing readers.
func (s *MemStore) saveRun(status domain.RunStatus) {
	cp := status
	cp.CompletedNodeIDs = append([]string(nil), status.CompletedNodeIDs...)
	if status.Results != nil {
		cp.Results = make(map[string]any, len(status.Results))
		for k, v := range status.Results {
			cp.Results[k] = v
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[cp.RunID] = cp
}

func (s *MemStore) run(id string) (domain.RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[id]
	return st, ok
}
