package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// WorkflowStoreContractTest is a reusable suite verifying that an adapter
// complies with ports.WorkflowStore. Adapters run it against a real (or
// in-memory) backend.
func WorkflowStoreContractTest(t *testing.T, store ports.WorkflowStore) {
	t.Helper()
	ctx := context.Background()

	wf := domain.Workflow{
		ID:   "contract-wf",
		Name: "contract",
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeTypeStart, Data: map[string]any{"input": "hi"}},
			{ID: "end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{{ID: "e1", Source: "start", Target: "end"}},
	}

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "never-saved")
		if !errors.Is(err, domain.ErrWorkflowNotFound) {
			t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
		}
	})

	t.Run("Save_Get_RoundTrip", func(t *testing.T) {
		if err := store.Save(ctx, wf); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}
		got, err := store.Get(ctx, wf.ID)
		if err != nil {
			t.Fatalf("unexpected get error: %v", err)
		}
		if !domain.Equal(wf, got) {
			t.Errorf("round-trip mismatch.\n got: %+v\nwant: %+v", got, wf)
		}
	})

	t.Run("Save_Overwrites", func(t *testing.T) {
		renamed := domain.Clone(wf)
		renamed.Name = "renamed"
		if err := store.Save(ctx, renamed); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}
		got, err := store.Get(ctx, wf.ID)
		if err != nil {
			t.Fatalf("unexpected get error: %v", err)
		}
		if got.Name != "renamed" {
			t.Errorf("expected last write to win, got name %q", got.Name)
		}
	})

	t.Run("List_Contains", func(t *testing.T) {
		all, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected list error: %v", err)
		}
		found := false
		for _, w := range all {
			if w.ID == wf.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("saved workflow missing from List")
		}
	})

	t.Run("Delete_Idempotent", func(t *testing.T) {
		if err := store.Delete(ctx, wf.ID); err != nil {
			t.Fatalf("unexpected delete error: %v", err)
		}
		if err := store.Delete(ctx, wf.ID); err != nil {
			t.Fatalf("second delete should be a no-op, got %v", err)
		}
		if _, err := store.Get(ctx, wf.ID); !errors.Is(err, domain.ErrWorkflowNotFound) {
			t.Errorf("expected ErrWorkflowNotFound after delete, got %v", err)
		}
	})
}
