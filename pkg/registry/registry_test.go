package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein/pkg/domain"
)

func TestNames_IncludesBuiltins(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	assert.Contains(t, names, "blank")
	assert.Contains(t, names, "writer-pipeline")
	assert.Contains(t, names, "illustrated-post")
	assert.Contains(t, names, "content-moderation")
}

func TestInstantiate_FreshIDsAndRemappedEdges(t *testing.T) {
	r := NewRegistry()

	wf, err := r.Instantiate("writer-pipeline", "My Flow")
	require.NoError(t, err)

	assert.NotEmpty(t, wf.ID)
	assert.Equal(t, "My Flow", wf.Name)
	require.Len(t, wf.Nodes, 3)
	for _, n := range wf.Nodes {
		assert.NotContains(t, []string{"start", "writer", "end"}, n.ID, "template ids must be regenerated")
	}
	for _, e := range wf.Edges {
		assert.NotNil(t, wf.Node(e.Source), "edge source must map to an instance node")
		assert.NotNil(t, wf.Node(e.Target), "edge target must map to an instance node")
	}

	// Two instances never collide.
	again, err := r.Instantiate("writer-pipeline", "Other Flow")
	require.NoError(t, err)
	assert.NotEqual(t, wf.ID, again.ID)
	assert.NotEqual(t, wf.Nodes[0].ID, again.Nodes[0].ID)
}

func TestInstantiate_NeverAliasesTemplate(t *testing.T) {
	r := NewRegistry()

	wf, err := r.Instantiate("writer-pipeline", "Mutant")
	require.NoError(t, err)
	for i := range wf.Nodes {
		if wf.Nodes[i].Type == domain.NodeTypeWriter {
			wf.Nodes[i].Data["prompt"] = "mutated"
		}
	}

	fresh, err := r.Instantiate("writer-pipeline", "Fresh")
	require.NoError(t, err)
	for _, n := range fresh.Nodes {
		if n.Type == domain.NodeTypeWriter {
			assert.Equal(t, "Write a short article about the input topic.", n.Data["prompt"])
		}
	}
}

func TestInstantiate_UnknownTemplate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Instantiate("nope", "x")
	assert.Error(t, err)
}

func TestRegister_Overwrites(t *testing.T) {
	r := NewRegistry()
	custom := domain.Workflow{
		Name:  "Custom",
		Nodes: []domain.Node{{ID: "start", Type: domain.NodeTypeStart}},
	}
	r.Register("custom", custom)

	wf, err := r.Instantiate("custom", "inst")
	require.NoError(t, err)
	require.Len(t, wf.Nodes, 1)
	assert.Equal(t, domain.NodeTypeStart, wf.Nodes[0].Type)
}
