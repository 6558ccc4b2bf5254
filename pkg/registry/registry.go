// Package registry manages named workflow templates. Instantiating a
// template deep-clones it and assigns fresh ids, so an instance never
// aliases template state.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/avelst/skein/pkg/domain"
)

// Registry holds the available templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]domain.Workflow
}

// NewRegistry creates a registry preloaded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]domain.Workflow)}
	for name, wf := range builtins() {
		r.Register(name, wf)
	}
	return r
}

// Register adds a template. A template with the same name is overwritten.
// The registry keeps its own clone; later mutations of wf do not leak in.
func (r *Registry) Register(name string, wf domain.Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = domain.Clone(wf)
}

// Names lists the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for name := range r.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Instantiate clones a template into a fresh workflow: new workflow id,
// new node and edge ids, given display name. Edge endpoints are remapped
// to the regenerated node ids.
func (r *Registry) Instantiate(templateName, workflowName string) (domain.Workflow, error) {
	r.mu.RLock()
	tpl, ok := r.templates[templateName]
	r.mu.RUnlock()
	if !ok {
		return domain.Workflow{}, fmt.Errorf("template not found: %s", templateName)
	}

	wf := domain.Clone(tpl)
	wf.ID = uuid.NewString()
	wf.Name = workflowName

	remap := make(map[string]string, len(wf.Nodes))
	for i := range wf.Nodes {
		fresh := uuid.NewString()
		remap[wf.Nodes[i].ID] = fresh
		wf.Nodes[i].ID = fresh
	}
	for i := range wf.Edges {
		wf.Edges[i].ID = uuid.NewString()
		wf.Edges[i].Source = remap[wf.Edges[i].Source]
		wf.Edges[i].Target = remap[wf.Edges[i].Target]
	}
	return wf, nil
}
