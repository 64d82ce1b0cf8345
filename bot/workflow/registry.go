package workflow

import "fmt"

// Registry catalogs the workflow definitions available to the bot.
// Populated once at startup, read-only afterwards.
type Registry struct {
	defs  map[WorkflowID]*Definition
	order []WorkflowID
}

// NewRegistry creates an empty workflow registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[WorkflowID]*Definition)}
}

// Register adds a definition. The first step must exist; authoring errors
// surface at startup, not mid-conversation.
func (r *Registry) Register(d *Definition) error {
	if _, ok := r.defs[d.ID]; ok {
		return fmt.Errorf("workflow already registered: %s", d.ID)
	}
	if _, ok := d.Steps[d.First]; !ok {
		return fmt.Errorf("workflow %s: first step %q not defined", d.ID, d.First)
	}
	for id, s := range d.Steps {
		if s.Type == StepService && s.Service == nil {
			return fmt.Errorf("workflow %s: service step %q has no service call", d.ID, id)
		}
	}
	r.defs[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

// Get returns a definition by id.
func (r *Registry) Get(id WorkflowID) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Visible lists the workflows a session may start from the menu, in
// registration order. System workflows are never listed.
func (r *Registry) Visible() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		if d := r.defs[id]; !d.System {
			out = append(out, d)
		}
	}
	return out
}
