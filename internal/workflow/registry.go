package workflow

import "fmt"

// Registry holds the step processors keyed by id. The workflow order
// is fixed by stepOrder; the registry only checks completeness.
type Registry struct {
	processors map[StepID]StepProcessor
}

func NewRegistry() *Registry {
	return &Registry{processors: make(map[StepID]StepProcessor)}
}

// Register adds a processor. Unknown ids and duplicates are rejected.
func (r *Registry) Register(p StepProcessor) error {
	if StepNumber(p.ID()) == 0 {
		return fmt.Errorf("register: unknown step id %q", p.ID())
	}
	if _, exists := r.processors[p.ID()]; exists {
		return fmt.Errorf("register: step %q already registered", p.ID())
	}
	r.processors[p.ID()] = p
	return nil
}

// Get returns the processor for a step id.
func (r *Registry) Get(id StepID) (StepProcessor, bool) {
	p, ok := r.processors[id]
	return p, ok
}

// Complete reports whether every step in the workflow has a processor.
func (r *Registry) Complete() bool {
	for _, id := range stepOrder {
		if _, ok := r.processors[id]; !ok {
			return false
		}
	}
	return true
}
