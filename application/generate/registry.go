package generate

import (
	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/errors"
)

// ExportRegistry accumulates exported functions and rejects qualified-name
// collisions. Iteration order is insertion order, which keeps generation
// deterministic for a given function list.
type ExportRegistry struct {
	byName map[string]entities.ExportedFunction
	order  []string
}

// NewExportRegistry creates an empty registry.
func NewExportRegistry() *ExportRegistry {
	return &ExportRegistry{byName: make(map[string]entities.ExportedFunction)}
}

// Add registers a function. Two exports with the same qualified name are a
// hard failure reporting both declaration locations.
func (r *ExportRegistry) Add(f entities.ExportedFunction) error {
	if first, exists := r.byName[f.Name]; exists {
		return &errors.DuplicateExportError{Name: f.Name, First: first.Loc, Second: f.Loc}
	}
	r.byName[f.Name] = f
	r.order = append(r.order, f.Name)
	return nil
}

// AddAll registers every function, stopping at the first collision.
func (r *ExportRegistry) AddAll(funcs []entities.ExportedFunction) error {
	for _, f := range funcs {
		if err := r.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// Functions returns the registered functions in insertion order.
func (r *ExportRegistry) Functions() []entities.ExportedFunction {
	out := make([]entities.ExportedFunction, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered exports.
func (r *ExportRegistry) Len() int {
	return len(r.order)
}
