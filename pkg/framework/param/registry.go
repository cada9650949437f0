package param

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when a parameter id is registered twice
var ErrDuplicateID = errors.New("param: duplicate id")

// Change is one automation value aimed at a parameter by registry index
type Change struct {
	Index        int
	Normalized   float64
	SampleOffset int
}

// Registry manages plugin parameters.
//
// Parameters are registered while the plugin is being constructed. After
// that the set is fixed, so lookups take no lock and are safe from the
// render goroutine; only the values inside each Parameter change.
type Registry struct {
	params []*Parameter
	index  map[string]int
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make([]*Parameter, 0, 64),
		index:  make(map[string]int),
	}
}

// Register adds parameters in order. It stops at the first duplicate id
// or invalid range, keeping the parameters registered before it.
func (r *Registry) Register(params ...*Parameter) error {
	for _, p := range params {
		if p == nil {
			return fmt.Errorf("param: nil parameter")
		}
		if err := p.validate(); err != nil {
			return err
		}
		if _, exists := r.index[p.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		r.index[p.ID] = len(r.params)
		r.params = append(r.params, p)
	}
	return nil
}

// Get retrieves a parameter by ID, nil when absent
func (r *Registry) Get(id string) *Parameter {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return r.params[i]
}

// GetByIndex retrieves a parameter by index, nil when out of range
func (r *Registry) GetByIndex(index int) *Parameter {
	if index < 0 || index >= len(r.params) {
		return nil
	}
	return r.params[index]
}

// IndexOf returns the registration index of id
func (r *Registry) IndexOf(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	return len(r.params)
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	result := make([]*Parameter, len(r.params))
	copy(result, r.params)
	return result
}

// Descriptors returns a snapshot of every parameter description in order
func (r *Registry) Descriptors() []Descriptor {
	result := make([]Descriptor, len(r.params))
	for i, p := range r.params {
		result[i] = p.Descriptor()
	}
	return result
}

// ByCategory returns the parameters of one category in registration order
func (r *Registry) ByCategory(c Category) []*Parameter {
	var result []*Parameter
	for _, p := range r.params {
		if p.Category == c {
			result = append(result, p)
		}
	}
	return result
}

// Values returns the raw value of every parameter keyed by id
func (r *Registry) Values() map[string]float64 {
	values := make(map[string]float64, len(r.params))
	for _, p := range r.params {
		values[p.ID] = p.Raw()
	}
	return values
}

// SetValues writes plain values by id, skipping unknown ids.
// It returns how many values were applied.
func (r *Registry) SetValues(values map[string]float64) int {
	applied := 0
	for id, v := range values {
		if p := r.Get(id); p != nil {
			p.Set(v)
			applied++
		}
	}
	return applied
}

// ApplyChanges applies each change immediately, ignoring SampleOffset.
// Changes aimed at unknown indices are dropped.
func (r *Registry) ApplyChanges(changes []Change) {
	for _, c := range changes {
		r.ApplyChange(c)
	}
}

// ApplyChange applies a single change immediately
func (r *Registry) ApplyChange(c Change) {
	if p := r.GetByIndex(c.Index); p != nil {
		p.SetNormalized(c.Normalized)
	}
}

// ResetAll restores every parameter to its default
func (r *Registry) ResetAll() {
	for _, p := range r.params {
		p.Reset()
	}
}
