// SPDX-License-Identifier: MIT

package nn

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Parameter is one named trainable tensor. Name is "<layer>/<param>".
// Value shape is fixed at creation; its entries change only inside ParamSet.Update.
type Parameter struct {
	Name  string
	Value *mat.Dense
}

// Size returns the number of scalars held by p.
func (p *Parameter) Size() int {
	r, c := p.Value.Dims()

	return r * c
}

// ParamSet is the parameter collection of one layer, optionally linked to the
// sets of the sub-layers it composes.
//
// Locking: forward passes hold RLock for their whole duration; Update holds the
// write lock of this set and of every linked child (parent first, depth-first),
// so an optimizer step never interleaves with a forward pass on the same layer.
type ParamSet struct {
	mu       sync.RWMutex
	owner    string
	params   []*Parameter
	index    map[string]*Parameter
	children []*ParamSet
}

// NewParamSet returns an empty set owned by the layer named owner.
func NewParamSet(owner string) *ParamSet {
	return &ParamSet{owner: owner, index: make(map[string]*Parameter)}
}

// Owner returns the owning layer name.
func (ps *ParamSet) Owner() string { return ps.owner }

// Add registers value under "<owner>/<name>" and returns the new Parameter.
func (ps *ParamSet) Add(name string, value *mat.Dense) (*Parameter, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if _, ok := ps.index[name]; ok {
		return nil, fmt.Errorf("%s/%s: %w", ps.owner, name, ErrDuplicateParameter)
	}
	p := &Parameter{Name: ps.owner + "/" + name, Value: value}
	ps.params = append(ps.params, p)
	ps.index[name] = p

	return p, nil
}

// Link attaches child sets so that Parameters and Update cover them.
func (ps *ParamSet) Link(children ...*ParamSet) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.children = append(ps.children, children...)
}

// Get returns the parameter registered under the short name, or nil.
func (ps *ParamSet) Get(name string) *Parameter {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return ps.index[name]
}

// Parameters returns this set's parameters followed by every linked child's,
// in registration order.
func (ps *ParamSet) Parameters() []*Parameter {
	ps.mu.RLock()
	out := make([]*Parameter, len(ps.params))
	copy(out, ps.params)
	children := ps.children
	ps.mu.RUnlock()
	for _, c := range children {
		out = append(out, c.Parameters()...)
	}

	return out
}

// Size returns the total number of scalars across Parameters().
func (ps *ParamSet) Size() int {
	n := 0
	for _, p := range ps.Parameters() {
		n += p.Size()
	}

	return n
}

// RLock acquires the read side for a forward pass.
func (ps *ParamSet) RLock() { ps.mu.RLock() }

// RUnlock releases the read side.
func (ps *ParamSet) RUnlock() { ps.mu.RUnlock() }

// Update runs fn with exclusive access to every parameter in the set tree.
// fn may overwrite entries in place or replace a Value with a matrix of the
// same shape. A replacement of a different shape is rolled back and reported
// as ErrShapeChanged; an error returned by fn is passed through unchanged.
func (ps *ParamSet) Update(fn func(params []*Parameter) error) error {
	unlock := ps.lockAll()
	defer unlock()

	params := ps.collectLocked()
	type snap struct {
		value      *mat.Dense
		rows, cols int
	}
	before := make([]snap, len(params))
	for i, p := range params {
		r, c := p.Value.Dims()
		before[i] = snap{p.Value, r, c}
	}
	if err := fn(params); err != nil {
		return err
	}
	for i, p := range params {
		if p.Value == nil {
			p.Value = before[i].value
			return fmt.Errorf("%s: nil value: %w", p.Name, ErrShapeChanged)
		}
		r, c := p.Value.Dims()
		if r != before[i].rows || c != before[i].cols {
			p.Value = before[i].value
			return fmt.Errorf("%s: expected %d×%d, got %d×%d: %w",
				p.Name, before[i].rows, before[i].cols, r, c, ErrShapeChanged)
		}
	}

	return nil
}

func (ps *ParamSet) lockAll() func() {
	ps.mu.Lock()
	unlocks := []func(){ps.mu.Unlock}
	for _, c := range ps.children {
		unlocks = append(unlocks, c.lockAll())
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// collectLocked is Parameters without locking; callers hold lockAll.
func (ps *ParamSet) collectLocked() []*Parameter {
	out := append([]*Parameter(nil), ps.params...)
	for _, c := range ps.children {
		out = append(out, c.collectLocked()...)
	}

	return out
}
