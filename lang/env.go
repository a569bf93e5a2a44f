package lang

import (
	"github.com/ahrtr/gocontainer/set"
	"github.com/lumen-lang/lumen/ast"
)

// Env implements a lexical environment chain.
type Env struct {
	parent    *Env
	values    map[string]Value
	constants set.Interface
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent:    parent,
		values:    make(map[string]Value),
		constants: set.New(),
	}
}

// Declare binds name in the current frame. A name may be declared only once
// per frame; immutable bindings reject later assignment.
func (e *Env) Declare(name string, val Value, mutable bool) (Value, error) {
	if _, ok := e.values[name]; ok {
		return Value{}, NewError(KindDuplicate, ast.Position{}, "variable %s already declared", name)
	}
	e.values[name] = val
	if !mutable {
		e.constants.Add(name)
	}
	return val, nil
}

// Assign updates an existing binding, searching parents if needed.
func (e *Env) Assign(name string, val Value) (Value, error) {
	owner := e.resolve(name)
	if owner == nil {
		return Value{}, NewError(KindNameResolution, ast.Position{}, "variable %s is not defined", name)
	}
	if owner.constants.Contains(name) {
		return Value{}, NewError(KindImmutability, ast.Position{}, "cannot assign to constant %s", name)
	}
	owner.values[name] = val
	return val, nil
}

// Lookup retrieves a binding, searching parents if necessary.
func (e *Env) Lookup(name string) (Value, error) {
	owner := e.resolve(name)
	if owner == nil {
		return Value{}, NewError(KindNameResolution, ast.Position{}, "variable %s is not defined", name)
	}
	return owner.values[name], nil
}

// Remove deletes name from the current frame only.
func (e *Env) Remove(name string) {
	delete(e.values, name)
	e.constants.Remove(name)
}

// Has reports whether name is bound in this frame or any parent.
func (e *Env) Has(name string) bool {
	return e.resolve(name) != nil
}

// Snapshot copies the binding tables of every frame on the chain. Later
// declarations or assignments on either side are not visible to the other;
// arrays and objects are still shared.
func (e *Env) Snapshot() *Env {
	if e == nil {
		return nil
	}
	cp := NewEnv(e.parent.Snapshot())
	for name, val := range e.values {
		cp.values[name] = val
		if e.constants.Contains(name) {
			cp.constants.Add(name)
		}
	}
	return cp
}

func (e *Env) resolve(name string) *Env {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.values[name]; ok {
			return cur
		}
	}
	return nil
}
