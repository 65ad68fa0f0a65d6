package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// DeclKind records how a binding was introduced; redeclaration and
// assignment rules depend on it.
type DeclKind string

const (
	DeclVar      DeclKind = "var"
	DeclLet      DeclKind = "let"
	DeclConst    DeclKind = "const"
	DeclFunction DeclKind = "function"
)

// Cell is a mutable variable slot. Scopes and closures share cells by
// pointer: capturing never copies, so a mutation through any owner is
// visible to all of them.
type Cell struct {
	mu    sync.RWMutex
	kind  DeclKind
	value Value
}

func NewCell(kind DeclKind, value Value) *Cell {
	return &Cell{kind: kind, value: value}
}

func (c *Cell) DeclKind() DeclKind { return c.kind }

func (c *Cell) Value() Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell) SetValue(value Value) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Environment provides lexical scoping: an insertion-ordered name-to-cell
// mapping with a parent link. Lookups walk outward, innermost first. The
// mutex matters because suspended generator bodies live on their own
// goroutines and share outer scopes with their caller.
type Environment struct {
	names  []string
	cells  map[string]*Cell
	parent *Environment
	mu     sync.RWMutex
	data   any
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		cells:  make(map[string]*Cell),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Declare creates a new cell in this scope. A let/const name clashing with
// any existing binding in the same scope is a redeclaration error; var and
// function redeclarations reuse the existing cell so prior captures stay
// aliased.
func (e *Environment) Declare(kind DeclKind, name string, value Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.cells[name]; ok {
		if kind == DeclLet || kind == DeclConst || existing.kind == DeclLet || existing.kind == DeclConst {
			return fmt.Errorf("Identifier '%s' has already been declared", name)
		}
		existing.SetValue(value)
		return nil
	}
	e.names = append(e.names, name)
	e.cells[name] = NewCell(kind, value)
	return nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	cell, ok := e.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s is not defined", name)
	}
	return cell.Value(), nil
}

// GetCell returns the nearest cell bound to name, walking outward.
func (e *Environment) GetCell(name string) (*Cell, bool) {
	return e.lookup(name)
}

func (e *Environment) lookup(name string) (*Cell, bool) {
	e.mu.RLock()
	cell, ok := e.cells[name]
	parent := e.parent
	e.mu.RUnlock()
	if ok {
		return cell, true
	}
	if parent != nil {
		return parent.lookup(name)
	}
	return nil, false
}

// Assign mutates the nearest existing cell in place. Assignment never
// implicitly creates globals, and const cells reject writes.
func (e *Environment) Assign(name string, value Value) error {
	cell, ok := e.lookup(name)
	if !ok {
		return fmt.Errorf("%s is not defined", name)
	}
	if cell.kind == DeclConst {
		return fmt.Errorf("Assignment to constant variable '%s'", name)
	}
	cell.SetValue(value)
	return nil
}

// Has reports whether the binding exists anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.lookup(name)
	return ok
}

// HasInCurrentScope reports whether the binding exists in this scope only.
func (e *Environment) HasInCurrentScope(name string) bool {
	e.mu.RLock()
	_, ok := e.cells[name]
	e.mu.RUnlock()
	return ok
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.cells))
	for k := range e.cells {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the current bindings of this scope. Iteration
// order is unspecified; Keys provides a sorted listing.
func (e *Environment) Snapshot() map[string]Value {
	e.mu.RLock()
	out := make(map[string]Value, len(e.cells))
	for name, cell := range e.cells {
		out[name] = cell.Value()
	}
	e.mu.RUnlock()
	return out
}

// Capture flattens the scope chain into a closure environment: walking
// outward, the first cell seen per name wins, mirroring the shadowing rule.
// The cells themselves are shared, never copied, so the closure observes
// later mutations of free variables and vice versa.
func (e *Environment) Capture() *Environment {
	closure := NewEnvironment(nil)
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		names := make([]string, len(env.names))
		copy(names, env.names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			closure.names = append(closure.names, name)
			closure.cells[name] = env.cells[name]
		}
		env.mu.RUnlock()
	}
	return closure
}

// Extend creates a child scope of the current environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Depth counts the scopes from here to the global scope, innermost included.
func (e *Environment) Depth() int {
	depth := 0
	for env := e; env != nil; env = env.parent {
		depth++
	}
	return depth
}

// SetRuntimeData attaches interpreter-specific metadata to the environment.
// The generator machinery uses it to find the owning handle from any scope
// inside a generator body.
func (e *Environment) SetRuntimeData(data any) {
	e.mu.Lock()
	e.data = data
	e.mu.Unlock()
}

// RuntimeData returns the metadata associated with this environment,
// falling back to parents.
func (e *Environment) RuntimeData() any {
	e.mu.RLock()
	data := e.data
	parent := e.parent
	e.mu.RUnlock()
	if data != nil {
		return data
	}
	if parent != nil {
		return parent.RuntimeData()
	}
	return nil
}
