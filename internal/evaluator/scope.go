package evaluator

import (
	"github.com/funvibe/serpent/internal/diagnostics"
	"github.com/funvibe/serpent/internal/token"
)

// Cell is an addressable slot holding one value. Names and container
// elements alias by sharing a cell; assignment writes through it.
type Cell struct {
	obj     Object
	Mutable bool
}

func NewCell(obj Object) *Cell {
	return &Cell{obj: obj, Mutable: true}
}

// NewImmutableCell is used for self, import bindings and builtins.
func NewImmutableCell(obj Object) *Cell {
	return &Cell{obj: obj}
}

func (c *Cell) Get() Object {
	return c.obj
}

func (c *Cell) Set(obj Object) *diagnostics.Error {
	if !c.Mutable {
		return diagnostics.Errorf(diagnostics.ErrC001, "cannot assign to immutable binding")
	}
	c.obj = obj
	return nil
}

type ScopeKind int

const (
	BuiltinScope ScopeKind = iota
	ModuleScope
	FunctionScope
	MethodScope
)

func (k ScopeKind) String() string {
	switch k {
	case BuiltinScope:
		return "builtin"
	case ModuleScope:
		return "module"
	case FunctionScope:
		return "function"
	case MethodScope:
		return "method"
	}
	return "??"
}

// Scope is a name to cell table. Lookups walk the parent chain; the builtin
// scope is the root.
type Scope struct {
	Kind   ScopeKind
	Name   string
	parent *Scope
	store  map[string]*Cell
}

func NewScope(kind ScopeKind, name string, parent *Scope) *Scope {
	return &Scope{Kind: kind, Name: name, parent: parent, store: make(map[string]*Cell)}
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Lookup(name string) (*Cell, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if cell, ok := scope.store[name]; ok {
			return cell, true
		}
	}
	return nil, false
}

func (s *Scope) Local(name string) (*Cell, bool) {
	cell, ok := s.store[name]
	return cell, ok
}

// Define binds name to cell in this scope, replacing any previous binding.
func (s *Scope) Define(name string, cell *Cell) {
	s.store[name] = cell
}

// Upsert returns the local cell for name, creating a None cell if absent.
func (s *Scope) Upsert(name string) *Cell {
	if cell, ok := s.store[name]; ok {
		return cell
	}
	cell := NewCell(NONE)
	s.store[name] = cell
	return cell
}

// Frame is one activation: the scope statements run in, the slot a return
// statement fills and the caller's frame.
type Frame struct {
	Scope  *Scope
	Return Object
	Parent *Frame
	Module *Module
	Name   string
	Call   token.Range
}

type signal int

const (
	ctlNone signal = iota
	ctlReturn
)
