package evaluator

import (
	"math/big"

	"github.com/funvibe/serpent/internal/ast"
	"github.com/funvibe/serpent/internal/diagnostics"
)

type ObjectType string

const (
	NUM_OBJ      = "Num"
	STR_OBJ      = "Str"
	BOOL_OBJ     = "Bool"
	NONE_OBJ     = "None"
	LIST_OBJ     = "List"
	DICT_OBJ     = "Dict"
	MODULE_OBJ   = "Module"
	FUNCTION_OBJ = "Function"
	BUILTIN_OBJ  = "Builtin"
	CLASS_OBJ    = "Class"
	INSTANCE_OBJ = "Object"
)

// Object is the closed set of runtime values. The unexported marker keeps
// other packages from adding kinds.
type Object interface {
	Type() ObjectType
	Inspect() string
	object()
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NONE  = &None{}
)

func nativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type Num struct {
	Value *big.Int
}

func NewNum(v int64) *Num { return &Num{Value: big.NewInt(v)} }

func (n *Num) Type() ObjectType { return NUM_OBJ }
func (n *Num) Inspect() string  { return n.Value.String() }
func (n *Num) object()          {}

type Str struct {
	Value string
}

func (s *Str) Type() ObjectType { return STR_OBJ }
func (s *Str) Inspect() string  { return s.Value }
func (s *Str) object()          {}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOL_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}
func (b *Boolean) object() {}

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "None" }
func (n *None) object()          {}

// List owns its element cells; indexing hands out the cells themselves.
type List struct {
	Elements []*Cell
}

func NewList(objs ...Object) *List {
	l := &List{Elements: make([]*Cell, len(objs))}
	for i, obj := range objs {
		l.Elements[i] = NewCell(obj)
	}
	return l
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string  { return inspectList(l) }
func (l *List) object()          {}

// Dict keeps insertion order. Keys are Num, Str, Bool or None.
type Dict struct {
	keys   []Object
	values []*Cell
	index  map[dictKey]int
}

type dictKey struct {
	kind ObjectType
	repr string
}

func NewDict() *Dict {
	return &Dict{index: make(map[dictKey]int)}
}

func hashKey(key Object) (dictKey, *diagnostics.Error) {
	switch key.(type) {
	case *Num, *Str, *Boolean, *None:
		return dictKey{kind: key.Type(), repr: key.Inspect()}, nil
	}
	return dictKey{}, diagnostics.Errorf(diagnostics.ErrT001, "unhashable type: '%s'", key.Type())
}

// Get returns the cell stored under key.
func (d *Dict) Get(key Object) (*Cell, bool, *diagnostics.Error) {
	k, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[k]
	if !ok {
		return nil, false, nil
	}
	return d.values[i], true, nil
}

// Upsert returns the cell stored under key, creating a None cell if absent.
func (d *Dict) Upsert(key Object) (*Cell, *diagnostics.Error) {
	k, err := hashKey(key)
	if err != nil {
		return nil, err
	}
	if i, ok := d.index[k]; ok {
		return d.values[i], nil
	}
	cell := NewCell(NONE)
	d.index[k] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, cell)
	return cell, nil
}

func (d *Dict) Len() int { return len(d.keys) }

// Each visits entries in insertion order.
func (d *Dict) Each(fn func(key Object, value *Cell)) {
	for i, k := range d.keys {
		fn(k, d.values[i])
	}
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string  { return inspectDict(d) }
func (d *Dict) object()          {}

type Module struct {
	Name   string
	Scope  *Scope
	Source string
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string  { return "module<" + m.Name + ">" }
func (m *Module) object()          {}

// Function is a user-defined closure. Env is the scope it was defined in;
// calls create a fresh child of Env, never of the caller's scope.
type Function struct {
	Name   string
	Params []string
	Body   *ast.Node
	Env    *Scope
	Module *Module
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "function<" + f.Name + ">" }
func (f *Function) object()          {}

// BuiltinFunction receives already evaluated arguments. Errors it returns
// carry no range; the call site attaches one.
type BuiltinFunction func(args []Object) (Object, *diagnostics.Error)

type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin<" + b.Name + ">" }
func (b *Builtin) object()          {}

type Class struct {
	Name    string
	Methods map[string]*Function
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "class<" + c.Name + ">" }
func (c *Class) object()          {}

type Instance struct {
	Class *Class
	Props map[string]*Cell
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string  { return "object<" + i.Class.Name + ">" }
func (i *Instance) object()          {}
