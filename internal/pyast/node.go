package pyast

import "fmt"

// Prim is a primitive field value: a string, a number, a bool or none.
type Prim struct {
	kind primKind
	s    string
	f    float64
	b    bool
}

type primKind int

const (
	primNone primKind = iota
	primStr
	primNum
	primBool
)

// None is the absent primitive value; it is also the zero Prim.
var None = Prim{}

func StrPrim(s string) Prim  { return Prim{kind: primStr, s: s} }
func NumPrim(f float64) Prim { return Prim{kind: primNum, f: f} }
func BoolPrim(b bool) Prim   { return Prim{kind: primBool, b: b} }

func (p Prim) IsNone() bool { return p.kind == primNone }

func (p Prim) Str() (string, bool)  { return p.s, p.kind == primStr }
func (p Prim) Num() (float64, bool) { return p.f, p.kind == primNum }
func (p Prim) Bool() (bool, bool)   { return p.b, p.kind == primBool }

// Value returns the dynamic form used by the codecs: string, float64, bool
// or nil.
func (p Prim) Value() any {
	switch p.kind {
	case primStr:
		return p.s
	case primNum:
		return p.f
	case primBool:
		return p.b
	default:
		return nil
	}
}

// PrimOf converts a dynamic value into a Prim; ok is false for unsupported
// types.
func PrimOf(v any) (Prim, bool) {
	switch t := v.(type) {
	case nil:
		return None, true
	case string:
		return StrPrim(t), true
	case float64:
		return NumPrim(t), true
	case bool:
		return BoolPrim(t), true
	default:
		return None, false
	}
}

type fieldValue struct {
	child *Node
	nodes []*Node
	prim  Prim
}

// Node is one syntax tree node. Fields are accessed by name; the kind's
// schema fixes which names exist and what they hold. Accessing a field that
// the schema does not define, or with the wrong accessor, is a programmer
// error and panics.
type Node struct {
	Kind   Kind
	fields map[string]fieldValue
}

// New creates a node of the given kind with all fields at their zero values
// (nil children, empty lists, none primitives).
func New(kind Kind) *Node {
	if _, ok := schemas[kind]; !ok {
		panic(fmt.Sprintf("pyast: unknown kind %v", kind))
	}
	return &Node{Kind: kind, fields: make(map[string]fieldValue)}
}

func (n *Node) def(name string, want FieldType) FieldDef {
	def, ok := fieldDef(n.Kind, name)
	if !ok {
		panic(fmt.Sprintf("pyast: %s has no field %q", n.Kind, name))
	}
	if def.Type != want {
		panic(fmt.Sprintf("pyast: field %s.%s is not accessed as its schema type", n.Kind, name))
	}
	return def
}

// Child returns a single-child field; nil when absent.
func (n *Node) Child(name string) *Node {
	n.def(name, FieldChild)
	return n.fields[name].child
}

// SetChild replaces a single-child field, nil meaning absent.
func (n *Node) SetChild(name string, c *Node) *Node {
	n.def(name, FieldChild)
	n.fields[name] = fieldValue{child: c}
	return n
}

// List returns a list field. The returned slice is the node's own storage;
// callers that mutate entries in place are performing a structural edit.
func (n *Node) List(name string) []*Node {
	n.def(name, FieldList)
	return n.fields[name].nodes
}

// SetList replaces a list field outright.
func (n *Node) SetList(name string, nodes []*Node) *Node {
	n.def(name, FieldList)
	n.fields[name] = fieldValue{nodes: nodes}
	return n
}

// Append adds nodes to the end of a list field.
func (n *Node) Append(name string, nodes ...*Node) *Node {
	n.def(name, FieldList)
	fv := n.fields[name]
	fv.nodes = append(fv.nodes, nodes...)
	n.fields[name] = fv
	return n
}

// Prim returns a primitive field; None when unset.
func (n *Node) Prim(name string) Prim {
	n.def(name, FieldPrim)
	return n.fields[name].prim
}

// SetPrim replaces a primitive field.
func (n *Node) SetPrim(name string, p Prim) *Node {
	n.def(name, FieldPrim)
	n.fields[name] = fieldValue{prim: p}
	return n
}

// Str returns a string primitive field, or "" when it holds none.
func (n *Node) Str(name string) string {
	s, _ := n.Prim(name).Str()
	return s
}

// SetStr sets a string primitive field.
func (n *Node) SetStr(name, s string) *Node {
	return n.SetPrim(name, StrPrim(s))
}

// Fields returns the node's field definitions in traversal order:
// statement-list field names last, each group sorted by name.
func (n *Node) Fields() []FieldDef {
	return orderedSchemas[n.Kind]
}

// IsBlockField reports whether the named field of this node is a statement
// block: a list-typed field with a statement-list name.
func (n *Node) IsBlockField(name string) bool {
	def, ok := fieldDef(n.Kind, name)
	return ok && IsStmtListField(def.Name, def.Type)
}
