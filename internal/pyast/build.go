package pyast

// Expression contexts, stored as the "ctx" primitive on reference nodes.
const (
	CtxLoad  = "load"
	CtxStore = "store"
	CtxDel   = "del"
)

// Builder helpers for the node shapes fixers synthesize. Fields not set
// here keep their zero values.

// NewName builds an identifier reference.
func NewName(id, ctx string) *Node {
	return New(KindName).SetStr("id", id).SetStr("ctx", ctx)
}

// NewStr builds a string literal.
func NewStr(s string) *Node {
	return New(KindStr).SetStr("s", s)
}

// NewNum builds a numeric literal.
func NewNum(f float64) *Node {
	return New(KindNum).SetPrim("n", NumPrim(f))
}

// NewNone builds the `None` constant.
func NewNone() *Node {
	return New(KindNameConstant).SetPrim("value", None)
}

// NewAttribute builds `value.attr`.
func NewAttribute(value *Node, attr, ctx string) *Node {
	return New(KindAttribute).SetChild("value", value).SetStr("attr", attr).SetStr("ctx", ctx)
}

// NewCall builds `fn(args..., keywords...)`.
func NewCall(fn *Node, args, keywords []*Node) *Node {
	return New(KindCall).SetChild("func", fn).SetList("args", args).SetList("keywords", keywords)
}

// NewAssign builds `target = value` with a single target.
func NewAssign(target, value *Node) *Node {
	return New(KindAssign).SetList("targets", []*Node{target}).SetChild("value", value)
}

// NewReturn builds `return value`.
func NewReturn(value *Node) *Node {
	return New(KindReturn).SetChild("value", value)
}

// NewExprStmt wraps an expression as a statement.
func NewExprStmt(value *Node) *Node {
	return New(KindExprStmt).SetChild("value", value)
}

// NewDelete builds `del name`.
func NewDelete(name string) *Node {
	return New(KindDelete).SetList("targets", []*Node{NewName(name, CtxDel)})
}

// NewStarred builds `*value`.
func NewStarred(value *Node) *Node {
	return New(KindStarred).SetChild("value", value).SetStr("ctx", CtxLoad)
}

// NewSubscript builds `value[index]`.
func NewSubscript(value, index *Node, ctx string) *Node {
	return New(KindSubscript).
		SetChild("value", value).
		SetChild("slice", New(KindIndex).SetChild("value", index)).
		SetStr("ctx", ctx)
}

// NewMethodCall builds `recv.method(args...)`.
func NewMethodCall(recv *Node, method string, args ...*Node) *Node {
	return NewCall(NewAttribute(recv, method, CtxLoad), args, nil)
}

// NewImport builds `import name`.
func NewImport(name string) *Node {
	alias := New(KindAlias).SetStr("name", name)
	return New(KindImport).SetList("names", []*Node{alias})
}

// NewImportFrom builds `from module import name`.
func NewImportFrom(module, name string) *Node {
	alias := New(KindAlias).SetStr("name", name)
	return New(KindImportFrom).
		SetStr("module", module).
		SetList("names", []*Node{alias}).
		SetPrim("level", NumPrim(0))
}

// IsLiteral reports whether the node is a literal constant, the only
// default values the keyword-only inlining fixer can reproduce without
// changing evaluation timing.
func IsLiteral(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindStr, KindBytes, KindNum, KindNameConstant:
		return true
	default:
		return false
	}
}
