package pyast

import "sort"

// FieldType says what a field holds.
type FieldType int

const (
	FieldChild FieldType = iota // a single child node, possibly absent
	FieldList                   // an ordered list of children; entries may be absent
	FieldPrim                   // a primitive: string, number, bool or none
)

// FieldDef is one named field in a kind's schema.
type FieldDef struct {
	Name string
	Type FieldType
}

// stmtListFieldNames are the field names that hold statement lists (block
// bodies). Field ordering and block detection both key off this set.
var stmtListFieldNames = map[string]bool{
	"body":      true,
	"orelse":    true,
	"finalbody": true,
}

// IsStmtListField reports whether a list-valued field with this name holds a
// statement block. Lambda's "body" is a single expression, not a block, so
// the field type matters as much as the name.
func IsStmtListField(name string, typ FieldType) bool {
	return stmtListFieldNames[name] && typ == FieldList
}

func child(name string) FieldDef { return FieldDef{Name: name, Type: FieldChild} }
func list(name string) FieldDef  { return FieldDef{Name: name, Type: FieldList} }
func prim(name string) FieldDef  { return FieldDef{Name: name, Type: FieldPrim} }

var schemas = map[Kind][]FieldDef{
	KindModule: {list("body")},
	KindFunctionDef: {
		prim("name"), child("args"), list("body"), list("decorator_list"), child("returns"),
	},
	KindAsyncFunctionDef: {
		prim("name"), child("args"), list("body"), list("decorator_list"), child("returns"),
	},
	KindClassDef: {
		prim("name"), list("bases"), list("keywords"), list("body"), list("decorator_list"),
	},
	KindReturn:     {child("value")},
	KindDelete:     {list("targets")},
	KindAssign:     {list("targets"), child("value")},
	KindAnnAssign:  {child("target"), child("annotation"), child("value"), prim("simple")},
	KindFor:        {child("target"), child("iter"), list("body"), list("orelse")},
	KindWhile:      {child("test"), list("body"), list("orelse")},
	KindIf:         {child("test"), list("body"), list("orelse")},
	KindWith:       {list("items"), list("body")},
	KindRaise:      {child("exc"), child("cause")},
	KindTry:        {list("body"), list("handlers"), list("orelse"), list("finalbody")},
	KindImport:     {list("names")},
	KindImportFrom: {prim("module"), list("names"), prim("level")},
	KindExprStmt:   {child("value")},
	KindPass:       {},
	KindBreak:      {},
	KindContinue:   {},
	KindAugAssign:  {child("target"), child("op"), child("value")},
	KindAssert:     {child("test"), child("msg")},
	// Global and Nonlocal carry their identifiers wrapped as Name nodes; the
	// front end emits them that way because list fields hold nodes only.
	KindGlobal:   {list("names")},
	KindNonlocal: {list("names")},

	KindBoolOp:         {child("op"), list("values")},
	KindBinOp:          {child("left"), child("op"), child("right")},
	KindUnaryOp:        {child("op"), child("operand")},
	KindLambda:         {child("args"), child("body")},
	KindDict:           {list("keys"), list("values")},
	KindSet:            {list("elts")},
	KindCompare:        {child("left"), list("ops"), list("comparators")},
	KindCall:           {child("func"), list("args"), list("keywords")},
	KindNum:            {prim("n")},
	KindStr:            {prim("s")},
	KindBytes:          {prim("s")},
	KindNameConstant:   {prim("value")},
	KindJoinedStr:      {list("values")},
	KindFormattedValue: {child("value"), prim("conversion"), child("format_spec")},
	KindAttribute:      {child("value"), prim("attr"), prim("ctx")},
	KindSubscript:      {child("value"), child("slice"), prim("ctx")},
	KindIndex:          {child("value")},
	KindStarred:        {child("value"), prim("ctx")},
	KindName:           {prim("id"), prim("ctx")},
	KindList:           {list("elts"), prim("ctx")},
	KindTuple:          {list("elts"), prim("ctx")},
	KindAwait:          {child("value")},
	KindIfExp:          {child("test"), child("body"), child("orelse")},
	KindYield:          {child("value")},
	KindYieldFrom:      {child("value")},
	KindListComp:       {child("elt"), list("generators")},
	KindSetComp:        {child("elt"), list("generators")},
	KindDictComp:       {child("key"), child("value"), list("generators")},
	KindGeneratorExp:   {child("elt"), list("generators")},
	KindSlice:          {child("lower"), child("upper"), child("step")},

	KindArguments: {
		list("args"), child("vararg"), list("kwonlyargs"),
		list("kw_defaults"), child("kwarg"), list("defaults"),
	},
	KindArg:           {prim("arg"), child("annotation")},
	KindKeyword:       {prim("arg"), child("value")},
	KindAlias:         {prim("name"), prim("asname")},
	KindExceptHandler: {child("type"), prim("name"), list("body")},
	KindWithItem:      {child("context_expr"), child("optional_vars")},
	KindOp:            {prim("name")},
	KindComprehension: {child("target"), child("iter"), list("ifs"), prim("is_async")},
}

// orderedSchemas holds each kind's fields in traversal order: fields whose
// names are not in the statement-list set sort first, then the rest; within
// each group, by name. Expression-level rewrites within a statement are
// therefore computed before the engine descends into nested blocks.
var orderedSchemas = func() map[Kind][]FieldDef {
	m := make(map[Kind][]FieldDef, len(schemas))
	for k, defs := range schemas {
		ordered := append([]FieldDef(nil), defs...)
		sort.SliceStable(ordered, func(i, j int) bool {
			si, sj := stmtListFieldNames[ordered[i].Name], stmtListFieldNames[ordered[j].Name]
			if si != sj {
				return !si
			}
			return ordered[i].Name < ordered[j].Name
		})
		m[k] = ordered
	}
	return m
}()

// Schema returns the kind's fields in declaration order.
func Schema(k Kind) []FieldDef {
	return schemas[k]
}

func fieldDef(k Kind, name string) (FieldDef, bool) {
	for _, def := range schemas[k] {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDef{}, false
}
