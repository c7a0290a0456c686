// Package pyast is a generic representation of a Python syntax tree: typed
// nodes with named fields, where a field holds a single child node, an
// ordered list of children, or a primitive value. The set of kinds and the
// field schema per kind are closed; they mirror the node classes the
// external front end emits.
package pyast

import "fmt"

// Kind is a node's syntactic discriminant.
type Kind int

const (
	KindInvalid Kind = iota

	// Statements.
	KindModule
	KindFunctionDef
	KindAsyncFunctionDef
	KindClassDef
	KindReturn
	KindDelete
	KindAssign
	KindAnnAssign
	KindFor
	KindWhile
	KindIf
	KindWith
	KindRaise
	KindTry
	KindImport
	KindImportFrom
	KindExprStmt
	KindPass
	KindBreak
	KindContinue
	KindAugAssign
	KindAssert
	KindGlobal
	KindNonlocal

	// Expressions.
	KindBoolOp
	KindBinOp
	KindUnaryOp
	KindLambda
	KindDict
	KindSet
	KindCompare
	KindCall
	KindNum
	KindStr
	KindBytes
	KindNameConstant
	KindJoinedStr
	KindFormattedValue
	KindAttribute
	KindSubscript
	KindIndex
	KindStarred
	KindName
	KindList
	KindTuple
	KindAwait
	KindIfExp
	KindYield
	KindYieldFrom
	KindListComp
	KindSetComp
	KindDictComp
	KindGeneratorExp
	KindSlice

	// Auxiliary nodes.
	KindArguments
	KindArg
	KindKeyword
	KindAlias
	KindExceptHandler
	KindWithItem
	KindOp
	KindComprehension
)

// kindNames uses the class names of the front end's AST so that serialized
// trees round-trip without a mapping layer. "Expr" is the expression
// statement wrapper, not an expression.
var kindNames = map[Kind]string{
	KindModule:           "Module",
	KindFunctionDef:      "FunctionDef",
	KindAsyncFunctionDef: "AsyncFunctionDef",
	KindClassDef:         "ClassDef",
	KindReturn:           "Return",
	KindDelete:           "Delete",
	KindAssign:           "Assign",
	KindAnnAssign:        "AnnAssign",
	KindFor:              "For",
	KindWhile:            "While",
	KindIf:               "If",
	KindWith:             "With",
	KindRaise:            "Raise",
	KindTry:              "Try",
	KindImport:           "Import",
	KindImportFrom:       "ImportFrom",
	KindExprStmt:         "Expr",
	KindPass:             "Pass",
	KindBreak:            "Break",
	KindContinue:         "Continue",
	KindAugAssign:        "AugAssign",
	KindAssert:           "Assert",
	KindGlobal:           "Global",
	KindNonlocal:         "Nonlocal",
	KindBoolOp:           "BoolOp",
	KindBinOp:            "BinOp",
	KindUnaryOp:          "UnaryOp",
	KindLambda:           "Lambda",
	KindDict:             "Dict",
	KindSet:              "Set",
	KindCompare:          "Compare",
	KindCall:             "Call",
	KindNum:              "Num",
	KindStr:              "Str",
	KindBytes:            "Bytes",
	KindNameConstant:     "NameConstant",
	KindJoinedStr:        "JoinedStr",
	KindFormattedValue:   "FormattedValue",
	KindAttribute:        "Attribute",
	KindSubscript:        "Subscript",
	KindIndex:            "Index",
	KindStarred:          "Starred",
	KindName:             "Name",
	KindList:             "List",
	KindTuple:            "Tuple",
	KindAwait:            "Await",
	KindIfExp:            "IfExp",
	KindYield:            "Yield",
	KindYieldFrom:        "YieldFrom",
	KindListComp:         "ListComp",
	KindSetComp:          "SetComp",
	KindDictComp:         "DictComp",
	KindGeneratorExp:     "GeneratorExp",
	KindSlice:            "Slice",
	KindArguments:        "arguments",
	KindArg:              "arg",
	KindKeyword:          "keyword",
	KindAlias:            "alias",
	KindExceptHandler:    "ExceptHandler",
	KindWithItem:         "withitem",
	KindOp:               "op",
	KindComprehension:    "comprehension",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindByName resolves a serialized kind name; ok is false for unknown names.
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}
