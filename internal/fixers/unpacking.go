package fixers

import (
	"fmt"
	"slices"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// maxBlockGrowth bounds the fixed-point expansion loop. Each pass is
// expected to strictly reduce unpacking nesting depth, so a block growing
// past 100x its initial length indicates an internal error; aborting early
// beats running out of memory.
const maxBlockGrowth = 100

// unpackingGeneralizations eliminates multi-spread argument and keyword
// unpacking (anything following a spread in a call or literal) by
// materializing the sequence into a temporary collection built with
// ordinary statements, then spreading that single temporary. Hoisted
// statements splice immediately before the statement containing the
// rewritten expression; the temporary is deleted right after, unless the
// statement is a return. Expressions inside a lambda body cannot host
// hoisted siblings, so the lambda becomes a named function whose body is
// the hoisted sequence followed by a return.
type unpackingGeneralizations struct {
	importTracker
	tmpIndex int
}

func NewUnpackingGeneralizations() Fixer { return &unpackingGeneralizations{} }

func (f *unpackingGeneralizations) Name() string { return "unpacking-generalizations" }

func (f *unpackingGeneralizations) Window() version.Window { return version.Apply("2.0", "3.4") }

func (f *unpackingGeneralizations) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	if err := f.expandBlock(module, "body"); err != nil {
		return nil, err
	}
	return module, nil
}

// valueUpdate is the result of rewriting one expression: statements to
// hoist before the containing statement, the replacement expression, and
// the cleanup (del) statements for the temporaries it introduced.
type valueUpdate struct {
	prefix  []*pyast.Node
	node    *pyast.Node
	cleanup []*pyast.Node
}

// expanded is a field-level update: the field itself has already been
// mutated, only the hoisted and cleanup statements remain for the caller
// to splice.
type expanded struct {
	prefix  []*pyast.Node
	cleanup []*pyast.Node
}

func isArgUnpackKind(k pyast.Kind) bool {
	switch k {
	case pyast.KindCall, pyast.KindList, pyast.KindTuple, pyast.KindSet:
		return true
	}
	return false
}

func isKwargUnpackKind(k pyast.Kind) bool {
	return k == pyast.KindCall || k == pyast.KindDict
}

// hasArgsUnpacking reports whether any positional spread is followed by
// another element. A single trailing spread needs no rewrite.
func hasArgsUnpacking(n *pyast.Node) bool {
	var elts []*pyast.Node
	if n.Kind == pyast.KindCall {
		elts = n.List("args")
	} else {
		// A list or tuple in store or del context is an assignment target;
		// a starred element there is a binding pattern, not a spread.
		if n.Kind != pyast.KindSet {
			if ctx := n.Str("ctx"); ctx == pyast.CtxStore || ctx == pyast.CtxDel {
				return false
			}
		}
		elts = n.List("elts")
	}
	sawStarred := false
	for _, elt := range elts {
		if sawStarred {
			return true
		}
		sawStarred = elt != nil && elt.Kind == pyast.KindStarred
	}
	return false
}

// hasKwargsUnpacking is the keyword analogue: anything after a ** spread
// forces the rewrite.
func hasKwargsUnpacking(n *pyast.Node) bool {
	sawSpread := false
	if n.Kind == pyast.KindCall {
		for _, kw := range n.List("keywords") {
			if sawSpread {
				return true
			}
			sawSpread = kw.Prim("arg").IsNone()
		}
		return false
	}
	for _, key := range n.List("keys") {
		if sawSpread {
			return true
		}
		sawSpread = key == nil
	}
	return false
}

func (f *unpackingGeneralizations) freshName(base string) string {
	name := fmt.Sprintf("%s_%d", base, f.tmpIndex)
	f.tmpIndex++
	return name
}

// expandArgs materializes a positional argument/element sequence into a
// temporary list built by append/extend statements, preserving evaluation
// order, and returns a replacement that spreads that single temporary.
func (f *unpackingGeneralizations) expandArgs(n *pyast.Node) ([]*pyast.Node, *pyast.Node, []*pyast.Node) {
	tmp := f.freshName("upg_args")

	prefix := []*pyast.Node{pyast.NewAssign(
		pyast.NewName(tmp, pyast.CtxStore),
		pyast.New(pyast.KindList).SetStr("ctx", pyast.CtxLoad),
	)}

	var fn *pyast.Node
	var keywords, elts []*pyast.Node
	if n.Kind == pyast.KindCall {
		fn = n.Child("func")
		keywords = n.List("keywords")
		elts = n.List("args")
	} else {
		var ctor string
		switch n.Kind {
		case pyast.KindList:
			ctor = "list"
		case pyast.KindTuple:
			ctor = "tuple"
		case pyast.KindSet:
			ctor = "set"
		}
		fn = pyast.NewName(ctor, pyast.CtxLoad)
		elts = n.List("elts")
	}

	for _, elt := range elts {
		method, arg := "append", elt
		if elt.Kind == pyast.KindStarred {
			method, arg = "extend", elt.Child("value")
		}
		call := pyast.NewMethodCall(pyast.NewName(tmp, pyast.CtxLoad), method, arg)
		prefix = append(prefix, pyast.NewExprStmt(call))
	}

	replacement := pyast.NewCall(
		fn,
		[]*pyast.Node{pyast.NewStarred(pyast.NewName(tmp, pyast.CtxLoad))},
		keywords,
	)
	return prefix, replacement, []*pyast.Node{pyast.NewDelete(tmp)}
}

// expandKwargs is the keyword analogue: a temporary dict built by keyed
// assignments and update calls, spread once into the replacement call.
func (f *unpackingGeneralizations) expandKwargs(n *pyast.Node) ([]*pyast.Node, *pyast.Node, []*pyast.Node, error) {
	tmp := f.freshName("upg_kwargs")

	prefix := []*pyast.Node{pyast.NewAssign(
		pyast.NewName(tmp, pyast.CtxStore),
		pyast.New(pyast.KindDict),
	)}

	addItem := func(key, val *pyast.Node) error {
		if key == nil {
			call := pyast.NewMethodCall(pyast.NewName(tmp, pyast.CtxLoad), "update", val)
			prefix = append(prefix, pyast.NewExprStmt(call))
			return nil
		}
		if key.Kind != pyast.KindStr {
			return &types.StructuralAssumptionError{
				Fixer:  f.Name(),
				Reason: fmt.Sprintf("cannot expand a mapping with non-string key (%s)", key.Kind),
			}
		}
		target := pyast.NewSubscript(pyast.NewName(tmp, pyast.CtxLoad), key, pyast.CtxStore)
		prefix = append(prefix, pyast.NewAssign(target, val))
		return nil
	}

	var fn *pyast.Node
	var args []*pyast.Node
	if n.Kind == pyast.KindCall {
		for _, kw := range n.List("keywords") {
			var key *pyast.Node
			if arg, ok := kw.Prim("arg").Str(); ok {
				key = pyast.NewStr(arg)
			}
			if err := addItem(key, kw.Child("value")); err != nil {
				return nil, nil, nil, err
			}
		}
		fn = n.Child("func")
		args = n.List("args")
	} else {
		keys, values := n.List("keys"), n.List("values")
		for i, key := range keys {
			if err := addItem(key, values[i]); err != nil {
				return nil, nil, nil, err
			}
		}
		fn = pyast.NewName("dict", pyast.CtxLoad)
	}

	spread := pyast.New(pyast.KindKeyword).
		SetChild("value", pyast.NewName(tmp, pyast.CtxLoad))
	replacement := pyast.NewCall(fn, args, []*pyast.Node{spread})
	return prefix, replacement, []*pyast.Node{pyast.NewDelete(tmp)}, nil
}

// expandValue expands the node itself, first positionally then by keyword;
// a call can need both. Returns nil when the node holds no prohibited
// unpacking.
func (f *unpackingGeneralizations) expandValue(n *pyast.Node) (*valueUpdate, error) {
	var prefix, cleanup []*pyast.Node
	current := n

	if isArgUnpackKind(current.Kind) && hasArgsUnpacking(current) {
		p, replacement, c := f.expandArgs(current)
		prefix = append(prefix, p...)
		cleanup = append(cleanup, c...)
		current = replacement
	}
	if isKwargUnpackKind(current.Kind) && hasKwargsUnpacking(current) {
		p, replacement, c, err := f.expandKwargs(current)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, p...)
		cleanup = append(cleanup, c...)
		current = replacement
	}

	if len(prefix) == 0 {
		return nil, nil
	}
	return &valueUpdate{prefix: prefix, node: current, cleanup: cleanup}, nil
}

// rewriteExpr rewrites one expression node: the node itself if it carries
// prohibited unpacking, otherwise its sub-fields bottom-up. A lambda whose
// body needed hoisting becomes a named function definition; the hoisted
// statements move into the new function's body instead of the enclosing
// block, and the cleanup of its internal temporaries dies with the
// function's scope.
func (f *unpackingGeneralizations) rewriteExpr(n *pyast.Node) (*valueUpdate, error) {
	if isArgUnpackKind(n.Kind) || isKwargUnpackKind(n.Kind) {
		upd, err := f.expandValue(n)
		if err != nil || upd != nil {
			return upd, err
		}
	}

	var allPrefix, allCleanup []*pyast.Node
	current := n

	for _, def := range n.Fields() {
		if def.Type == pyast.FieldPrim {
			continue
		}
		if n.IsBlockField(def.Name) {
			return nil, &types.StructuralAssumptionError{
				Fixer:  f.Name(),
				Reason: fmt.Sprintf("unexpected statement block %s.%s inside an expression", n.Kind, def.Name),
			}
		}

		upd, err := f.rewriteField(n, def)
		if err != nil {
			return nil, err
		}
		if upd == nil {
			continue
		}

		if n.Kind == pyast.KindLambda && def.Name == "body" {
			fnName := f.freshName("lambda_as_def")
			body := append(upd.prefix, pyast.NewReturn(n.Child("body")))
			fnDef := pyast.New(pyast.KindFunctionDef).
				SetStr("name", fnName).
				SetChild("args", n.Child("args")).
				SetList("body", body)
			allPrefix = append(allPrefix, fnDef)
			allCleanup = append(allCleanup, pyast.NewDelete(fnName))
			current = pyast.NewName(fnName, pyast.CtxLoad)
		} else {
			allPrefix = append(allPrefix, upd.prefix...)
			allCleanup = append(allCleanup, upd.cleanup...)
		}
	}

	if len(allPrefix) == 0 {
		return nil, nil
	}
	return &valueUpdate{prefix: allPrefix, node: current, cleanup: allCleanup}, nil
}

// rewriteField rewrites a single child or a child list in place on the
// parent, returning the statements to splice around the containing
// statement, or nil when nothing changed.
func (f *unpackingGeneralizations) rewriteField(parent *pyast.Node, def pyast.FieldDef) (*expanded, error) {
	switch def.Type {
	case pyast.FieldChild:
		child := parent.Child(def.Name)
		if child == nil {
			return nil, nil
		}
		upd, err := f.rewriteExpr(child)
		if err != nil || upd == nil {
			return nil, err
		}
		parent.SetChild(def.Name, upd.node)
		return &expanded{prefix: upd.prefix, cleanup: upd.cleanup}, nil

	case pyast.FieldList:
		nodes := parent.List(def.Name)
		if len(nodes) == 0 {
			return nil, nil
		}
		var prefix, cleanup []*pyast.Node
		replacements := make([]*pyast.Node, 0, len(nodes))
		changed := false
		for _, node := range nodes {
			if node == nil {
				replacements = append(replacements, nil)
				continue
			}
			upd, err := f.rewriteExpr(node)
			if err != nil {
				return nil, err
			}
			if upd == nil {
				replacements = append(replacements, node)
				continue
			}
			prefix = append(prefix, upd.prefix...)
			cleanup = append(cleanup, upd.cleanup...)
			replacements = append(replacements, upd.node)
			changed = true
		}
		if !changed {
			return nil, nil
		}
		parent.SetList(def.Name, replacements)
		return &expanded{prefix: prefix, cleanup: cleanup}, nil
	}
	return nil, nil
}

// expandBlock rewrites one statement block to a fixed point: expanding a
// statement can splice in new statements that themselves need expanding
// (nested unpacking), so the pass repeats until the block length stops
// changing, bounded by maxBlockGrowth.
func (f *unpackingGeneralizations) expandBlock(owner *pyast.Node, field string) error {
	body := owner.List(field)
	initialLen := len(body)
	if initialLen == 0 {
		return nil
	}

	for prevLen := -1; prevLen != len(body); {
		if len(body) > initialLen*maxBlockGrowth {
			return &types.ExpansionOverflowError{InitialLen: initialLen, CurrentLen: len(body)}
		}
		prevLen = len(body)

		offset := 0
		snapshot := slices.Clone(body)
		for i, stmt := range snapshot {
			var prefix, cleanup []*pyast.Node
			for _, def := range stmt.Fields() {
				if def.Type == pyast.FieldPrim {
					continue
				}
				if stmt.IsBlockField(def.Name) {
					if err := f.expandBlock(stmt, def.Name); err != nil {
						return err
					}
					continue
				}
				upd, err := f.rewriteField(stmt, def)
				if err != nil {
					return err
				}
				if upd != nil {
					prefix = append(prefix, upd.prefix...)
					cleanup = append(cleanup, upd.cleanup...)
				}
			}
			if len(prefix) == 0 {
				continue
			}

			body = slices.Insert(body, i+offset, prefix...)
			offset += len(prefix)
			// The temporaries of a trailing return are about to go out of
			// scope anyway; no point deleting them.
			if stmt.Kind != pyast.KindReturn {
				body = slices.Insert(body, i+offset+1, cleanup...)
				offset += len(cleanup)
			}
		}
		owner.SetList(field, body)
	}
	return nil
}
