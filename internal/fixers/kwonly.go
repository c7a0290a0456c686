package fixers

import (
	"fmt"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/rewrite"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// inlineKWOnlyArgs removes keyword-only parameters by routing them through
// the catch-all keyword mapping: each parameter becomes a lookup statement
// at the top of the function body. A parameter with no default uses an
// indexing lookup (so a missing argument still raises KeyError), one with a
// default uses .get with the default inlined.
//
// Only literal defaults are inlined. Anything else would be evaluated at
// call time instead of definition time, so it is rejected.
type inlineKWOnlyArgs struct {
	importTracker
}

func NewInlineKWOnlyArgs() Fixer { return &inlineKWOnlyArgs{} }

func (f *inlineKWOnlyArgs) Name() string { return "inline-kw-only-args" }

func (f *inlineKWOnlyArgs) Window() version.Window { return version.Apply("1.0", "3.5") }

func (f *inlineKWOnlyArgs) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	return rewrite.Apply(module, f)
}

func (f *inlineKWOnlyArgs) Transform(n *pyast.Node) (rewrite.Rewrite, error) {
	if n.Kind != pyast.KindFunctionDef {
		return rewrite.Keep(), nil
	}
	args := n.Child("args")
	if args == nil {
		return rewrite.Keep(), nil
	}
	kwonly := args.List("kwonlyargs")
	if len(kwonly) == 0 {
		return rewrite.Keep(), nil
	}
	defaults := args.List("kw_defaults")
	if len(defaults) != len(kwonly) {
		return rewrite.Keep(), &types.StructuralAssumptionError{
			Fixer: f.Name(),
			Reason: fmt.Sprintf(
				"%d keyword-only parameters with %d defaults", len(kwonly), len(defaults),
			),
		}
	}

	kwName := "kwargs"
	if kwarg := args.Child("kwarg"); kwarg != nil {
		kwName = kwarg.Str("arg")
	} else {
		args.SetChild("kwarg", pyast.New(pyast.KindArg).SetStr("arg", kwName))
	}

	// Walk the parameters back to front, prepending each lookup, so the
	// final body reads in declaration order.
	body := n.List("body")
	for i := len(kwonly) - 1; i >= 0; i-- {
		argName := kwonly[i].Str("arg")
		def := defaults[i]

		var value *pyast.Node
		if def == nil {
			value = pyast.NewSubscript(
				pyast.NewName(kwName, pyast.CtxLoad), pyast.NewStr(argName), pyast.CtxLoad,
			)
		} else {
			if !pyast.IsLiteral(def) {
				return rewrite.Keep(), &types.StructuralAssumptionError{
					Fixer: f.Name(),
					Reason: fmt.Sprintf(
						"keyword-only parameter %q has a non-literal default (%s)", argName, def.Kind,
					),
				}
			}
			value = pyast.NewMethodCall(
				pyast.NewName(kwName, pyast.CtxLoad), "get", pyast.NewStr(argName), def,
			)
		}

		lookup := pyast.NewAssign(pyast.NewName(argName, pyast.CtxStore), value)
		body = append([]*pyast.Node{lookup}, body...)
	}
	n.SetList("body", body)
	args.SetList("kwonlyargs", nil)
	args.SetList("kw_defaults", nil)

	return rewrite.Keep(), nil
}
