package fixers

import (
	"fmt"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/rewrite"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// removeFunctionDefAnnotations strips return and parameter annotations from
// function definitions; annotation syntax does not parse on 2.x.
type removeFunctionDefAnnotations struct {
	importTracker
}

func NewRemoveFunctionDefAnnotations() Fixer { return &removeFunctionDefAnnotations{} }

func (f *removeFunctionDefAnnotations) Name() string { return "remove-function-def-annotations" }

func (f *removeFunctionDefAnnotations) Window() version.Window {
	return version.Apply("1.0", "2.7")
}

func (f *removeFunctionDefAnnotations) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	rewrite.Walk(module, func(n *pyast.Node) bool {
		if n.Kind != pyast.KindFunctionDef {
			return true
		}
		n.SetChild("returns", nil)
		args := n.Child("args")
		if args == nil {
			return true
		}
		for _, arg := range args.List("args") {
			arg.SetChild("annotation", nil)
		}
		for _, arg := range args.List("kwonlyargs") {
			arg.SetChild("annotation", nil)
		}
		if vararg := args.Child("vararg"); vararg != nil {
			vararg.SetChild("annotation", nil)
		}
		if kwarg := args.Child("kwarg"); kwarg != nil {
			kwarg.SetChild("annotation", nil)
		}
		return true
	})
	return module, nil
}

// removeAnnAssign converts annotated assignments into plain assignments,
// discarding the annotation. A bare annotation (`x: int`) becomes an
// assignment to None so the name is still bound.
type removeAnnAssign struct {
	importTracker
}

func NewRemoveAnnAssign() Fixer { return &removeAnnAssign{} }

func (f *removeAnnAssign) Name() string { return "remove-ann-assign" }

func (f *removeAnnAssign) Window() version.Window { return version.Apply("1.0", "3.5") }

func (f *removeAnnAssign) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	return rewrite.Apply(module, f)
}

func (f *removeAnnAssign) Transform(n *pyast.Node) (rewrite.Rewrite, error) {
	if n.Kind != pyast.KindAnnAssign {
		return rewrite.Keep(), nil
	}
	target := n.Child("target")
	if target == nil || target.Kind != pyast.KindName {
		kind := "absent"
		if target != nil {
			kind = target.Kind.String()
		}
		return rewrite.Keep(), &types.StructuralAssumptionError{
			Fixer:  f.Name(),
			Reason: fmt.Sprintf("annotated assignment target must be a name, got %s", kind),
		}
	}
	value := n.Child("value")
	if value == nil {
		value = pyast.NewNone()
	}
	return rewrite.Replace(pyast.NewAssign(target, value)), nil
}
