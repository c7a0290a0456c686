package fixers

import (
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/rewrite"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// newStyleClasses gives base-less class definitions an explicit `object`
// base so they become new-style classes on 2.x.
type newStyleClasses struct {
	importTracker
}

func NewNewStyleClasses() Fixer { return &newStyleClasses{} }

func (f *newStyleClasses) Name() string { return "new-style-classes" }

func (f *newStyleClasses) Window() version.Window { return version.Apply("2.0", "2.7") }

func (f *newStyleClasses) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	rewrite.Walk(module, func(n *pyast.Node) bool {
		if n.Kind == pyast.KindClassDef && len(n.List("bases")) == 0 {
			n.Append("bases", pyast.NewName("object", pyast.CtxLoad))
		}
		return true
	})
	return module, nil
}

// shortToLongFormSuper expands zero-argument super() calls inside methods
// into the long form super(ClassName, self), which 2.x requires.
type shortToLongFormSuper struct {
	importTracker
}

func NewShortToLongFormSuper() Fixer { return &shortToLongFormSuper{} }

func (f *shortToLongFormSuper) Name() string { return "short-to-long-form-super" }

func (f *shortToLongFormSuper) Window() version.Window { return version.Apply("2.2", "2.7") }

func (f *shortToLongFormSuper) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	rewrite.Walk(module, func(n *pyast.Node) bool {
		if n.Kind != pyast.KindClassDef {
			return true
		}
		className := n.Str("name")
		rewrite.Walk(n, func(m *pyast.Node) bool {
			if m.Kind != pyast.KindFunctionDef {
				return true
			}
			expandSuperCalls(m, className)
			return true
		})
		return true
	})
	return module, nil
}

func expandSuperCalls(method *pyast.Node, className string) {
	args := method.Child("args")
	if args == nil || len(args.List("args")) == 0 {
		return
	}
	selfName := args.List("args")[0].Str("arg")

	rewrite.Walk(method, func(n *pyast.Node) bool {
		if n.Kind != pyast.KindCall || len(n.List("args")) > 0 {
			return true
		}
		fn := n.Child("func")
		if fn == nil || fn.Kind != pyast.KindName || fn.Str("id") != "super" {
			return true
		}
		n.SetList("args", []*pyast.Node{
			pyast.NewName(className, pyast.CtxLoad),
			pyast.NewName(selfName, pyast.CtxLoad),
		})
		return true
	})
}
