package fixers

import (
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/rewrite"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// rangeToXRange renames load-context references to the builtin `range` to
// `xrange`, which the 2.x line requires for lazy iteration.
type rangeToXRange struct {
	importTracker
}

func NewRangeToXRange() Fixer { return &rangeToXRange{} }

func (f *rangeToXRange) Name() string { return "range-to-xrange" }

func (f *rangeToXRange) Window() version.Window { return version.Apply("1.0", "2.7") }

func (f *rangeToXRange) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	rewrite.Walk(module, func(n *pyast.Node) bool {
		if n.Kind == pyast.KindName && n.Str("id") == "range" && n.Str("ctx") == pyast.CtxLoad {
			n.SetStr("id", "xrange")
		}
		return true
	})
	return module, nil
}

// itertoolsBuiltins rewrites load references to map, zip and filter into
// their lazy itertools equivalents and records the itertools import. The
// rename is very broad, so it is guarded by the overridden-builtins
// checker: it is only safe when those names are not rebound anywhere in
// the unit.
type itertoolsBuiltins struct {
	importTracker
}

func NewItertoolsBuiltins() Fixer { return &itertoolsBuiltins{} }

func (f *itertoolsBuiltins) Name() string { return "itertools-builtins" }

func (f *itertoolsBuiltins) Window() version.Window { return version.Apply("2.0", "2.7") }

func (f *itertoolsBuiltins) GuardChecker() string { return "overridden-builtins" }

func (f *itertoolsBuiltins) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	return rewrite.Apply(module, f)
}

func (f *itertoolsBuiltins) Transform(n *pyast.Node) (rewrite.Rewrite, error) {
	if n.Kind != pyast.KindName || n.Str("ctx") != pyast.CtxLoad {
		return rewrite.Keep(), nil
	}
	id := n.Str("id")
	switch id {
	case "map", "zip", "filter":
	default:
		return rewrite.Keep(), nil
	}

	f.require("itertools", "")
	repl := pyast.NewAttribute(pyast.NewName("itertools", pyast.CtxLoad), "i"+id, pyast.CtxLoad)
	return rewrite.Replace(repl), nil
}
