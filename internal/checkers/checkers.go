// Package checkers holds sanity checks that run before the fixer pipeline.
// A checker vetoes source units that use constructs no fixer can make work
// on the target version, or that would make a broad fixer rewrite unsafe.
package checkers

import (
	"fmt"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/rewrite"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// Checker inspects a module tree and fails with a CheckError when the
// source cannot be transpiled safely.
type Checker interface {
	Name() string
	Window() version.Window
	Check(module *pyast.Node) error
}

// Catalog returns fresh instances of every checker in registration order.
func Catalog() []Checker {
	return []Checker{
		NewOverriddenBuiltins(),
		NewNoAsyncAwait(),
	}
}

// overriddenBuiltins rejects units that rebind the builtins the catalog
// rewrites by name (range, map, zip, filter). The renaming fixers match
// purely on identifier, so a shadowed builtin would be rewritten too.
type overriddenBuiltins struct{}

func NewOverriddenBuiltins() Checker { return &overriddenBuiltins{} }

func (c *overriddenBuiltins) Name() string { return "overridden-builtins" }

func (c *overriddenBuiltins) Window() version.Window { return version.Apply("1.0", "2.7") }

var renamedBuiltins = map[string]bool{
	"range":  true,
	"map":    true,
	"zip":    true,
	"filter": true,
}

func (c *overriddenBuiltins) Check(module *pyast.Node) error {
	var err error
	rewrite.Walk(module, func(n *pyast.Node) bool {
		if err != nil {
			return false
		}
		switch n.Kind {
		case pyast.KindName:
			if n.Str("ctx") != pyast.CtxLoad && renamedBuiltins[n.Str("id")] {
				err = c.violation(n.Str("id"))
			}
		case pyast.KindFunctionDef, pyast.KindClassDef:
			if renamedBuiltins[n.Str("name")] {
				err = c.violation(n.Str("name"))
			}
		case pyast.KindArg:
			if renamedBuiltins[n.Str("arg")] {
				err = c.violation(n.Str("arg"))
			}
		}
		return err == nil
	})
	return err
}

func (c *overriddenBuiltins) violation(name string) error {
	return &types.CheckError{
		Checker: c.Name(),
		Reason:  fmt.Sprintf("builtin %q is rebound; renaming fixers would rewrite the override", name),
	}
}

// noAsyncAwait rejects async/await syntax: there is no fixer that can
// express coroutines on runtimes that predate them.
type noAsyncAwait struct{}

func NewNoAsyncAwait() Checker { return &noAsyncAwait{} }

func (c *noAsyncAwait) Name() string { return "no-async-await" }

func (c *noAsyncAwait) Window() version.Window { return version.Apply("1.0", "3.4") }

func (c *noAsyncAwait) Check(module *pyast.Node) error {
	var err error
	rewrite.Walk(module, func(n *pyast.Node) bool {
		switch n.Kind {
		case pyast.KindAsyncFunctionDef, pyast.KindAwait:
			err = &types.CheckError{
				Checker: c.Name(),
				Reason:  "async/await cannot be transpiled to the target version",
			}
			return false
		}
		return true
	})
	return err
}
