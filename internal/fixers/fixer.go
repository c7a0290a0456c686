// Package fixers holds the catalog of version-gated rewrite rules. Each
// fixer transforms a module tree into an equivalent one that avoids a
// construct the target runtime lacks, and records any imports its output
// needs.
package fixers

import (
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// Fixer is a single rewrite rule.
type Fixer interface {
	// Name returns the fixer's registry identifier.
	Name() string

	// Window returns the version range the fixer applies to and the range
	// it is compatible with.
	Window() version.Window

	// Fix transforms the module in place (or via structural copy) and
	// returns the resulting module. Errors are fatal for the source unit.
	Fix(cfg types.BuildConfig, module *pyast.Node) (*pyast.Node, error)

	// RequiredImports returns the imports recorded while fixing, in the
	// order first required, deduplicated.
	RequiredImports() []types.ImportDecl
}

// Guarded is implemented by fixers whose rewrite is only safe when a named
// checker has vetted the source first.
type Guarded interface {
	Fixer
	GuardChecker() string
}

// importTracker accumulates required imports for one source unit. Fixers
// embed it; a fresh fixer instance is built per unit, so no cross-unit
// state leaks.
type importTracker struct {
	decls []types.ImportDecl
	seen  map[types.ImportDecl]bool
}

func (t *importTracker) require(module, member string) {
	decl := types.ImportDecl{Module: module, Member: member}
	if t.seen[decl] {
		return
	}
	if t.seen == nil {
		t.seen = make(map[types.ImportDecl]bool)
	}
	t.seen[decl] = true
	t.decls = append(t.decls, decl)
}

func (t *importTracker) RequiredImports() []types.ImportDecl {
	return t.decls
}

// Catalog returns fresh instances of every fixer in registration order.
// Registration order is execution order: a fixer whose output another fixer
// consumes must precede it (itertools-builtins introduces calls that
// unpacking-generalizations must still see, so it registers earlier).
func Catalog() []Fixer {
	return []Fixer{
		NewGeneratorStopFuture(),
		NewUnicodeLiteralsFuture(),
		NewPrintFunctionFuture(),
		NewWithStatementFuture(),
		NewAbsoluteImportFuture(),
		NewDivisionFuture(),
		NewGeneratorsFuture(),
		NewNestedScopesFuture(),
		NewRangeToXRange(),
		NewRemoveFunctionDefAnnotations(),
		NewRemoveAnnAssign(),
		NewShortToLongFormSuper(),
		NewInlineKWOnlyArgs(),
		NewFStringToStrFormat(),
		NewNewStyleClasses(),
		NewItertoolsBuiltins(),
		NewUnpackingGeneralizations(),
	}
}
