package internal

import (
	"sort"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
)

// futurePriority is the canonical declaration order for __future__
// features. Future imports must be the first statements of a module, and
// emitting them in release order keeps output stable across runs.
var futurePriority = map[string]int{
	"nested_scopes":    0,
	"generators":       1,
	"division":         2,
	"absolute_import":  3,
	"with_statement":   4,
	"print_function":   5,
	"unicode_literals": 6,
	"generator_stop":   7,
}

// EnsureImports adds the missing import declarations to the module:
// __future__ members first, in the fixed priority order, then the rest in
// the order first requested. Declarations already present are skipped.
// Insertion respects a leading module docstring.
func EnsureImports(module *pyast.Node, decls []types.ImportDecl) {
	if len(decls) == 0 {
		return
	}

	missing := make([]types.ImportDecl, 0, len(decls))
	for _, decl := range decls {
		if !hasImport(module, decl) {
			missing = append(missing, decl)
		}
	}
	if len(missing) == 0 {
		return
	}

	sort.SliceStable(missing, func(i, j int) bool {
		fi, fj := missing[i].Module == "__future__", missing[j].Module == "__future__"
		if fi != fj {
			return fi
		}
		if fi {
			return futurePriority[missing[i].Member] < futurePriority[missing[j].Member]
		}
		return false
	})

	stmts := make([]*pyast.Node, 0, len(missing))
	for _, decl := range missing {
		if decl.Member == "" {
			stmts = append(stmts, pyast.NewImport(decl.Module))
		} else {
			stmts = append(stmts, pyast.NewImportFrom(decl.Module, decl.Member))
		}
	}

	body := module.List("body")
	at := 0
	if len(body) > 0 && isDocstring(body[0]) {
		at = 1
	}
	newBody := make([]*pyast.Node, 0, len(body)+len(stmts))
	newBody = append(newBody, body[:at]...)
	newBody = append(newBody, stmts...)
	newBody = append(newBody, body[at:]...)
	module.SetList("body", newBody)
}

func isDocstring(stmt *pyast.Node) bool {
	if stmt == nil || stmt.Kind != pyast.KindExprStmt {
		return false
	}
	value := stmt.Child("value")
	return value != nil && value.Kind == pyast.KindStr
}

// hasImport reports whether the module already declares the import at its
// top level. Equality is by the (module, member) pair regardless of
// position.
func hasImport(module *pyast.Node, decl types.ImportDecl) bool {
	for _, stmt := range module.List("body") {
		if stmt == nil {
			continue
		}
		switch stmt.Kind {
		case pyast.KindImport:
			if decl.Member != "" {
				continue
			}
			for _, alias := range stmt.List("names") {
				if alias.Str("name") == decl.Module {
					return true
				}
			}
		case pyast.KindImportFrom:
			if decl.Member == "" || stmt.Str("module") != decl.Module {
				continue
			}
			for _, alias := range stmt.List("names") {
				if alias.Str("name") == decl.Member {
					return true
				}
			}
		}
	}
	return false
}
