package fixers

import (
	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// futureImport covers every `from __future__ import ...` fixer: the tree is
// untouched, only the import requirement is recorded. Version ranges follow
// the __future__ feature table.
type futureImport struct {
	importTracker
	name    string
	feature string
	window  version.Window
}

func (f *futureImport) Name() string           { return f.name }
func (f *futureImport) Window() version.Window { return f.window }

func (f *futureImport) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	f.require("__future__", f.feature)
	return module, nil
}

func NewGeneratorStopFuture() Fixer {
	return &futureImport{
		name:    "generator-stop-future",
		feature: "generator_stop",
		window:  version.Apply("3.5", "3.6"),
	}
}

func NewUnicodeLiteralsFuture() Fixer {
	return &futureImport{
		name:    "unicode-literals-future",
		feature: "unicode_literals",
		window:  version.Apply("2.6", "2.7"),
	}
}

func NewPrintFunctionFuture() Fixer {
	return &futureImport{
		name:    "print-function-future",
		feature: "print_function",
		window:  version.Apply("2.6", "2.7"),
	}
}

func NewWithStatementFuture() Fixer {
	return &futureImport{
		name:    "with-statement-future",
		feature: "with_statement",
		window:  version.Apply("2.5", "2.5"),
	}
}

func NewAbsoluteImportFuture() Fixer {
	return &futureImport{
		name:    "absolute-import-future",
		feature: "absolute_import",
		window:  version.Apply("2.5", "2.7"),
	}
}

func NewDivisionFuture() Fixer {
	return &futureImport{
		name:    "division-future",
		feature: "division",
		window:  version.Apply("2.2", "2.7"),
	}
}

func NewGeneratorsFuture() Fixer {
	return &futureImport{
		name:    "generators-future",
		feature: "generators",
		window:  version.Apply("2.2", "2.2"),
	}
}

func NewNestedScopesFuture() Fixer {
	return &futureImport{
		name:    "nested-scopes-future",
		feature: "nested_scopes",
		window:  version.Apply("2.1", "2.1"),
	}
}
