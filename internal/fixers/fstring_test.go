package fixers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
)

func joined(values ...*pyast.Node) *pyast.Node {
	return pyast.New(pyast.KindJoinedStr).SetList("values", values)
}

func formatted(value *pyast.Node) *pyast.Node {
	return pyast.New(pyast.KindFormattedValue).SetChild("value", value)
}

func TestFStringToStrFormat(t *testing.T) {
	t.Parallel()

	fixString := func(t *testing.T, js *pyast.Node) *pyast.Node {
		t.Helper()
		mod := mustFix(t, NewFStringToStrFormat(), module(pyast.NewExprStmt(js)))
		return mod.List("body")[0].Child("value")
	}

	t.Run("interpolations become positional format arguments", func(t *testing.T) {
		t.Parallel()
		// f"a{x}b{y}"
		call := fixString(t, joined(
			pyast.NewStr("a"),
			formatted(pyast.NewName("x", pyast.CtxLoad)),
			pyast.NewStr("b"),
			formatted(pyast.NewName("y", pyast.CtxLoad)),
		))

		require.Equal(t, pyast.KindCall, call.Kind)
		attr := call.Child("func")
		assert.Equal(t, "format", attr.Str("attr"))
		assert.Equal(t, "a{0}b{1}", attr.Child("value").Str("s"))

		args := call.List("args")
		require.Len(t, args, 2)
		assert.Equal(t, "x", args[0].Str("id"))
		assert.Equal(t, "y", args[1].Str("id"))
	})

	t.Run("literal-only interpolation folds to a plain template", func(t *testing.T) {
		t.Parallel()
		call := fixString(t, joined(pyast.NewStr("just text")))
		assert.Equal(t, "just text", call.Child("func").Child("value").Str("s"))
		assert.Empty(t, call.List("args"))
	})

	t.Run("format spec recurses into the argument list", func(t *testing.T) {
		t.Parallel()
		// f"{x:{width}}"
		inner := formatted(pyast.NewName("x", pyast.CtxLoad))
		inner.SetChild("format_spec", joined(formatted(pyast.NewName("width", pyast.CtxLoad))))
		call := fixString(t, joined(inner))

		assert.Equal(t, "{0:{1}}", call.Child("func").Child("value").Str("s"))
		args := call.List("args")
		require.Len(t, args, 2)
		assert.Equal(t, "x", args[0].Str("id"))
		assert.Equal(t, "width", args[1].Str("id"))
	})

	t.Run("static format spec stays in the template", func(t *testing.T) {
		t.Parallel()
		// f"{x:>10}"
		inner := formatted(pyast.NewName("x", pyast.CtxLoad))
		inner.SetChild("format_spec", joined(pyast.NewStr(">10")))
		call := fixString(t, joined(inner))

		assert.Equal(t, "{0:>10}", call.Child("func").Child("value").Str("s"))
		assert.Len(t, call.List("args"), 1)
	})

	t.Run("interpolation nested in a value converts too", func(t *testing.T) {
		t.Parallel()
		// f"={f'{y}'}"
		call := fixString(t, joined(
			pyast.NewStr("="),
			formatted(joined(formatted(pyast.NewName("y", pyast.CtxLoad)))),
		))

		assert.Equal(t, "={0}", call.Child("func").Child("value").Str("s"))
		args := call.List("args")
		require.Len(t, args, 1)
		require.Equal(t, pyast.KindCall, args[0].Kind)
		assert.Equal(t, "{0}", args[0].Child("func").Child("value").Str("s"))
		assert.Equal(t, "y", args[0].List("args")[0].Str("id"))
	})

	t.Run("unexpected interpolation shape rejected", func(t *testing.T) {
		t.Parallel()
		js := joined(pyast.NewNum(1))
		_, err := NewFStringToStrFormat().Fix(types.BuildConfig{}, module(pyast.NewExprStmt(js)))

		var structErr *types.StructuralAssumptionError
		require.ErrorAs(t, err, &structErr)
		assert.Equal(t, "f-string-to-str-format", structErr.Fixer)
	})

	t.Run("non-interpolated strings untouched", func(t *testing.T) {
		t.Parallel()
		mod := mustFix(t, NewFStringToStrFormat(), module(pyast.NewExprStmt(pyast.NewStr("plain"))))
		assert.Equal(t, pyast.KindStr, mod.List("body")[0].Child("value").Kind)
	})
}
