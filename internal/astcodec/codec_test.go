package astcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyverse/pydown/internal/pyast"
)

// sampleModule exercises every field shape: lists, absent and present
// children, string, numeric and none primitives.
func sampleModule() *pyast.Node {
	call := pyast.NewCall(
		pyast.NewName("f", pyast.CtxLoad),
		[]*pyast.Node{pyast.NewNum(3.5), pyast.NewStr("x")},
		nil,
	)
	ret := pyast.New(pyast.KindReturn) // absent value
	fn := pyast.New(pyast.KindFunctionDef).
		SetStr("name", "g").
		SetChild("args", pyast.New(pyast.KindArguments)).
		SetList("body", []*pyast.Node{pyast.NewExprStmt(call), ret})
	return pyast.New(pyast.KindModule).SetList("body", []*pyast.Node{fn})
}

// assertTreeEqual compares two trees structurally.
func assertTreeEqual(t *testing.T, want, got *pyast.Node) {
	t.Helper()
	if want == nil || got == nil {
		require.Equal(t, want == nil, got == nil)
		return
	}
	require.Equal(t, want.Kind, got.Kind)
	for _, def := range pyast.Schema(want.Kind) {
		switch def.Type {
		case pyast.FieldChild:
			assertTreeEqual(t, want.Child(def.Name), got.Child(def.Name))
		case pyast.FieldList:
			wantList, gotList := want.List(def.Name), got.List(def.Name)
			require.Len(t, gotList, len(wantList), "%s.%s", want.Kind, def.Name)
			for i := range wantList {
				assertTreeEqual(t, wantList[i], gotList[i])
			}
		case pyast.FieldPrim:
			assert.Equal(t, want.Prim(def.Name).Value(), got.Prim(def.Name).Value(),
				"%s.%s", want.Kind, def.Name)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatMsgpack} {
		format := format
		name := "json"
		if format == FormatMsgpack {
			name = "msgpack"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tree := sampleModule()
			data, err := Encode(tree, format)
			require.NoError(t, err)

			decoded, err := Decode(data, format)
			require.NoError(t, err)
			assertTreeEqual(t, tree, decoded)
		})
	}
}

// TestDecodeControlFlowAndComprehensions feeds the decoder a module the
// front end would emit for ordinary procedural code: loops with break and
// continue, augmented assignment, assertions, scope declarations,
// comprehensions, slices, conditional expressions and generators.
func TestDecodeControlFlowAndComprehensions(t *testing.T) {
	t.Parallel()

	data := `{
		"_type": "Module",
		"body": [
			{"_type": "Global", "names": [{"_type": "Name", "id": "total", "ctx": "store"}]},
			{"_type": "While",
			 "test": {"_type": "NameConstant", "value": true},
			 "body": [
				{"_type": "AugAssign",
				 "target": {"_type": "Name", "id": "total", "ctx": "store"},
				 "op": {"_type": "op", "name": "Add"},
				 "value": {"_type": "Num", "n": 1}},
				{"_type": "Break"}
			 ],
			 "orelse": []},
			{"_type": "For",
			 "target": {"_type": "Name", "id": "i", "ctx": "store"},
			 "iter": {"_type": "Name", "id": "xs", "ctx": "load"},
			 "body": [{"_type": "Continue"}],
			 "orelse": []},
			{"_type": "Assert",
			 "test": {"_type": "Name", "id": "total", "ctx": "load"},
			 "msg": {"_type": "Str", "s": "empty input"}},
			{"_type": "Assign",
			 "targets": [{"_type": "Name", "id": "y", "ctx": "store"}],
			 "value": {"_type": "ListComp",
				"elt": {"_type": "Name", "id": "e", "ctx": "load"},
				"generators": [{"_type": "comprehension",
					"target": {"_type": "Name", "id": "e", "ctx": "store"},
					"iter": {"_type": "Name", "id": "xs", "ctx": "load"},
					"ifs": [{"_type": "Name", "id": "e", "ctx": "load"}],
					"is_async": false}]}},
			{"_type": "Assign",
			 "targets": [{"_type": "Name", "id": "d", "ctx": "store"}],
			 "value": {"_type": "DictComp",
				"key": {"_type": "Name", "id": "k", "ctx": "load"},
				"value": {"_type": "Num", "n": 1},
				"generators": [{"_type": "comprehension",
					"target": {"_type": "Name", "id": "k", "ctx": "store"},
					"iter": {"_type": "Name", "id": "xs", "ctx": "load"},
					"ifs": [],
					"is_async": false}]}},
			{"_type": "Assign",
			 "targets": [{"_type": "Name", "id": "s", "ctx": "store"}],
			 "value": {"_type": "SetComp",
				"elt": {"_type": "Name", "id": "e", "ctx": "load"},
				"generators": [{"_type": "comprehension",
					"target": {"_type": "Name", "id": "e", "ctx": "store"},
					"iter": {"_type": "Name", "id": "xs", "ctx": "load"},
					"ifs": [],
					"is_async": false}]}},
			{"_type": "Assign",
			 "targets": [{"_type": "Name", "id": "z", "ctx": "store"}],
			 "value": {"_type": "Subscript",
				"value": {"_type": "Name", "id": "xs", "ctx": "load"},
				"slice": {"_type": "Slice",
					"lower": {"_type": "Num", "n": 1},
					"upper": {"_type": "Num", "n": 2},
					"step": null},
				"ctx": "load"}},
			{"_type": "Assign",
			 "targets": [{"_type": "Name", "id": "w", "ctx": "store"}],
			 "value": {"_type": "IfExp",
				"test": {"_type": "Name", "id": "c", "ctx": "load"},
				"body": {"_type": "Name", "id": "a", "ctx": "load"},
				"orelse": {"_type": "Name", "id": "b", "ctx": "load"}}},
			{"_type": "Expr",
			 "value": {"_type": "Call",
				"func": {"_type": "Name", "id": "sum", "ctx": "load"},
				"args": [{"_type": "GeneratorExp",
					"elt": {"_type": "Name", "id": "e", "ctx": "load"},
					"generators": [{"_type": "comprehension",
						"target": {"_type": "Name", "id": "e", "ctx": "store"},
						"iter": {"_type": "Name", "id": "xs", "ctx": "load"},
						"ifs": [],
						"is_async": false}]}],
				"keywords": []}},
			{"_type": "FunctionDef",
			 "name": "g",
			 "args": {"_type": "arguments"},
			 "body": [
				{"_type": "Nonlocal", "names": [{"_type": "Name", "id": "total", "ctx": "store"}]},
				{"_type": "Expr", "value": {"_type": "Yield", "value": {"_type": "Name", "id": "total", "ctx": "load"}}},
				{"_type": "Expr", "value": {"_type": "YieldFrom", "value": {"_type": "Name", "id": "xs", "ctx": "load"}}}
			 ],
			 "decorator_list": []}
		]
	}`
	tree, err := Decode([]byte(data), FormatJSON)
	require.NoError(t, err)

	body := tree.List("body")
	require.Len(t, body, 11)

	require.Equal(t, pyast.KindGlobal, body[0].Kind)
	assert.Equal(t, "total", body[0].List("names")[0].Str("id"))

	loop := body[1].List("body")
	require.Equal(t, pyast.KindAugAssign, loop[0].Kind)
	assert.Equal(t, "Add", loop[0].Child("op").Str("name"))
	assert.Equal(t, pyast.KindBreak, loop[1].Kind)
	assert.Equal(t, pyast.KindContinue, body[2].List("body")[0].Kind)

	comp := body[4].Child("value")
	require.Equal(t, pyast.KindListComp, comp.Kind)
	gen := comp.List("generators")[0]
	require.Equal(t, pyast.KindComprehension, gen.Kind)
	assert.Equal(t, false, gen.Prim("is_async").Value())
	assert.Len(t, gen.List("ifs"), 1)

	slice := body[7].Child("value").Child("slice")
	require.Equal(t, pyast.KindSlice, slice.Kind)
	assert.Nil(t, slice.Child("step"))

	// The decoded tree survives both wire formats unchanged.
	for _, format := range []Format{FormatJSON, FormatMsgpack} {
		encoded, err := Encode(tree, format)
		require.NoError(t, err)
		again, err := Decode(encoded, format)
		require.NoError(t, err)
		assertTreeEqual(t, tree, again)
	}
}

func TestDecodeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"unknown kind", `{"_type": "Nonsense"}`},
		{"missing kind key", `{"body": []}`},
		{"kind key not a string", `{"_type": 3}`},
		{"unknown field", `{"_type": "Pass", "value": null}`},
		{"list field holding a scalar", `{"_type": "Module", "body": 1}`},
		{"not an object", `[1, 2]`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tc.data), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestDecodeAbsentEntries(t *testing.T) {
	t.Parallel()

	// Dict keys may be null (a ** spread); the decoded list keeps the hole.
	data := `{
		"_type": "Dict",
		"keys": [null, {"_type": "Str", "s": "k"}],
		"values": [{"_type": "Name", "id": "a", "ctx": "load"}, {"_type": "Num", "n": 2}]
	}`
	tree, err := Decode([]byte(data), FormatJSON)
	require.NoError(t, err)

	keys := tree.List("keys")
	require.Len(t, keys, 2)
	assert.Nil(t, keys[0])
	assert.Equal(t, "k", keys[1].Str("s"))
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"pkg/mod.ast.json", FormatJSON, true},
		{"pkg/mod.ast.msgpack", FormatMsgpack, true},
		{"pkg/mod.py", FormatJSON, false},
		{"pkg/mod.json", FormatJSON, false},
	}
	for _, tc := range tests {
		format, ok := FormatForPath(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		if ok {
			assert.Equal(t, tc.format, format, tc.path)
		}
	}
}
