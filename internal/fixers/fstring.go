package fixers

import (
	"fmt"
	"strconv"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
	"github.com/pyverse/pydown/internal/version"
)

// fStringToStrFormat rewrites string interpolation expressions into an
// equivalent "...".format(...) call. Substituted expressions are collected
// argument by argument, in order, and referenced by positional index in the
// template; format specs may themselves interpolate, so they recurse into
// the same collection.
//
// The pass runs parents-first: a conversion consumes the whole JoinedStr
// subtree in one step, so a format spec is folded into the template before
// anything else can touch it. Descent then continues into the replacement
// call, which converts interpolations nested inside the collected arguments.
type fStringToStrFormat struct {
	importTracker
}

func NewFStringToStrFormat() Fixer { return &fStringToStrFormat{} }

func (f *fStringToStrFormat) Name() string { return "f-string-to-str-format" }

func (f *fStringToStrFormat) Window() version.Window { return version.Apply("2.6", "3.5") }

func (f *fStringToStrFormat) Fix(_ types.BuildConfig, module *pyast.Node) (*pyast.Node, error) {
	if err := f.rewriteChildren(module); err != nil {
		return nil, err
	}
	return module, nil
}

// rewriteChildren replaces JoinedStr children of n in place, then descends
// into the possibly replaced subtrees.
func (f *fStringToStrFormat) rewriteChildren(n *pyast.Node) error {
	for _, def := range n.Fields() {
		switch def.Type {
		case pyast.FieldChild:
			child := n.Child(def.Name)
			if child == nil {
				continue
			}
			if child.Kind == pyast.KindJoinedStr {
				repl, err := f.convert(child)
				if err != nil {
					return err
				}
				n.SetChild(def.Name, repl)
				child = repl
			}
			if err := f.rewriteChildren(child); err != nil {
				return err
			}
		case pyast.FieldList:
			entries := n.List(def.Name)
			for i, child := range entries {
				if child == nil {
					continue
				}
				if child.Kind == pyast.KindJoinedStr {
					repl, err := f.convert(child)
					if err != nil {
						return err
					}
					entries[i] = repl
					child = repl
				}
				if err := f.rewriteChildren(child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// convert builds the format call for one whole interpolation expression.
func (f *fStringToStrFormat) convert(n *pyast.Node) (*pyast.Node, error) {
	var argNodes []*pyast.Node
	template, err := f.joinedStrTemplate(n, &argNodes)
	if err != nil {
		return nil, err
	}
	formatAttr := pyast.NewAttribute(pyast.NewStr(template), "format", pyast.CtxLoad)
	return pyast.NewCall(formatAttr, argNodes, nil), nil
}

func (f *fStringToStrFormat) joinedStrTemplate(n *pyast.Node, argNodes *[]*pyast.Node) (string, error) {
	template := ""
	for _, val := range n.List("values") {
		switch {
		case val == nil:
			return "", f.shapeError("absent interpolation value")
		case val.Kind == pyast.KindStr:
			template += val.Str("s")
		case val.Kind == pyast.KindFormattedValue:
			part, err := f.formattedValueTemplate(val, argNodes)
			if err != nil {
				return "", err
			}
			template += part
		default:
			return "", f.shapeError(fmt.Sprintf("unexpected %s in interpolation", val.Kind))
		}
	}
	return template, nil
}

func (f *fStringToStrFormat) formattedValueTemplate(n *pyast.Node, argNodes *[]*pyast.Node) (string, error) {
	argIndex := len(*argNodes)
	*argNodes = append(*argNodes, n.Child("value"))

	formatSpec := ""
	if spec := n.Child("format_spec"); spec != nil {
		if spec.Kind != pyast.KindJoinedStr {
			return "", f.shapeError(fmt.Sprintf("unexpected %s as format spec", spec.Kind))
		}
		inner, err := f.joinedStrTemplate(spec, argNodes)
		if err != nil {
			return "", err
		}
		formatSpec = ":" + inner
	}

	return "{" + strconv.Itoa(argIndex) + formatSpec + "}", nil
}

func (f *fStringToStrFormat) shapeError(reason string) error {
	return &types.StructuralAssumptionError{Fixer: f.Name(), Reason: reason}
}
