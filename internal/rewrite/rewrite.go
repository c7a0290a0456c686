// Package rewrite is the generic traversal and transformation engine over
// pyast trees. Fixers that only inspect or tweak nodes use Walk; fixers
// that replace, splice or delete nodes implement Transformer and run under
// Apply.
package rewrite

import (
	"fmt"

	"github.com/pyverse/pydown/internal/pyast"
	"github.com/pyverse/pydown/internal/types"
)

// Walk visits every node reachable from root in document order, parents
// before children, fields in the node's deterministic field order. A false
// return prunes the subtree. Absent children and absent list entries are
// skipped.
func Walk(root *pyast.Node, fn func(*pyast.Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, def := range root.Fields() {
		switch def.Type {
		case pyast.FieldChild:
			Walk(root.Child(def.Name), fn)
		case pyast.FieldList:
			for _, child := range root.List(def.Name) {
				Walk(child, fn)
			}
		}
	}
}

// Rewrite is a transformer's verdict for one node.
type Rewrite struct {
	op    rewriteOp
	node  *pyast.Node
	nodes []*pyast.Node
}

type rewriteOp int

const (
	opKeep rewriteOp = iota
	opReplace
	opSplice
	opRemove
)

// Keep leaves the node as is (children may still have been visited).
func Keep() Rewrite { return Rewrite{op: opKeep} }

// Replace substitutes a single node in place.
func Replace(n *pyast.Node) Rewrite { return Rewrite{op: opReplace, node: n} }

// Splice substitutes several nodes for one; only valid in list positions.
func Splice(nodes ...*pyast.Node) Rewrite { return Rewrite{op: opSplice, nodes: nodes} }

// Remove deletes the node: a list entry disappears, a single-child field
// becomes absent.
func Remove() Rewrite { return Rewrite{op: opRemove} }

// Transformer produces a rewrite verdict for a node. It is invoked after
// the node's children have been transformed, so replacements see already
// rewritten subtrees.
type Transformer interface {
	Transform(n *pyast.Node) (Rewrite, error)
}

// Apply runs the transformer over the whole tree bottom-up, mutating parent
// fields in place, and returns the possibly new root. A Splice verdict for
// the root or any other non-list position is a structural assumption
// violation.
func Apply(root *pyast.Node, tr Transformer) (*pyast.Node, error) {
	if root == nil {
		return nil, nil
	}
	if err := applyFields(root, tr); err != nil {
		return nil, err
	}
	rw, err := tr.Transform(root)
	if err != nil {
		return nil, err
	}
	switch rw.op {
	case opKeep:
		return root, nil
	case opReplace:
		return rw.node, nil
	case opRemove:
		return nil, nil
	default:
		return nil, &types.StructuralAssumptionError{
			Reason: fmt.Sprintf("cannot splice at a single-node position (%s)", root.Kind),
		}
	}
}

func applyFields(n *pyast.Node, tr Transformer) error {
	for _, def := range n.Fields() {
		switch def.Type {
		case pyast.FieldChild:
			child := n.Child(def.Name)
			if child == nil {
				continue
			}
			replacement, err := Apply(child, tr)
			if err != nil {
				return err
			}
			if replacement != child {
				n.SetChild(def.Name, replacement)
			}
		case pyast.FieldList:
			if err := applyList(n, def.Name, tr); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyList(n *pyast.Node, name string, tr Transformer) error {
	old := n.List(name)
	if len(old) == 0 {
		return nil
	}
	changed := false
	out := make([]*pyast.Node, 0, len(old))
	for _, entry := range old {
		if entry == nil {
			out = append(out, nil)
			continue
		}
		if err := applyFields(entry, tr); err != nil {
			return err
		}
		rw, err := tr.Transform(entry)
		if err != nil {
			return err
		}
		switch rw.op {
		case opKeep:
			out = append(out, entry)
		case opReplace:
			out = append(out, rw.node)
			changed = true
		case opSplice:
			out = append(out, rw.nodes...)
			changed = true
		case opRemove:
			changed = true
		}
	}
	if changed {
		n.SetList(name, out)
	}
	return nil
}
