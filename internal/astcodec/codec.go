// Package astcodec moves pyast trees across the process boundary. The
// external front end parses source text and serializes the tree; the
// external printer consumes the transformed tree. Two wire formats are
// supported: JSON (what the Python-side shim emits, one object per node
// with the node class under "_type") and msgpack (the compact binary
// equivalent).
package astcodec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pyverse/pydown/internal/pyast"
)

// Format selects a wire format.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

const kindKey = "_type"

// Extensions of serialized tree files, in lookup order.
const (
	ExtJSON    = ".ast.json"
	ExtMsgpack = ".ast.msgpack"
)

// FormatForPath picks the format from the file extension; ok is false for
// paths that are not serialized trees.
func FormatForPath(path string) (Format, bool) {
	switch {
	case strings.HasSuffix(path, ExtJSON):
		return FormatJSON, true
	case strings.HasSuffix(path, ExtMsgpack):
		return FormatMsgpack, true
	default:
		return FormatJSON, false
	}
}

// Encode serializes a tree.
func Encode(n *pyast.Node, f Format) ([]byte, error) {
	generic := toGeneric(n)
	switch f {
	case FormatMsgpack:
		return msgpack.Marshal(generic)
	default:
		return json.Marshal(generic)
	}
}

// Decode deserializes and schema-validates a tree.
func Decode(data []byte, f Format) (*pyast.Node, error) {
	var generic any
	switch f {
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack tree: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to decode json tree: %w", err)
		}
	}
	return fromGeneric(generic)
}

func toGeneric(n *pyast.Node) any {
	if n == nil {
		return nil
	}
	out := make(map[string]any, len(pyast.Schema(n.Kind))+1)
	out[kindKey] = n.Kind.String()
	for _, def := range pyast.Schema(n.Kind) {
		switch def.Type {
		case pyast.FieldChild:
			out[def.Name] = toGeneric(n.Child(def.Name))
		case pyast.FieldList:
			children := n.List(def.Name)
			list := make([]any, len(children))
			for i, child := range children {
				list[i] = toGeneric(child)
			}
			out[def.Name] = list
		case pyast.FieldPrim:
			out[def.Name] = n.Prim(def.Name).Value()
		}
	}
	return out
}

func fromGeneric(v any) (*pyast.Node, error) {
	if v == nil {
		return nil, nil
	}
	obj, err := asMap(v)
	if err != nil {
		return nil, err
	}
	rawKind, ok := obj[kindKey]
	if !ok {
		return nil, fmt.Errorf("node object has no %q key", kindKey)
	}
	kindName, ok := rawKind.(string)
	if !ok {
		return nil, fmt.Errorf("node %q key is not a string", kindKey)
	}
	kind, ok := pyast.KindByName(kindName)
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", kindName)
	}

	node := pyast.New(kind)
	for name, raw := range obj {
		if name == kindKey {
			continue
		}
		def, ok := schemaField(kind, name)
		if !ok {
			return nil, fmt.Errorf("%s has no field %q", kind, name)
		}
		switch def.Type {
		case pyast.FieldChild:
			child, err := fromGeneric(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", kind, name, err)
			}
			node.SetChild(name, child)
		case pyast.FieldList:
			if raw == nil {
				continue
			}
			rawList, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("%s.%s: expected a list", kind, name)
			}
			children := make([]*pyast.Node, len(rawList))
			for i, entry := range rawList {
				child, err := fromGeneric(entry)
				if err != nil {
					return nil, fmt.Errorf("%s.%s[%d]: %w", kind, name, i, err)
				}
				children[i] = child
			}
			node.SetList(name, children)
		case pyast.FieldPrim:
			prim, ok := pyast.PrimOf(normalizeNumber(raw))
			if !ok {
				return nil, fmt.Errorf("%s.%s: unsupported primitive %T", kind, name, raw)
			}
			node.SetPrim(name, prim)
		}
	}
	return node, nil
}

func schemaField(kind pyast.Kind, name string) (pyast.FieldDef, bool) {
	for _, def := range pyast.Schema(kind) {
		if def.Name == name {
			return def, true
		}
	}
	return pyast.FieldDef{}, false
}

func asMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		// msgpack may decode map keys loosely
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string map key %v", k)
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a node object, got %T", v)
	}
}

// normalizeNumber widens msgpack's integer decodings to float64, the only
// numeric primitive the tree model carries (matching JSON).
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
