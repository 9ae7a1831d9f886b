package config

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
)

// Kind tags the variant held by a Node.
type Kind uint8

// Node kinds. The zero Node is Null.
const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "null"
	}
}

// Node is one value in a parsed configuration tree. Nodes are values: every
// constructor and operation copies, so a Node handed out is never changed by
// later work on another.
type Node struct {
	kind   Kind
	scalar any
	items  []Node
	fields map[string]Node
}

// Null returns the explicit absent value.
func Null() Node { return Node{} }

// Scalar wraps a leaf value. Integer types are widened to int64 and float32
// to float64 so equal values compare equal regardless of origin.
func Scalar(v any) Node {
	if v == nil {
		return Node{}
	}
	return Node{kind: KindScalar, scalar: normalizeScalar(v)}
}

// Sequence builds an ordered list node.
func Sequence(items ...Node) Node {
	n := Node{kind: KindSequence, items: make([]Node, len(items))}
	for i, it := range items {
		n.items[i] = it.Clone()
	}
	return n
}

// Mapping builds a keyed node from fields.
func Mapping(fields map[string]Node) Node {
	n := Node{kind: KindMapping, fields: make(map[string]Node, len(fields))}
	for k, v := range fields {
		n.fields[k] = v.Clone()
	}
	return n
}

// Kind reports the variant.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether n is the absent value.
func (n Node) IsNull() bool { return n.kind == KindNull }

// Value returns the scalar payload, or nil for non-scalars.
func (n Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.scalar
}

// Items returns a copy of the sequence elements.
func (n Node) Items() []Node {
	if n.kind != KindSequence {
		return nil
	}
	return Sequence(n.items...).items
}

// Keys returns mapping keys in sorted order.
func (n Node) Keys() []string {
	if n.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the child stored under key.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindMapping {
		return Node{}, false
	}
	v, ok := n.fields[key]
	if !ok {
		return Node{}, false
	}
	return v.Clone(), true
}

// Lookup follows a key path through nested mappings.
func (n Node) Lookup(path ...string) (Node, bool) {
	cur := n
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return cur, true
}

// With returns a copy of n with key set to v. A non-mapping n is treated as
// an empty mapping.
func (n Node) With(key string, v Node) Node {
	out := n.Clone()
	if out.kind != KindMapping {
		out = Mapping(nil)
	}
	out.fields[key] = v.Clone()
	return out
}

// Without returns a copy of n with key removed.
func (n Node) Without(key string) Node {
	out := n.Clone()
	if out.kind == KindMapping {
		delete(out.fields, key)
	}
	return out
}

// Clone deep-copies n.
func (n Node) Clone() Node {
	switch n.kind {
	case KindSequence:
		items := make([]Node, len(n.items))
		for i, it := range n.items {
			items[i] = it.Clone()
		}
		return Node{kind: KindSequence, items: items}
	case KindMapping:
		fields := make(map[string]Node, len(n.fields))
		for k, v := range n.fields {
			fields[k] = v.Clone()
		}
		return Node{kind: KindMapping, fields: fields}
	default:
		return n
	}
}

// Equal reports deep equality.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindNull:
		return true
	case KindScalar:
		if a, ok := n.scalar.(time.Time); ok {
			b, ok := o.scalar.(time.Time)
			return ok && a.Equal(b)
		}
		return reflect.DeepEqual(n.scalar, o.scalar)
	case KindSequence:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		if len(n.fields) != len(o.fields) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := o.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
}

// String renders n as a TOML value, for display.
func (n Node) String() string {
	switch n.kind {
	case KindNull:
		return "null"
	case KindMapping:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(n.Interface()); err != nil {
			return fmt.Sprintf("%v", n.Interface())
		}
		return buf.String()
	default:
		// Encode as a single key and strip it back off.
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(map[string]any{"v": n.Interface()}); err != nil {
			return fmt.Sprintf("%v", n.Interface())
		}
		return string(bytes.TrimSpace(bytes.TrimPrefix(buf.Bytes(), []byte("v = "))))
	}
}

// FromValue converts decoded TOML (or any map/slice/scalar mix) into a Node.
func FromValue(v any) Node {
	switch t := v.(type) {
	case nil:
		return Node{}
	case Node:
		return t.Clone()
	case map[string]any:
		n := Node{kind: KindMapping, fields: make(map[string]Node, len(t))}
		for k, child := range t {
			n.fields[k] = FromValue(child)
		}
		return n
	case []map[string]any:
		n := Node{kind: KindSequence, items: make([]Node, len(t))}
		for i, child := range t {
			n.items[i] = FromValue(child)
		}
		return n
	case []any:
		n := Node{kind: KindSequence, items: make([]Node, len(t))}
		for i, child := range t {
			n.items[i] = FromValue(child)
		}
		return n
	case []string:
		n := Node{kind: KindSequence, items: make([]Node, len(t))}
		for i, child := range t {
			n.items[i] = Scalar(child)
		}
		return n
	default:
		return Scalar(v)
	}
}

// Interface converts n back to plain Go values suitable for the TOML
// encoder. Null mapping entries and sequence items are dropped since TOML has
// no null.
func (n Node) Interface() any {
	switch n.kind {
	case KindScalar:
		return n.scalar
	case KindSequence:
		out := make([]any, 0, len(n.items))
		for _, it := range n.items {
			if it.kind == KindNull {
				continue
			}
			out = append(out, it.Interface())
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(n.fields))
		for k, v := range n.fields {
			if v.kind == KindNull {
				continue
			}
			out[k] = v.Interface()
		}
		return out
	default:
		return nil
	}
}

func normalizeScalar(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

// ParseTree decodes TOML text into a mapping Node.
func ParseTree(data []byte) (Node, error) {
	raw := map[string]any{}
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return Node{}, err
	}
	return FromValue(raw), nil
}

// EncodeTree renders a mapping Node as TOML text.
func EncodeTree(n Node) ([]byte, error) {
	if n.kind != KindMapping && n.kind != KindNull {
		return nil, fmt.Errorf("encoding %s node: top level must be a mapping", n.kind)
	}
	v := n.Interface()
	if v == nil {
		v = map[string]any{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// treeOf converts a typed value (for example Config) into a Node by a TOML
// round trip.
func treeOf(v any) (Node, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return Node{}, err
	}
	return ParseTree(buf.Bytes())
}
