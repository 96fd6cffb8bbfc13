package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// NodeKind identifies the variant of a structured node.
type NodeKind uint8

const (
	// NodeNull is a JSON null.
	NodeNull NodeKind = iota
	// NodeBool is a boolean.
	NodeBool
	// NodeNumber is a number.
	NodeNumber
	// NodeString is a string.
	NodeString
	// NodeList is an ordered list.
	NodeList
	// NodeMap is a key/value mapping with deterministic key order.
	NodeMap
)

// Node is one node of a recursive JSON-like structured value.
type Node struct {
	kind    NodeKind
	boolVal bool
	numVal  float64
	strVal  string
	items   []*Node
	keys    []string
	vals    []*Node
}

// Null returns the null node.
func Null() *Node { return &Node{kind: NodeNull} }

// Bool constructs a boolean node.
func Bool(b bool) *Node { return &Node{kind: NodeBool, boolVal: b} }

// Number constructs a number node.
func Number(f float64) *Node { return &Node{kind: NodeNumber, numVal: f} }

// StringNode constructs a string node.
func StringNode(s string) *Node { return &Node{kind: NodeString, strVal: s} }

// List constructs a list node.
func List(items ...*Node) *Node { return &Node{kind: NodeList, items: items} }

// Map constructs an empty map node. Entries are appended with Set.
func Map() *Node { return &Node{kind: NodeMap} }

// Set appends a key/value entry to a map node. It panics on non-map
// nodes; map construction is an internal, controlled operation.
func (n *Node) Set(key string, v *Node) *Node {
	if n.kind != NodeMap {
		panic("value: Set on non-map node")
	}
	n.keys = append(n.keys, key)
	n.vals = append(n.vals, v)
	return n
}

// NodeKind returns the node variant.
func (n *Node) NodeKind() NodeKind { return n.kind }

// BoolVal returns the boolean content of a bool node.
func (n *Node) BoolVal() bool { return n.boolVal }

// NumberVal returns the numeric content of a number node.
func (n *Node) NumberVal() float64 { return n.numVal }

// StringVal returns the string content of a string node.
func (n *Node) StringVal() string { return n.strVal }

// Items returns the elements of a list node.
func (n *Node) Items() []*Node { return n.items }

// Keys returns the keys of a map node in entry order.
func (n *Node) Keys() []string { return n.keys }

// Get returns the value for a key of a map node.
func (n *Node) Get(key string) (*Node, bool) {
	for i, k := range n.keys {
		if k == key {
			return n.vals[i], true
		}
	}
	return nil, false
}

// Len returns the number of entries of a list or map node.
func (n *Node) Len() int {
	if n.kind == NodeMap {
		return len(n.keys)
	}
	return len(n.items)
}

// Equal reports deep structural equality.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case NodeNull:
		return true
	case NodeBool:
		return n.boolVal == o.boolVal
	case NodeNumber:
		return n.numVal == o.numVal
	case NodeString:
		return n.strVal == o.strVal
	case NodeList:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case NodeMap:
		if len(n.keys) != len(o.keys) {
			return false
		}
		for i := range n.keys {
			if n.keys[i] != o.keys[i] || !n.vals[i].Equal(o.vals[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromAny converts a decoded interface tree (as produced by
// encoding/json or yaml unmarshalling) into a node tree. Map keys are
// sorted so identical inputs always yield identical trees.
func FromAny(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case string:
		return StringNode(t), nil
	case []any:
		items := make([]*Node, 0, len(t))
		for _, it := range t {
			n, err := FromAny(it)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := Map()
		for _, k := range keys {
			n, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, n)
		}
		return m, nil
	case map[any]any:
		// yaml.v3 can produce non-string keys for legacy documents.
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, v := range t {
			ks := fmt.Sprintf("%v", k)
			keys = append(keys, ks)
			byKey[ks] = v
		}
		sort.Strings(keys)
		m := Map()
		for _, k := range keys {
			n, err := FromAny(byKey[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, n)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported structured element %T", v)
	}
}

// ToAny converts a node tree back to a plain interface tree suitable
// for re-encoding.
func (n *Node) ToAny() any {
	switch n.kind {
	case NodeNull:
		return nil
	case NodeBool:
		return n.boolVal
	case NodeNumber:
		return n.numVal
	case NodeString:
		return n.strVal
	case NodeList:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.ToAny()
		}
		return out
	case NodeMap:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			out[k] = n.vals[i].ToAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the node tree as JSON with deterministic key
// order.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case NodeNull:
		return []byte("null"), nil
	case NodeBool:
		return strconv.AppendBool(nil, n.boolVal), nil
	case NodeNumber:
		return json.Marshal(n.numVal)
	case NodeString:
		return json.Marshal(n.strVal)
	case NodeList:
		return json.Marshal(n.items)
	case NodeMap:
		buf := []byte{'{'}
		for i, k := range n.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := json.Marshal(n.vals[i])
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("unsupported node kind %d", n.kind)
	}
}
