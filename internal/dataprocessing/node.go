package dataprocessing

import (
	"math"

	"github.com/valyala/fastjson"
)

// Node is a read-only view of one value in a parsed report. A Node that
// wraps nothing is absent; JSON null is treated as absent too. Accessors
// never fail: they report through their second result whether the value
// exists with the requested type.
type Node struct {
	v *fastjson.Value
}

// NewNode wraps a parsed fastjson value
func NewNode(v *fastjson.Value) Node {
	return Node{v: v}
}

// Exists reports whether the node holds a non-null value
func (n Node) Exists() bool {
	return n.v != nil && n.v.Type() != fastjson.TypeNull
}

// Kind names the JSON type of the node, or "absent"
func (n Node) Kind() string {
	if n.v == nil {
		return "absent"
	}
	return n.v.Type().String()
}

// Get walks object keys and returns the node at the end of path
func (n Node) Get(path ...string) Node {
	if n.v == nil {
		return Node{}
	}
	return Node{v: n.v.Get(path...)}
}

// IsObject reports whether the node is a JSON object
func (n Node) IsObject() bool {
	return n.v != nil && n.v.Type() == fastjson.TypeObject
}

// IsArray reports whether the node is a JSON array
func (n Node) IsArray() bool {
	return n.v != nil && n.v.Type() == fastjson.TypeArray
}

// Array returns the elements of an array node
func (n Node) Array() ([]Node, bool) {
	if !n.IsArray() {
		return nil, false
	}
	values, err := n.v.Array()
	if err != nil {
		return nil, false
	}
	out := make([]Node, len(values))
	for i, v := range values {
		out[i] = Node{v: v}
	}
	return out, true
}

// StringValue returns the value of a string node
func (n Node) StringValue() (string, bool) {
	if n.v == nil || n.v.Type() != fastjson.TypeString {
		return "", false
	}
	b, err := n.v.StringBytes()
	if err != nil {
		return "", false
	}
	return string(b), true
}

// FloatValue returns the value of a number node
func (n Node) FloatValue() (float64, bool) {
	if n.v == nil || n.v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	f, err := n.v.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// IntValue returns the value of a number node as an integer. Fractional
// numbers are truncated toward zero and numbers outside the int64 range
// saturate at its bounds.
func (n Node) IntValue() (int64, bool) {
	if n.v == nil || n.v.Type() != fastjson.TypeNumber {
		return 0, false
	}
	if i, err := n.v.Int64(); err == nil {
		return i, true
	}
	f, err := n.v.Float64()
	if err != nil {
		return 0, false
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

// BoolValue returns the value of a true/false node
func (n Node) BoolValue() (bool, bool) {
	if n.v == nil {
		return false, false
	}
	switch n.v.Type() {
	case fastjson.TypeTrue:
		return true, true
	case fastjson.TypeFalse:
		return false, true
	default:
		return false, false
	}
}
