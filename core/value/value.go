// Package value defines the core tagged value that flows between
// analyzers. Exactly one variant is active at a time; which analyzer
// operations apply to a value is determined solely by its kind.
package value

import (
	"bytes"
	"fmt"
	"math/big"
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	// KindBytes is a raw byte sequence.
	KindBytes Kind = iota
	// KindInt is a signed arbitrary-width integer.
	KindInt
	// KindFloat is a floating point number.
	KindFloat
	// KindText is a Unicode string.
	KindText
	// KindStructured is a recursive JSON-like value.
	KindStructured
	// KindSpeed is a speed in metres per second.
	KindSpeed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindStructured:
		return "structured"
	case KindSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Value is the tagged union passed between analyzers. Values are
// immutable after construction; callers must not modify slices
// obtained from accessors.
type Value struct {
	kind Kind

	bytesVal []byte
	intVal   *big.Int
	intSrc   []byte // originating byte sequence, if the integer was decoded from bytes
	floatVal float64
	textVal  string
	node     *Node
	speedVal float64
}

// Bytes constructs a byte-sequence value.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bytesVal: b}
}

// Int constructs an integer value.
func Int(i *big.Int) Value {
	return Value{kind: KindInt, intVal: i}
}

// Int64 constructs an integer value from a native int64.
func Int64(i int64) Value {
	return Value{kind: KindInt, intVal: big.NewInt(i)}
}

// IntFromBytes constructs an integer value that remembers the byte
// sequence it was decoded from, so byte-oriented analyzers further
// down a conversion chain can recover the original octets.
func IntFromBytes(i *big.Int, src []byte) Value {
	return Value{kind: KindInt, intVal: i, intSrc: src}
}

// Float constructs a floating point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, floatVal: f}
}

// Text constructs a text value.
func Text(s string) Value {
	return Value{kind: KindText, textVal: s}
}

// Structured constructs a structured value from a node tree.
func Structured(n *Node) Value {
	return Value{kind: KindStructured, node: n}
}

// Speed constructs a speed value in metres per second.
func Speed(metresPerSecond float64) Value {
	return Value{kind: KindSpeed, speedVal: metresPerSecond}
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// Bytes returns the byte sequence if the value is a byte sequence.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bytesVal, true
}

// Int returns the integer if the value is an integer.
func (v Value) Int() (*big.Int, bool) {
	if v.kind != KindInt {
		return nil, false
	}
	return v.intVal, true
}

// IntSource returns the byte sequence an integer value was decoded
// from, when known.
func (v Value) IntSource() ([]byte, bool) {
	if v.kind != KindInt || v.intSrc == nil {
		return nil, false
	}
	return v.intSrc, true
}

// Float returns the float if the value is a float.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.floatVal, true
}

// Text returns the string if the value is text.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.textVal, true
}

// Structured returns the node tree if the value is structured.
func (v Value) Structured() (*Node, bool) {
	if v.kind != KindStructured {
		return nil, false
	}
	return v.node, true
}

// Speed returns metres per second if the value is a speed.
func (v Value) Speed() (float64, bool) {
	if v.kind != KindSpeed {
		return 0, false
	}
	return v.speedVal, true
}

// Equal reports whether two values have the same kind and content.
// Integer provenance (IntSource) is not compared.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBytes:
		return bytes.Equal(v.bytesVal, o.bytesVal)
	case KindInt:
		return v.intVal.Cmp(o.intVal) == 0
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindText:
		return v.textVal == o.textVal
	case KindStructured:
		return v.node.Equal(o.node)
	case KindSpeed:
		return v.speedVal == o.speedVal
	default:
		return false
	}
}

// String returns a short debug rendering. Not intended for display;
// analyzers own canonical rendering.
func (v Value) String() string {
	switch v.kind {
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytesVal))
	case KindInt:
		return "int(" + v.intVal.String() + ")"
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.floatVal)
	case KindText:
		return fmt.Sprintf("text(%q)", v.textVal)
	case KindStructured:
		return "structured"
	case KindSpeed:
		return fmt.Sprintf("speed(%g m/s)", v.speedVal)
	default:
		return "unknown"
	}
}
