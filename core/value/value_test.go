package value

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Kind
	}{
		{name: "bytes", v: Bytes([]byte{1, 2}), want: KindBytes},
		{name: "int", v: Int64(42), want: KindInt},
		{name: "float", v: Float(1.5), want: KindFloat},
		{name: "text", v: Text("hi"), want: KindText},
		{name: "structured", v: Structured(Null()), want: KindStructured},
		{name: "speed", v: Speed(3.0), want: KindSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessorsRejectWrongKind(t *testing.T) {
	v := Text("hello")
	if _, ok := v.Bytes(); ok {
		t.Error("Bytes() on text value should report false")
	}
	if _, ok := v.Int(); ok {
		t.Error("Int() on text value should report false")
	}
	if s, ok := v.Text(); !ok || s != "hello" {
		t.Errorf("Text() = %q, %v, want %q, true", s, ok, "hello")
	}
}

func TestIntSource(t *testing.T) {
	src := []byte{0x69, 0x1E, 0x01, 0xB8}
	v := IntFromBytes(big.NewInt(1763574200), src)

	got, ok := v.IntSource()
	if !ok {
		t.Fatal("IntSource() should be present")
	}
	if len(got) != 4 || got[0] != 0x69 {
		t.Errorf("IntSource() = %x, want %x", got, src)
	}

	if _, ok := Int64(7).IntSource(); ok {
		t.Error("IntSource() without provenance should report false")
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "equal bytes", a: Bytes([]byte{1, 2}), b: Bytes([]byte{1, 2}), want: true},
		{name: "unequal bytes", a: Bytes([]byte{1}), b: Bytes([]byte{2}), want: false},
		{name: "equal ints ignore provenance", a: Int64(9), b: IntFromBytes(big.NewInt(9), []byte{9}), want: true},
		{name: "kind mismatch", a: Text("1"), b: Int64(1), want: false},
		{name: "equal speed", a: Speed(2.5), b: Speed(2.5), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromAnyDeterministicKeyOrder(t *testing.T) {
	n1, err := FromAny(map[string]any{"b": 1.0, "a": 2.0, "c": 3.0})
	if err != nil {
		t.Fatalf("FromAny() error: %v", err)
	}
	n2, err := FromAny(map[string]any{"c": 3.0, "a": 2.0, "b": 1.0})
	if err != nil {
		t.Fatalf("FromAny() error: %v", err)
	}
	if !n1.Equal(n2) {
		t.Error("FromAny() should produce identical trees regardless of map iteration order")
	}
	if keys := n1.Keys(); len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("Keys() = %v, want sorted [a b c]", keys)
	}
}

func TestNodeMarshalJSON(t *testing.T) {
	n := Map().
		Set("alpha", Number(1)).
		Set("beta", List(StringNode("x"), Bool(true), Null()))

	got, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"alpha":1,"beta":["x",true,null]}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestNodeRoundTrip(t *testing.T) {
	var decoded any
	raw := `{"name":"probe","tags":["a","b"],"count":3,"nested":{"ok":true}}`
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	n, err := FromAny(decoded)
	if err != nil {
		t.Fatalf("FromAny() error: %v", err)
	}

	back, err := FromAny(n.ToAny())
	if err != nil {
		t.Fatalf("FromAny(ToAny()) error: %v", err)
	}
	if !n.Equal(back) {
		t.Error("ToAny/FromAny round trip should preserve structure")
	}
}
