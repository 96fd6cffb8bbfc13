package integer

import (
	"testing"

	"github.com/tokenlens/tokenlens/core/value"
)

func TestDecimalParse(t *testing.T) {
	d := NewDecimal()

	got := d.Parse("1763574200")
	if len(got) != 1 {
		t.Fatalf("Parse() = %v", got)
	}
	n, _ := got[0].Value.Int()
	if n.Int64() != 1763574200 {
		t.Errorf("value = %v", n)
	}

	got = d.Parse("-42")
	if len(got) != 1 {
		t.Fatalf("Parse(-42) = %v", got)
	}
	n, _ = got[0].Value.Int()
	if n.Int64() != -42 {
		t.Errorf("value = %v", n)
	}

	for _, input := range []string{"", "-", "12.5", "0x10", "abc"} {
		if got := d.Parse(input); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, got)
		}
	}
}

func TestBigEndianConversion(t *testing.T) {
	be := NewBigEndian()

	convs := be.Conversions(value.Bytes([]byte{0x69, 0x1e, 0x01, 0xb8}))
	if len(convs) != 1 {
		t.Fatalf("Conversions() = %v", convs)
	}
	if convs[0].Display != "1763574200" {
		t.Errorf("display = %q", convs[0].Display)
	}
	if convs[0].TargetFormat != "int-be" {
		t.Errorf("target = %q", convs[0].TargetFormat)
	}
	// The integer remembers its source bytes.
	if src, ok := convs[0].Value.IntSource(); !ok || len(src) != 4 {
		t.Errorf("IntSource() = %x, %v", src, ok)
	}

	// Long byte strings are payloads, not words.
	if convs := be.Conversions(value.Bytes(make([]byte, 9))); convs != nil {
		t.Errorf("9 bytes: %v", convs)
	}
	if convs := be.Conversions(value.Text("x")); convs != nil {
		t.Errorf("text: %v", convs)
	}
}

func TestLittleEndianConversion(t *testing.T) {
	le := NewLittleEndian()

	convs := le.Conversions(value.Bytes([]byte{0xb8, 0x01, 0x1e, 0x69}))
	if len(convs) != 1 {
		t.Fatalf("Conversions() = %v", convs)
	}
	if convs[0].Display != "1763574200" {
		t.Errorf("display = %q", convs[0].Display)
	}

	// A single byte reads the same in both orders; leave it to int-be.
	if convs := le.Conversions(value.Bytes([]byte{0x7f})); convs != nil {
		t.Errorf("single byte: %v", convs)
	}
}

func TestDecimalFormat(t *testing.T) {
	d := NewDecimal()
	got, ok := d.Format(value.Int64(255))
	if !ok || got != "255" {
		t.Errorf("Format() = %q, %v", got, ok)
	}
	if d.CanFormat(value.Text("x")) {
		t.Error("CanFormat(text) = true")
	}
}
