package ipaddr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tokenlens/tokenlens/core/value"
)

func TestV4Parse(t *testing.T) {
	h := NewV4()

	got := h.Parse("192.168.1.1")
	if len(got) != 1 {
		t.Fatalf("Parse() = %v", got)
	}
	raw, _ := got[0].Value.Bytes()
	if !bytes.Equal(raw, []byte{192, 168, 1, 1}) {
		t.Errorf("bytes = %v", raw)
	}
	if !strings.Contains(got[0].Description, "private") {
		t.Errorf("description = %q", got[0].Description)
	}

	got = h.Parse("127.0.0.1")
	if len(got) != 1 || !strings.Contains(got[0].Description, "loopback") {
		t.Errorf("loopback: %+v", got)
	}

	for _, input := range []string{"", "256.1.1.1", "1.2.3", "2001:db8::1", "a.b.c.d"} {
		if got := h.Parse(input); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, got)
		}
	}
}

func TestV4Conversions(t *testing.T) {
	h := NewV4()
	convs := h.Conversions(value.Bytes([]byte{10, 0, 0, 1}))
	if len(convs) != 1 || convs[0].Display != "10.0.0.1" {
		t.Errorf("Conversions() = %+v", convs)
	}
	if convs := h.Conversions(value.Bytes([]byte{1, 2, 3})); convs != nil {
		t.Errorf("wrong length: %v", convs)
	}
}

func TestV6Parse(t *testing.T) {
	h := NewV6()

	got := h.Parse("2001:db8::1")
	if len(got) != 1 {
		t.Fatalf("Parse() = %v", got)
	}
	raw, _ := got[0].Value.Bytes()
	if len(raw) != 16 || raw[0] != 0x20 || raw[15] != 0x01 {
		t.Errorf("bytes = %x", raw)
	}

	got = h.Parse("::1")
	if len(got) != 1 || !strings.Contains(got[0].Description, "loopback") {
		t.Errorf("loopback: %+v", got)
	}

	// IPv4 and 4-in-6 text belongs to the IPv4 analyzer.
	for _, input := range []string{"192.168.1.1", "::ffff:192.168.1.1", "nope"} {
		if got := h.Parse(input); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, got)
		}
	}
}

func TestV6Conversions(t *testing.T) {
	h := NewV6()
	raw := make([]byte, 16)
	raw[15] = 1
	convs := h.Conversions(value.Bytes(raw))
	if len(convs) != 1 || convs[0].Display != "::1" {
		t.Errorf("Conversions() = %+v", convs)
	}
}
