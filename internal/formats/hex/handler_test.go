package hex

import (
	"bytes"
	"testing"

	"github.com/tokenlens/tokenlens/core/value"
)

func TestParse(t *testing.T) {
	h := New()

	tests := []struct {
		name    string
		input   string
		want    []byte
		minConf float64
		maxConf float64
	}{
		{"plain", "deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}, 0.8, 0.9},
		{"prefixed", "0x691E01B8", []byte{0x69, 0x1e, 0x01, 0xb8}, 0.9, 1},
		{"upper", "CAFE", []byte{0xca, 0xfe}, 0.8, 0.9},
		{"all decimal ranks low", "1234", []byte{0x12, 0x34}, 0, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Parse(tt.input)
			if len(got) != 1 {
				t.Fatalf("Parse(%q) = %v", tt.input, got)
			}
			raw, ok := got[0].Value.Bytes()
			if !ok || !bytes.Equal(raw, tt.want) {
				t.Errorf("decoded = %x, want %x", raw, tt.want)
			}
			if c := got[0].Confidence; c < tt.minConf || c > tt.maxConf {
				t.Errorf("confidence = %v, want in [%v,%v]", c, tt.minConf, tt.maxConf)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	h := New()
	for _, input := range []string{"", "a", "abc", "xyz1", "dead beef", "aR4BuA=="} {
		if got := h.Parse(input); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, got)
		}
	}
}

func TestFormat(t *testing.T) {
	h := New()
	v := value.Bytes([]byte{0x69, 0x1e, 0x01, 0xb8})
	if !h.CanFormat(v) {
		t.Fatal("CanFormat(bytes) = false")
	}
	got, ok := h.Format(v)
	if !ok || got != "691e01b8" {
		t.Errorf("Format() = %q, %v", got, ok)
	}
	if h.CanFormat(value.Text("x")) {
		t.Error("CanFormat(text) = true")
	}
}

func TestValidate(t *testing.T) {
	h := New()
	tests := []struct {
		input string
		valid bool
	}{
		{"deadbeef", true},
		{"abc", false},
		{"xy", false},
		{"", false},
	}
	for _, tt := range tests {
		diag := h.Validate(tt.input)
		if (diag == "") != tt.valid {
			t.Errorf("Validate(%q) = %q", tt.input, diag)
		}
	}
}
