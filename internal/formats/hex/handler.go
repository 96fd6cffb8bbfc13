// Package hex recognizes and renders hexadecimal byte strings.
package hex

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the hex analyzer.
type Handler struct {
	format.Base
}

// New returns the hex analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "hex",
		Name:        "Hexadecimal",
		Category:    "encoding",
		Description: "hexadecimal byte string, with or without 0x prefix",
		Examples:    []string{"deadbeef", "0x691E01B8"},
		Aliases:     []string{"base16", "hexadecimal"},
		CanValidate: true,
	})}
}

// Parse recognizes an even run of hex digits. An all-decimal string
// still decodes but ranks low: it is more likely a plain number.
func (h *Handler) Parse(input string) []format.Interpretation {
	s := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if len(s) < 2 || len(s)%2 != 0 {
		return nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}

	confidence := 0.85
	switch {
	case len(input) > len(s):
		// Explicit 0x prefix.
		confidence = 0.95
	case allDecimal(s):
		confidence = 0.3
	}
	return []format.Interpretation{{
		Value:       value.Bytes(raw),
		Confidence:  confidence,
		Description: fmt.Sprintf("hex, %d bytes", len(raw)),
	}}
}

// CanFormat renders any byte value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Bytes()
	return ok
}

// Format renders bytes as lowercase hex.
func (h *Handler) Format(v value.Value) (string, bool) {
	raw, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return hex.EncodeToString(raw), true
}

// Validate explains why input is not hex.
func (h *Handler) Validate(input string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if len(s) == 0 {
		return "empty input"
	}
	if len(s)%2 != 0 {
		return "odd number of hex digits"
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return fmt.Sprintf("invalid hex digit %q at position %d", s[i], i)
		}
	}
	return ""
}

func allDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
