// Package base32 recognizes RFC 4648 base32 encodings.
package base32

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the base32 analyzer.
type Handler struct {
	format.Base
}

// New returns the base32 analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "base32",
		Name:        "Base32",
		Category:    "encoding",
		Description: "RFC 4648 base32, upper-case alphabet",
		Examples:    []string{"NFXGK2LOM5ZQ====", "JBSWY3DP"},
		Aliases:     []string{"b32"},
		CanValidate: true,
	})}
}

// Parse decodes the upper-case RFC 4648 alphabet. The alphabet
// overlaps prose heavily, so only padded input or a longer run ranks
// above the confidence floor most callers use.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) < 8 || strings.ToUpper(input) != input {
		return nil
	}
	raw, padded, err := decode(input)
	if err != nil || len(raw) == 0 {
		return nil
	}

	confidence := 0.4
	if padded {
		confidence = 0.8
	}
	return []format.Interpretation{{
		Value:       value.Bytes(raw),
		Confidence:  confidence,
		Description: fmt.Sprintf("base32, %d bytes", len(raw)),
	}}
}

// CanFormat renders any byte value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Bytes()
	return ok
}

// Format renders bytes as padded base32.
func (h *Handler) Format(v value.Value) (string, bool) {
	raw, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return base32.StdEncoding.EncodeToString(raw), true
}

// Validate explains why input is not base32.
func (h *Handler) Validate(input string) string {
	if len(input) == 0 {
		return "empty input"
	}
	if strings.ToUpper(input) != input {
		return "base32 uses the upper-case alphabet A-Z2-7"
	}
	if _, _, err := decode(input); err != nil {
		return err.Error()
	}
	if len(input) < 8 {
		return "too short to be meaningful base32"
	}
	return ""
}

func decode(input string) (raw []byte, padded bool, err error) {
	if strings.HasSuffix(input, "=") {
		raw, err = base32.StdEncoding.DecodeString(input)
		return raw, true, err
	}
	raw, err = base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(input)
	return raw, false, err
}
