// Package base64 recognizes standard and URL-safe base64 encodings.
package base64

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the standard-alphabet base64 analyzer.
type Handler struct {
	format.Base
}

// New returns the standard base64 analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "base64",
		Name:        "Base64",
		Category:    "encoding",
		Description: "standard-alphabet base64, padded or unpadded",
		Examples:    []string{"aR4BuA==", "aGVsbG8"},
		Aliases:     []string{"b64"},
		CanValidate: true,
	})}
}

// Parse decodes the standard alphabet. Padding or a length that is an
// exact multiple of 4 raises confidence; short unpadded strings also
// read as prose, so they rank lower.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) < 4 || strings.ContainsAny(input, "-_") {
		return nil
	}
	raw, padded, err := decodeStd(input)
	if err != nil {
		return nil
	}

	confidence := 0.5
	if padded {
		confidence = 0.9
	} else if len(input)%4 == 0 && !looksLikeWord(input) {
		confidence = 0.7
	}
	return []format.Interpretation{{
		Value:       value.Bytes(raw),
		Confidence:  confidence,
		Description: fmt.Sprintf("base64, %d bytes", len(raw)),
	}}
}

// CanFormat renders any byte value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Bytes()
	return ok
}

// Format renders bytes as padded standard base64.
func (h *Handler) Format(v value.Value) (string, bool) {
	raw, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(raw), true
}

// Validate explains why input is not base64.
func (h *Handler) Validate(input string) string {
	if len(input) == 0 {
		return "empty input"
	}
	if strings.ContainsAny(input, "-_") {
		return "contains URL-safe alphabet characters; try base64-url"
	}
	if _, _, err := decodeStd(input); err != nil {
		return err.Error()
	}
	if len(input) < 4 {
		return "too short to be meaningful base64"
	}
	return ""
}

// URLHandler is the URL-safe alphabet analyzer. It only claims inputs
// that actually use the URL-safe characters, so plain base64 is not
// reported twice.
type URLHandler struct {
	format.Base
}

// NewURL returns the URL-safe base64 analyzer.
func NewURL() *URLHandler {
	return &URLHandler{Base: format.NewBase(format.Info{
		ID:          "base64-url",
		Name:        "Base64 (URL-safe)",
		Category:    "encoding",
		Description: "URL-safe base64, as used in JWTs and URL tokens",
		Examples:    []string{"aR4BuA", "eyJhbGciOiJIUzI1NiJ9"},
		Aliases:     []string{"b64url", "base64url"},
	})}
}

// Parse decodes the URL-safe alphabet when '-' or '_' is present.
func (h *URLHandler) Parse(input string) []format.Interpretation {
	if len(input) < 4 || !strings.ContainsAny(input, "-_") {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(input, "="))
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Bytes(raw),
		Confidence:  0.85,
		Description: fmt.Sprintf("URL-safe base64, %d bytes", len(raw)),
	}}
}

func decodeStd(input string) (raw []byte, padded bool, err error) {
	if strings.HasSuffix(input, "=") {
		raw, err = base64.StdEncoding.DecodeString(input)
		return raw, true, err
	}
	raw, err = base64.RawStdEncoding.DecodeString(input)
	return raw, false, err
}

// looksLikeWord guards against plain prose: a single-case alphabetic
// string is more likely a word than an encoding.
func looksLikeWord(s string) bool {
	hasUpper, hasLower, hasOther := false, false, false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		default:
			hasOther = true
		}
	}
	return !hasOther && hasUpper != hasLower
}
