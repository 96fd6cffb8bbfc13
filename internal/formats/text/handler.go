// Package text renders printable byte values as UTF-8 text and acts
// as the lowest-confidence fallback reading of any input.
package text

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the UTF-8 text analyzer.
type Handler struct {
	format.Base
}

// New returns the text analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "utf8",
		Name:        "UTF-8 text",
		Category:    "raw",
		Description: "input taken at face value as text",
		Aliases:     []string{"text", "string"},
	})}
}

// Parse always succeeds for valid text, at a confidence low enough
// that any structured reading outranks it.
func (h *Handler) Parse(input string) []format.Interpretation {
	if input == "" || !utf8.ValidString(input) {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Text(input),
		Confidence:  0.1,
		Description: fmt.Sprintf("plain text, %d characters", utf8.RuneCountInString(input)),
	}}
}

// CanFormat renders byte values that are printable text.
func (h *Handler) CanFormat(v value.Value) bool {
	raw, ok := v.Bytes()
	return ok && printable(raw)
}

// Format shows printable bytes as a quoted string.
func (h *Handler) Format(v value.Value) (string, bool) {
	raw, ok := v.Bytes()
	if !ok || !printable(raw) {
		return "", false
	}
	return fmt.Sprintf("%q", string(raw)), true
}

// printable requires valid UTF-8 with no control characters beyond
// whitespace.
func printable(raw []byte) bool {
	if len(raw) == 0 || !utf8.Valid(raw) {
		return false
	}
	s := string(raw)
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsPrint(r) && !unicode.IsSpace(r)
	}) < 0
}
