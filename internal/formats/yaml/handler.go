// Package yaml recognizes YAML documents and renders structured
// values as YAML.
package yaml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the YAML analyzer.
type Handler struct {
	format.Base
}

// New returns the YAML analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "yaml",
		Name:        "YAML",
		Category:    "structured",
		Description: "YAML mapping or sequence",
		Examples:    []string{"a: 1", "- one"},
		Aliases:     []string{"yml"},
	})}
}

// Parse recognizes YAML mappings and sequences. Almost any text is a
// valid YAML scalar, so the analyzer requires mapping or sequence
// syntax before it claims the input, and leaves JSON (a YAML subset)
// to the JSON analyzer.
func (h *Handler) Parse(input string) []format.Interpretation {
	s := strings.TrimSpace(input)
	if len(s) < 3 || s[0] == '{' || s[0] == '[' {
		return nil
	}
	if !strings.Contains(s, ": ") && !strings.HasSuffix(s, ":") &&
		!strings.Contains(s, ":\n") && !strings.HasPrefix(s, "- ") {
		return nil
	}
	var raw any
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	switch raw.(type) {
	case map[string]any, map[any]any, []any:
	default:
		return nil
	}
	node, err := value.FromAny(raw)
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Structured(node),
		Confidence:  0.7,
		Description: describe(node),
	}}
}

// CanFormat renders any structured value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Structured()
	return ok
}

// Format renders a structured value as YAML.
func (h *Handler) Format(v value.Value) (string, bool) {
	node, ok := v.Structured()
	if !ok {
		return "", false
	}
	data, err := yaml.Marshal(node.ToAny())
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), "\n"), true
}

func describe(node *value.Node) string {
	switch node.NodeKind() {
	case value.NodeMap:
		return fmt.Sprintf("YAML mapping, %d keys", node.Len())
	case value.NodeList:
		return fmt.Sprintf("YAML sequence, %d items", node.Len())
	default:
		return "YAML document"
	}
}
