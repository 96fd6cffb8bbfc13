// Package json recognizes JSON documents and renders structured
// values as compact JSON.
package json

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the JSON analyzer.
type Handler struct {
	format.Base
}

// New returns the JSON analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "json",
		Name:        "JSON",
		Category:    "structured",
		Description: "JSON object or array",
		Examples:    []string{`{"a":1}`, `[1,2,3]`},
		CanValidate: true,
	})}
}

// Parse recognizes a JSON object or array. Bare scalars are valid
// JSON too but mean nothing as documents, so they are skipped.
func (h *Handler) Parse(input string) []format.Interpretation {
	s := strings.TrimSpace(input)
	if len(s) < 2 || (s[0] != '{' && s[0] != '[') {
		return nil
	}
	var raw any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	node, err := value.FromAny(normalize(raw))
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Structured(node),
		Confidence:  0.98,
		Description: describe(node),
	}}
}

// CanFormat renders any structured value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Structured()
	return ok
}

// Format renders a structured value as compact JSON with
// deterministic key order.
func (h *Handler) Format(v value.Value) (string, bool) {
	node, ok := v.Structured()
	if !ok {
		return "", false
	}
	data, err := json.Marshal(node)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Validate explains why input is not JSON.
func (h *Handler) Validate(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return "empty input"
	}
	if s[0] != '{' && s[0] != '[' {
		return "expected an object or array"
	}
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return err.Error()
	}
	return ""
}

// normalize converts json.Number tokens to the float values the node
// tree carries.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

func describe(node *value.Node) string {
	switch node.NodeKind() {
	case value.NodeMap:
		return fmt.Sprintf("JSON object, %d keys", node.Len())
	case value.NodeList:
		return fmt.Sprintf("JSON array, %d items", node.Len())
	default:
		return "JSON document"
	}
}
