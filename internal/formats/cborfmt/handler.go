// Package cborfmt decodes CBOR-encoded byte values.
package cborfmt

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

var decMode cbor.DecMode

func init() {
	// Bounded depth keeps hostile input from recursing the decoder.
	mode, err := cbor.DecOptions{
		MaxNestedLevels:  16,
		MaxArrayElements: 4096,
		MaxMapPairs:      4096,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = mode
}

// Handler is the CBOR analyzer.
type Handler struct {
	format.Base
}

// New returns the CBOR analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "cbor",
		Name:        "CBOR",
		Category:    "structured",
		Description: "CBOR-encoded map or array",
	})}
}

// Conversions decodes byte values whose first byte is a CBOR map or
// array head. Scalar heads are skipped: almost any byte decodes as
// some CBOR scalar, which would claim every byte string.
func (h *Handler) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) < 1 {
		return nil
	}
	major := raw[0] >> 5
	if major != 4 && major != 5 {
		return nil
	}

	var decoded any
	if err := decMode.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	node, err := value.FromAny(normalize(decoded))
	if err != nil {
		return nil
	}
	display := describe(node)
	return []format.Conversion{{
		Value:        value.Structured(node),
		TargetFormat: "cbor",
		Display:      display,
		Kind:         format.KindTransformation,
		Priority:     format.PriorityStructured,
	}}
}

// normalize converts the decoder's CBOR-specific shapes into the
// plain map/list/scalar shapes the node tree accepts.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprintf("%v", k)] = normalize(e)
		}
		return out
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
	case []byte:
		return fmt.Sprintf("%x", t)
	case uint64:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}

func describe(node *value.Node) string {
	switch node.NodeKind() {
	case value.NodeMap:
		return fmt.Sprintf("CBOR map, %d pairs", node.Len())
	case value.NodeList:
		return fmt.Sprintf("CBOR array, %d items", node.Len())
	default:
		return "CBOR document"
	}
}
