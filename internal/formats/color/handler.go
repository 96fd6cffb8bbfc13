// Package color recognizes hex color notation and renders 3-byte
// values as colors.
package color

import (
	"fmt"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the hex color analyzer.
type Handler struct {
	format.Base
}

// New returns the hex color analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "color-hex",
		Name:        "Hex color",
		Category:    "color",
		Description: "#RGB or #RRGGBB web color",
		Examples:    []string{"#ff8800", "#f80"},
		Aliases:     []string{"color"},
	})}
}

// Parse recognizes #RGB and #RRGGBB. The value is the three RGB
// channel bytes. Colors without the leading '#' are indistinguishable
// from plain hex and are left to the hex analyzer.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) == 0 || input[0] != '#' {
		return nil
	}
	s := input[1:]
	var channels []byte
	switch len(s) {
	case 3:
		channels = make([]byte, 3)
		for i := 0; i < 3; i++ {
			n, ok := nibble(s[i])
			if !ok {
				return nil
			}
			channels[i] = n<<4 | n
		}
	case 6:
		channels = make([]byte, 3)
		for i := 0; i < 3; i++ {
			hi, ok1 := nibble(s[2*i])
			lo, ok2 := nibble(s[2*i+1])
			if !ok1 || !ok2 {
				return nil
			}
			channels[i] = hi<<4 | lo
		}
	default:
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Bytes(channels),
		Confidence:  0.95,
		Description: describe(channels),
	}}
}

// Conversions renders any 3-byte value as a color.
func (h *Handler) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) != 3 {
		return nil
	}
	return []format.Conversion{{
		Value:        value.Text(hexNotation(raw)),
		TargetFormat: "color-hex",
		Display:      describe(raw),
		Kind:         format.KindRepresentation,
		Priority:     format.PriorityRaw,
		DisplayOnly:  true,
	}}
}

func describe(rgb []byte) string {
	return fmt.Sprintf("%s rgb(%d, %d, %d)", hexNotation(rgb), rgb[0], rgb[1], rgb[2])
}

func hexNotation(rgb []byte) string {
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

func nibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
