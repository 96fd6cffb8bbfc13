// Package speed recognizes speed quantities with a unit suffix.
package speed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Factors to metres per second.
var units = []struct {
	suffix string
	factor float64
}{
	{"km/h", 1.0 / 3.6},
	{"kmh", 1.0 / 3.6},
	{"kph", 1.0 / 3.6},
	{"mph", 0.44704},
	{"m/s", 1},
	{"mps", 1},
	{"kt", 0.514444},
	{"kn", 0.514444},
	{"knots", 0.514444},
}

// Handler is the speed analyzer.
type Handler struct {
	format.Base
}

// New returns the speed analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "speed",
		Name:        "Speed",
		Category:    "units",
		Description: "speed with a unit: km/h, mph, m/s, kt",
		Examples:    []string{"100km/h", "65 mph"},
	})}
}

// Parse recognizes a number directly followed by, or separated by one
// space from, a speed unit. The value is normalized to m/s.
func (h *Handler) Parse(input string) []format.Interpretation {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, u := range units {
		rest, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		n, err := strconv.ParseFloat(rest, 64)
		if err != nil || n < 0 {
			return nil
		}
		return []format.Interpretation{{
			Value:       value.Speed(n * u.factor),
			Confidence:  0.9,
			Description: fmt.Sprintf("speed, %.4g m/s", n*u.factor),
		}}
	}
	return nil
}

// Conversions renders a speed in the common units at once. The view
// is terminal; each unit is arithmetic on the same scalar.
func (h *Handler) Conversions(v value.Value) []format.Conversion {
	ms, ok := v.Speed()
	if !ok {
		return nil
	}
	display := fmt.Sprintf("%.4g m/s = %.4g km/h = %.4g mph = %.4g kt",
		ms, ms*3.6, ms/0.44704, ms/0.514444)
	return []format.Conversion{{
		Value:        v,
		TargetFormat: "speed",
		Display:      display,
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}
