// Package isotime recognizes ISO 8601 / RFC 3339 date and time text.
package isotime

import (
	"time"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// layouts in order of specificity. Parsing stops at the first match.
var layouts = []struct {
	layout string
	conf   float64
}{
	{time.RFC3339Nano, 0.98},
	{time.RFC3339, 0.98},
	{"2006-01-02T15:04:05", 0.95},
	{"2006-01-02 15:04:05", 0.9},
	{"2006-01-02", 0.85},
}

// Handler is the ISO 8601 analyzer.
type Handler struct {
	format.Base
}

// New returns the ISO 8601 analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "iso8601",
		Name:        "ISO 8601 date/time",
		Category:    "time",
		Description: "ISO 8601 or RFC 3339 date and time",
		Examples:    []string{"2025-11-19T17:43:20Z", "2025-11-19"},
		Aliases:     []string{"rfc3339", "datetime"},
		CanValidate: true,
	})}
}

// Parse recognizes a calendar timestamp and carries it as Unix
// seconds, so numeric timestamp views chain from it.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) < 8 || len(input) > 40 || input[4] != '-' {
		return nil
	}
	for _, l := range layouts {
		t, err := time.Parse(l.layout, input)
		if err != nil {
			continue
		}
		return []format.Interpretation{{
			Value:       value.Int64(t.Unix()),
			Confidence:  l.conf,
			Description: t.UTC().Format(time.RFC3339) + " (" + t.Weekday().String() + ")",
		}}
	}
	return nil
}

// Conversions renders an epoch-range integer back as a calendar
// timestamp, terminal like the numeric epoch views.
func (h *Handler) Conversions(v value.Value) []format.Conversion {
	n, ok := v.Int()
	if !ok || !n.IsInt64() {
		return nil
	}
	sec := n.Int64()
	if sec < 1e8 || sec > 4e9 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return []format.Conversion{{
		Value:        v,
		TargetFormat: "iso8601",
		Display:      t.Format("2006-01-02 15:04:05 MST (Monday)"),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

// Validate explains why input is not an ISO 8601 timestamp.
func (h *Handler) Validate(input string) string {
	if len(input) < 8 {
		return "too short for a date"
	}
	if len(input) > 4 && input[4] != '-' {
		return "expected YYYY-MM-DD to start the timestamp"
	}
	for _, l := range layouts {
		if _, err := time.Parse(l.layout, input); err == nil {
			return ""
		}
	}
	_, err := time.Parse(time.RFC3339, input)
	return err.Error()
}
