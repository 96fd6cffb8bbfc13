// Package epoch recognizes Unix timestamps in seconds and
// milliseconds.
package epoch

import (
	"math/big"
	"time"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Plausible ranges. Values outside read as plain integers:
// seconds cover 1973..2096, milliseconds the same era.
const (
	minSeconds = 1e8
	maxSeconds = 4e9
	minMillis  = 1e11
	maxMillis  = 4e12
)

// Seconds recognizes second-precision Unix timestamps.
type Seconds struct {
	format.Base
}

// NewSeconds returns the epoch-seconds analyzer.
func NewSeconds() *Seconds {
	return &Seconds{Base: format.NewBase(format.Info{
		ID:          "epoch-seconds",
		Name:        "Unix timestamp (seconds)",
		Category:    "time",
		Description: "seconds since 1970-01-01T00:00:00Z",
		Examples:    []string{"1763574200"},
		Aliases:     []string{"unix", "epoch"},
	})}
}

// Parse recognizes a decimal integer in the plausible seconds range.
func (s *Seconds) Parse(input string) []format.Interpretation {
	n, ok := parseRange(input, minSeconds, maxSeconds)
	if !ok {
		return nil
	}
	t := time.Unix(n, 0).UTC()
	return []format.Interpretation{{
		Value:       value.Int64(n),
		Confidence:  0.75,
		Description: "Unix timestamp " + t.Format(time.RFC3339),
	}}
}

// Conversions renders any in-range integer as a timestamp. The view is
// terminal: a timestamp is a reading of the number, not a new value.
func (s *Seconds) Conversions(v value.Value) []format.Conversion {
	n, ok := intInRange(v, minSeconds, maxSeconds)
	if !ok {
		return nil
	}
	return []format.Conversion{{
		Value:        v,
		TargetFormat: "epoch-seconds",
		Display:      time.Unix(n, 0).UTC().Format(time.RFC3339),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

// Millis recognizes millisecond-precision Unix timestamps.
type Millis struct {
	format.Base
}

// NewMillis returns the epoch-millis analyzer.
func NewMillis() *Millis {
	return &Millis{Base: format.NewBase(format.Info{
		ID:          "epoch-millis",
		Name:        "Unix timestamp (milliseconds)",
		Category:    "time",
		Description: "milliseconds since 1970-01-01T00:00:00Z",
		Examples:    []string{"1763574200000"},
		Aliases:     []string{"unixms", "epochms"},
	})}
}

// Parse recognizes a decimal integer in the plausible millis range.
func (m *Millis) Parse(input string) []format.Interpretation {
	n, ok := parseRange(input, minMillis, maxMillis)
	if !ok {
		return nil
	}
	t := time.UnixMilli(n).UTC()
	return []format.Interpretation{{
		Value:       value.Int64(n),
		Confidence:  0.75,
		Description: "Unix timestamp (ms) " + t.Format(time.RFC3339Nano),
	}}
}

// Conversions renders any in-range integer as a millisecond timestamp.
func (m *Millis) Conversions(v value.Value) []format.Conversion {
	n, ok := intInRange(v, minMillis, maxMillis)
	if !ok {
		return nil
	}
	return []format.Conversion{{
		Value:        v,
		TargetFormat: "epoch-millis",
		Display:      time.UnixMilli(n).UTC().Format(time.RFC3339Nano),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

func parseRange(input string, min, max int64) (int64, bool) {
	n, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return 0, false
	}
	return inRange(n, min, max)
}

func intInRange(v value.Value, min, max int64) (int64, bool) {
	n, ok := v.Int()
	if !ok {
		return 0, false
	}
	return inRange(n, min, max)
}

func inRange(n *big.Int, min, max int64) (int64, bool) {
	if !n.IsInt64() {
		return 0, false
	}
	i := n.Int64()
	if i < min || i > max {
		return 0, false
	}
	return i, true
}
