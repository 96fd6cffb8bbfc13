package format

import (
	"github.com/tokenlens/tokenlens/core/value"
)

// Base provides default no-op implementations of the Analyzer
// contract. Analyzer packages embed it and override only the methods
// their format needs; a freshly embedded Base recognizes nothing and
// offers nothing.
type Base struct {
	info Info
}

// NewBase constructs a Base carrying the analyzer's documentation
// metadata.
func NewBase(info Info) Base {
	return Base{info: info}
}

// ID returns the canonical format identifier.
func (b Base) ID() string { return b.info.ID }

// Name returns the human-readable format name.
func (b Base) Name() string { return b.info.Name }

// Aliases returns the accepted alternative identifiers.
func (b Base) Aliases() []string { return b.info.Aliases }

// Info returns the documentation metadata.
func (b Base) Info() Info { return b.info }

// Parse recognizes nothing by default.
func (b Base) Parse(string) []Interpretation { return nil }

// CanFormat reports false by default.
func (b Base) CanFormat(value.Value) bool { return false }

// Format renders nothing by default.
func (b Base) Format(value.Value) (string, bool) { return "", false }

// Conversions offers nothing by default.
func (b Base) Conversions(value.Value) []Conversion { return nil }

// SourceConversions offers nothing by default.
func (b Base) SourceConversions(value.Value) []Conversion { return nil }

// Validate has no diagnostic by default.
func (b Base) Validate(string) string { return "" }
