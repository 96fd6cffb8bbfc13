// Package format defines the extension contract every analyzer
// implements, the Interpretation/Conversion records exchanged with the
// engine, and the ordered analyzer registry.
package format

import (
	"github.com/tokenlens/tokenlens/core/value"
)

// Priority ranks conversion categories for presentation. Higher is
// shown first.
type Priority int

const (
	// PriorityRaw is a plain re-encoding of the same octets.
	PriorityRaw Priority = iota
	// PriorityEncoding is a reversible wire encoding.
	PriorityEncoding
	// PrioritySemantic carries domain meaning (timestamps, addresses).
	PrioritySemantic
	// PriorityStructured is a decoded structured document.
	PriorityStructured
)

// String returns the category name.
func (p Priority) String() string {
	switch p {
	case PriorityRaw:
		return "raw"
	case PriorityEncoding:
		return "encoding"
	case PrioritySemantic:
		return "semantic"
	case PriorityStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// ConversionKind distinguishes value-changing conversions from pure
// re-renderings of the same value.
type ConversionKind int

const (
	// KindTransformation produces a different value.
	KindTransformation ConversionKind = iota
	// KindRepresentation re-renders the same value.
	KindRepresentation
)

// Interpretation is one candidate recognition of raw input. Exactly
// one analyzer produces each instance; instances are immutable after
// construction.
type Interpretation struct {
	// Value is the decoded value.
	Value value.Value
	// Format is the canonical identifier of the producing analyzer.
	Format string
	// Confidence is a heuristic ranking key in [0,1], comparable only
	// within the result set of one input.
	Confidence float64
	// Description is a short human-readable explanation.
	Description string
	// Display carries optional rich-display hints for renderers.
	Display map[string]string
}

// Conversion is an offer to re-render an already-recognized value in a
// different target format, possibly reached through chained steps.
type Conversion struct {
	// Value is the value reached by this conversion.
	Value value.Value
	// TargetFormat is the format identifier claimed by this conversion.
	// Unique within one traversal.
	TargetFormat string
	// Display is the rendered form.
	Display string
	// Path is the ordered list of format identifiers traversed. Filled
	// in by the traversal; analyzers leave it empty.
	Path []string
	// Lossy reports whether the original value cannot be recovered.
	Lossy bool
	// Priority is the presentation category.
	Priority Priority
	// Kind distinguishes transformations from representations.
	Kind ConversionKind
	// DisplayOnly marks terminal views that never feed further
	// traversal (digests, annotations).
	DisplayOnly bool
	// Meta carries optional rich-display metadata.
	Meta map[string]string
}

// Info is static documentation metadata for a format. Descriptive
// only; the engine never consults it for decisions.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	CanValidate bool     `json:"can_validate"`
}

// Analyzer is the uniform contract implemented by every format
// handler, built-in or externally supplied. All methods are pure
// functions of their arguments.
type Analyzer interface {
	// ID returns the canonical, stable, lowercase format identifier.
	ID() string

	// Name returns the human-readable format name.
	Name() string

	// Aliases returns alternative identifiers accepted for this format.
	Aliases() []string

	// Info returns static documentation metadata.
	Info() Info

	// Parse attempts to recognize the input text. An empty result is
	// the expected outcome for most inputs, not an error.
	Parse(input string) []Interpretation

	// CanFormat reports whether Format can render the value.
	CanFormat(v value.Value) bool

	// Format renders the value canonically in this format,
	// independent of graph traversal.
	Format(v value.Value) (string, bool)

	// Conversions offers to render any value in this analyzer's
	// format, regardless of the value's originating format. Invoked
	// against every value reached during traversal.
	Conversions(v value.Value) []Conversion

	// SourceConversions offers format-intrinsic derived views, valid
	// only when this analyzer itself produced the interpretation under
	// exploration.
	SourceConversions(v value.Value) []Conversion

	// Validate explains why input is not this format. Only invoked
	// after an explicit single-format request whose Parse returned
	// empty; never during multi-format scanning. Empty means no
	// diagnostic is available.
	Validate(input string) string
}

// MatchesName reports whether name is the analyzer's canonical ID or
// one of its aliases.
func MatchesName(a Analyzer, name string) bool {
	if name == a.ID() {
		return true
	}
	for _, alias := range a.Aliases() {
		if name == alias {
			return true
		}
	}
	return false
}
