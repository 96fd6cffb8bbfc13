// Package interp runs every registered analyzer's recognition step
// against one input token and ranks the surviving interpretations.
package interp

import (
	"math"
	"sort"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/internal/logging"
)

// Options carries per-request configuration, resolved once by the
// caller before interpretation. The zero value consults every
// analyzer with no confidence floor.
type Options struct {
	// Allow restricts which analyzers are consulted, by canonical ID
	// or alias. Empty means all. Applied before Parse is invoked.
	Allow []string
	// MinConfidence drops interpretations ranking below the threshold.
	MinConfidence float64
}

// Interpreter scans one input against an analyzer registry.
type Interpreter struct {
	reg *format.Registry
}

// New creates an Interpreter over the given registry.
func New(reg *format.Registry) *Interpreter {
	return &Interpreter{reg: reg}
}

// Registry returns the registry this interpreter scans.
func (it *Interpreter) Registry() *format.Registry {
	return it.reg
}

// Parse invokes Parse on every consulted analyzer in registry order,
// with no early exit, and returns every surviving interpretation
// ranked by confidence (descending, stable). Analyzer faults degrade
// to empty results for that analyzer alone; the scan never aborts.
func (it *Interpreter) Parse(input string, opts Options) []format.Interpretation {
	var results []format.Interpretation

	for _, a := range it.reg.Analyzers() {
		if !consulted(a, opts.Allow) {
			continue
		}
		for _, in := range safeParse(a, input) {
			in.Confidence = clampConfidence(in.Confidence)
			if in.Confidence < opts.MinConfidence {
				continue
			}
			if in.Format == "" {
				in.Format = a.ID()
			}
			results = append(results, in)
		}
	}

	// Stable sort keeps registry order among equal confidences, so
	// identical input and registry state always rank identically.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// Validate reports why input is not recognized as the named format.
// It is the only path that invokes an analyzer's Validate: the format
// is explicitly selected, its Parse is retried, and the diagnostic is
// consulted only when Parse still returns nothing.
func (it *Interpreter) Validate(input, name string) (string, error) {
	a, ok := it.reg.Lookup(name)
	if !ok {
		return "", apperrors.NewNotFound("format", name)
	}
	if len(safeParse(a, input)) > 0 {
		return "", nil
	}
	diag := safeValidate(a, input)
	if diag == "" {
		diag = "input is not valid " + a.Name()
	}
	return diag, nil
}

// consulted applies the allow-list before Parse is invoked.
func consulted(a format.Analyzer, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, name := range allow {
		if format.MatchesName(a, name) {
			return true
		}
	}
	return false
}

// clampConfidence forces confidence into [0,1]; NaN ranks last.
func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// safeParse isolates a single analyzer failure to an empty result.
func safeParse(a format.Analyzer, input string) (out []format.Interpretation) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "parse", r)
			out = nil
		}
	}()
	return a.Parse(input)
}

func safeValidate(a format.Analyzer, input string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "validate", r)
			out = ""
		}
	}()
	return a.Validate(input)
}
