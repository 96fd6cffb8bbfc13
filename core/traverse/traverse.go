// Package traverse discovers every representation reachable from one
// interpretation's value by chaining analyzer-offered conversions.
// The search is breadth-first in strict levels, bounded in depth, and
// deduplicated by target format: the first discovery of a format
// claims it for the whole traversal.
package traverse

import (
	"sort"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
	"github.com/tokenlens/tokenlens/internal/logging"
)

// MaxDepth bounds the number of breadth levels explored. The bound
// exists to stop pathological growth (a format mapping bytes to bytes
// indefinitely); completeness is not claimed.
const MaxDepth = 5

// entry is one queued (value, path-so-far) pair.
type entry struct {
	val  value.Value
	path []string
}

// Traverse explores every conversion reachable from the given
// interpretation and returns the recorded conversions in discovery
// order: seeds first, then each breadth level. Each target format
// appears at most once; the first, shallowest path to a format wins
// and is never superseded.
func Traverse(reg *format.Registry, in format.Interpretation) []format.Conversion {
	analyzers := reg.Analyzers()
	claimed := make(map[string]bool)
	var out []format.Conversion

	// Seed: every analyzer that can directly render the initial value
	// claims its own format with a zero-hop conversion.
	for _, a := range analyzers {
		if claimed[a.ID()] || !safeCanFormat(a, in.Value) {
			continue
		}
		display, ok := safeFormat(a, in.Value)
		if !ok {
			continue
		}
		claimed[a.ID()] = true
		out = append(out, format.Conversion{
			Value:        in.Value,
			TargetFormat: a.ID(),
			Display:      display,
			Path:         []string{a.ID()},
			Priority:     categoryPriority(a.Info().Category),
			Kind:         format.KindRepresentation,
		})
	}

	queue := []entry{{val: in.Value, path: nil}}
	source, hasSource := reg.Lookup(in.Format)

	for depth := 0; depth < MaxDepth && len(queue) > 0; depth++ {
		// Drain exactly the entries enqueued by the previous level so
		// path length always equals hop count.
		var next []entry

		for _, e := range queue {
			// Format-intrinsic derived views are valid only against the
			// value the originating analyzer produced, at the root of
			// the traversal.
			if depth == 0 && hasSource {
				next = append(next, record(safeSourceConversions(source, e.val), e, claimed, &out)...)
			}
			for _, a := range analyzers {
				next = append(next, record(safeConversions(a, e.val), e, claimed, &out)...)
			}
		}
		queue = next
	}
	return out
}

// record claims and appends each not-yet-claimed conversion, returning
// the entries to explore at the next level. Display-only conversions
// are terminal views and never feed further traversal.
func record(convs []format.Conversion, parent entry, claimed map[string]bool, out *[]format.Conversion) []entry {
	var next []entry
	for _, c := range convs {
		if c.TargetFormat == "" || claimed[c.TargetFormat] {
			continue
		}
		claimed[c.TargetFormat] = true

		path := make([]string, 0, len(parent.path)+1)
		path = append(path, parent.path...)
		path = append(path, c.TargetFormat)
		c.Path = path

		*out = append(*out, c)
		if !c.DisplayOnly {
			next = append(next, entry{val: c.Value, path: path})
		}
	}
	return next
}

// Rank orders conversions for presentation: priority category
// descending, discovery order preserved within a category.
func Rank(convs []format.Conversion) []format.Conversion {
	out := make([]format.Conversion, len(convs))
	copy(out, convs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// categoryPriority maps a format's documentation category to a
// presentation priority for seed conversions.
func categoryPriority(category string) format.Priority {
	switch category {
	case "structured":
		return format.PriorityStructured
	case "time", "identifier", "network", "units":
		return format.PrioritySemantic
	case "encoding", "compression":
		return format.PriorityEncoding
	default:
		return format.PriorityRaw
	}
}

func safeCanFormat(a format.Analyzer, v value.Value) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "can_format", r)
			ok = false
		}
	}()
	return a.CanFormat(v)
}

func safeFormat(a format.Analyzer, v value.Value) (display string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "format", r)
			display, ok = "", false
		}
	}()
	return a.Format(v)
}

func safeConversions(a format.Analyzer, v value.Value) (out []format.Conversion) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "conversions", r)
			out = nil
		}
	}()
	return a.Conversions(v)
}

func safeSourceConversions(a format.Analyzer, v value.Value) (out []format.Conversion) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerFault(a.ID(), "source_conversions", r)
			out = nil
		}
	}()
	return a.SourceConversions(v)
}
