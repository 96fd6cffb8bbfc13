package plugins

import (
	"fmt"
	"time"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
	"github.com/tokenlens/tokenlens/internal/logging"
)

// DefaultTimeout bounds every plugin invocation. Analyzers run once
// per token, so the bound is tight compared to batch tooling.
const DefaultTimeout = 10 * time.Second

// Decoder is the contract an external format analyzer implements.
// The host wraps it so it satisfies format.Analyzer with fault
// isolation.
type Decoder interface {
	// Parse attempts recognition of the input text.
	Parse(input string) ([]format.Interpretation, error)

	// Conversions offers to render any value in the plugin's format.
	Conversions(v value.Value) ([]format.Conversion, error)
}

// SourceConverter is an optional extension for decoders that expose
// format-intrinsic derived views of their own interpretations.
type SourceConverter interface {
	SourceConversions(v value.Value) ([]format.Conversion, error)
}

// Validator is an optional extension for decoders that can explain a
// rejection.
type Validator interface {
	Validate(input string) (string, error)
}

// DecoderFuncs adapts plain functions to the Decoder interface.
// Nil members behave as empty results.
type DecoderFuncs struct {
	ParseFunc       func(input string) ([]format.Interpretation, error)
	ConversionsFunc func(v value.Value) ([]format.Conversion, error)
}

// Parse implements Decoder.
func (d DecoderFuncs) Parse(input string) ([]format.Interpretation, error) {
	if d.ParseFunc == nil {
		return nil, nil
	}
	return d.ParseFunc(input)
}

// Conversions implements Decoder.
func (d DecoderFuncs) Conversions(v value.Value) ([]format.Conversion, error) {
	if d.ConversionsFunc == nil {
		return nil, nil
	}
	return d.ConversionsFunc(v)
}

// adapter wraps a Decoder into a contract-conformant analyzer. Every
// call funnels through guard, so a panic, error, or unbounded delay in
// the plugin becomes an empty result for that call alone.
type adapter struct {
	format.Base
	pluginID string
	dec      Decoder
	timeout  time.Duration
}

func newAdapter(m *Manifest, dec Decoder, timeout time.Duration) *adapter {
	meta := m.Format
	return &adapter{
		Base: format.NewBase(format.Info{
			ID:          meta.ID,
			Name:        meta.Name,
			Category:    meta.Category,
			Description: meta.Description,
			Aliases:     meta.Aliases,
			Examples:    meta.Examples,
			CanValidate: hasValidator(dec),
		}),
		pluginID: m.PluginID,
		dec:      dec,
		timeout:  timeout,
	}
}

func hasValidator(dec Decoder) bool {
	_, ok := dec.(Validator)
	return ok
}

// Parse implements format.Analyzer.
func (a *adapter) Parse(input string) []format.Interpretation {
	var out []format.Interpretation
	err := a.guard("parse", func() error {
		var err error
		out, err = a.dec.Parse(input)
		return err
	})
	if err != nil {
		a.fault("parse", err)
		return nil
	}
	// A plugin cannot speak for another format: its interpretations
	// are stamped with the adapter's identifier regardless of what the
	// plugin declared.
	for i := range out {
		out[i].Format = a.ID()
	}
	return out
}

// Conversions implements format.Analyzer.
func (a *adapter) Conversions(v value.Value) []format.Conversion {
	var out []format.Conversion
	err := a.guard("conversions", func() error {
		var err error
		out, err = a.dec.Conversions(v)
		return err
	})
	if err != nil {
		a.fault("conversions", err)
		return nil
	}
	return sanitizeConversions(out)
}

// SourceConversions implements format.Analyzer.
func (a *adapter) SourceConversions(v value.Value) []format.Conversion {
	sc, ok := a.dec.(SourceConverter)
	if !ok {
		return nil
	}
	var out []format.Conversion
	err := a.guard("source_conversions", func() error {
		var err error
		out, err = sc.SourceConversions(v)
		return err
	})
	if err != nil {
		a.fault("source_conversions", err)
		return nil
	}
	return sanitizeConversions(out)
}

// Validate implements format.Analyzer.
func (a *adapter) Validate(input string) string {
	val, ok := a.dec.(Validator)
	if !ok {
		return ""
	}
	var out string
	err := a.guard("validate", func() error {
		var err error
		out, err = val.Validate(input)
		return err
	})
	if err != nil {
		a.fault("validate", err)
		return ""
	}
	return out
}

// sanitizeConversions drops malformed offers and clears fields the
// traversal owns.
func sanitizeConversions(convs []format.Conversion) []format.Conversion {
	out := convs[:0]
	for _, c := range convs {
		if c.TargetFormat == "" {
			continue
		}
		c.Path = nil
		out = append(out, c)
	}
	return out
}

// guard runs fn on its own goroutine, converting panics to errors and
// enforcing the adapter timeout. The plugin goroutine is abandoned on
// timeout; its eventual result is discarded.
func (a *adapter) guard(op string, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- apperrors.NewPluginFault(a.pluginID, op, fmt.Sprintf("panic: %v", r))
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		if err != nil {
			return &apperrors.PluginFaultError{Plugin: a.pluginID, Operation: op, Reason: err.Error(), Err: err}
		}
		return nil
	case <-time.After(a.timeout):
		return apperrors.NewPluginFault(a.pluginID, op, "timeout after "+a.timeout.String())
	}
}

func (a *adapter) fault(op string, err error) {
	logging.PluginError(a.pluginID, op, err, "format", a.ID())
}
