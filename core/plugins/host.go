package plugins

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
	"github.com/tokenlens/tokenlens/internal/logging"
)

// TraitObserver annotates a value with descriptive text. Observers are
// display-only: they run once per interpretation and never enter the
// conversion graph. An empty string means no annotation.
type TraitObserver func(v value.Value) (string, error)

// RateProvider supplies currency exchange rates keyed by ISO 4217
// code, expressed as units per US dollar.
type RateProvider func(ctx context.Context) (map[string]float64, error)

// Host is the registration surface offered to plugin runtimes. It
// appends decoder plugins to the analyzer registry after built-ins,
// so built-in format identifiers win collisions, and holds trait
// observers and rate providers for the engine to consult.
//
// The host is populated at startup and read-mostly afterwards; the
// lock only blocks readers during a registration in progress.
type Host struct {
	mu      sync.RWMutex
	reg     *format.Registry
	timeout time.Duration
	traits  []registeredTrait
	rates   []registeredRates
}

type registeredTrait struct {
	pluginID string
	observe  TraitObserver
}

type registeredRates struct {
	pluginID string
	fetch    RateProvider
}

// NewHost creates a plugin host registering decoders into reg.
func NewHost(reg *format.Registry) *Host {
	return &Host{reg: reg, timeout: DefaultTimeout}
}

// SetTimeout overrides the per-invocation plugin timeout.
func (h *Host) SetTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d > 0 {
		h.timeout = d
	}
}

// AddDecoder registers an external format analyzer. The manifest must
// be a decoder manifest; the declared format identifier must not
// collide with an already-registered format.
func (h *Host) AddDecoder(m *Manifest, dec Decoder) error {
	if m.Kind != KindDecoder {
		return apperrors.NewValidation("kind", m.Kind, "not a decoder manifest")
	}
	if err := m.validate(); err != nil {
		return err
	}
	if dec == nil {
		return apperrors.NewValidation("decoder", m.PluginID, "nil decoder handle")
	}

	h.mu.RLock()
	timeout := h.timeout
	h.mu.RUnlock()

	a := newAdapter(m, dec, timeout)
	if err := h.reg.Register(a); err != nil {
		return apperrors.Wrapf(err, "plugin %s", m.PluginID)
	}
	logging.PluginLoading(m.PluginID, m.Version, m.Kind, "format", m.Format.ID)
	return nil
}

// AddTraitObserver registers a display-only value annotator.
func (h *Host) AddTraitObserver(m *Manifest, observe TraitObserver) error {
	if m.Kind != KindTrait {
		return apperrors.NewValidation("kind", m.Kind, "not a trait manifest")
	}
	if err := m.validate(); err != nil {
		return err
	}
	if observe == nil {
		return apperrors.NewValidation("observer", m.PluginID, "nil observer handle")
	}

	h.mu.Lock()
	h.traits = append(h.traits, registeredTrait{pluginID: m.PluginID, observe: observe})
	h.mu.Unlock()
	logging.PluginLoading(m.PluginID, m.Version, m.Kind)
	return nil
}

// AddRateProvider registers a currency-rate source.
func (h *Host) AddRateProvider(m *Manifest, fetch RateProvider) error {
	if m.Kind != KindRates {
		return apperrors.NewValidation("kind", m.Kind, "not a rates manifest")
	}
	if err := m.validate(); err != nil {
		return err
	}
	if fetch == nil {
		return apperrors.NewValidation("provider", m.PluginID, "nil provider handle")
	}

	h.mu.Lock()
	h.rates = append(h.rates, registeredRates{pluginID: m.PluginID, fetch: fetch})
	h.mu.Unlock()
	logging.PluginLoading(m.PluginID, m.Version, m.Kind)
	return nil
}

// Annotate runs every trait observer against an interpretation's value
// and returns the collected annotations. Observer faults are isolated
// per observer; annotations never alter the conversion graph.
func (h *Host) Annotate(in format.Interpretation) []string {
	h.mu.RLock()
	traits := make([]registeredTrait, len(h.traits))
	copy(traits, h.traits)
	timeout := h.timeout
	h.mu.RUnlock()

	var out []string
	for _, tr := range traits {
		note, err := callTrait(tr, in.Value, timeout)
		if err != nil {
			logging.PluginError(tr.pluginID, "trait", err)
			continue
		}
		if note != "" {
			out = append(out, note)
		}
	}
	return out
}

// FetchRates queries every rate provider and merges the results;
// earlier-registered providers win code collisions. Provider faults
// degrade to absent rates, never errors.
func (h *Host) FetchRates(ctx context.Context) map[string]float64 {
	h.mu.RLock()
	providers := make([]registeredRates, len(h.rates))
	copy(providers, h.rates)
	timeout := h.timeout
	h.mu.RUnlock()

	merged := make(map[string]float64)
	for _, p := range providers {
		rates, err := callRates(ctx, p, timeout)
		if err != nil {
			logging.PluginError(p.pluginID, "rates", err)
			continue
		}
		for code, rate := range rates {
			if _, exists := merged[code]; !exists && rate > 0 {
				merged[code] = rate
			}
		}
	}
	return merged
}

func callTrait(tr registeredTrait, v value.Value, timeout time.Duration) (string, error) {
	type result struct {
		note string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: apperrors.NewPluginFault(tr.pluginID, "trait", fmt.Sprintf("panic: %v", r))}
			}
		}()
		note, err := tr.observe(v)
		done <- result{note: note, err: err}
	}()

	select {
	case res := <-done:
		return res.note, res.err
	case <-time.After(timeout):
		return "", apperrors.NewPluginFault(tr.pluginID, "trait", "timeout after "+timeout.String())
	}
}

func callRates(ctx context.Context, p registeredRates, timeout time.Duration) (map[string]float64, error) {
	type result struct {
		rates map[string]float64
		err   error
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: apperrors.NewPluginFault(p.pluginID, "rates", fmt.Sprintf("panic: %v", r))}
			}
		}()
		rates, err := p.fetch(ctx)
		done <- result{rates: rates, err: err}
	}()

	select {
	case res := <-done:
		return res.rates, res.err
	case <-ctx.Done():
		return nil, apperrors.NewPluginFault(p.pluginID, "rates", ctx.Err().Error())
	}
}
