package plugins

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

func decoderManifest(pluginID, formatID string) *Manifest {
	return &Manifest{
		PluginID: pluginID,
		Version:  "1.0.0",
		Kind:     KindDecoder,
		Format:   &FormatMeta{ID: formatID, Name: formatID},
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid decoder",
			data: `{"plugin_id":"ext.magic","version":"1.0.0","kind":"decoder",
				"format":{"id":"magic","name":"Magic"}}`,
		},
		{
			name: "valid trait",
			data: `{"plugin_id":"ext.notes","version":"0.3","kind":"trait"}`,
		},
		{
			name:    "missing plugin_id",
			data:    `{"version":"1.0.0","kind":"decoder"}`,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			data:    `{"plugin_id":"x","version":"1.0.0","kind":"widget"}`,
			wantErr: true,
		},
		{
			name:    "uppercase format id",
			data:    `{"plugin_id":"x","version":"1.0.0","kind":"decoder","format":{"id":"Magic","name":"m"}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `plugin_id=x`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseManifest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifestCompatibility(t *testing.T) {
	tests := []struct {
		name    string
		min     string
		wantErr bool
	}{
		{name: "no requirement", min: ""},
		{name: "satisfied", min: "0.1.0"},
		{name: "exact", min: HostVersion},
		{name: "future major", min: "1.0.0", wantErr: true},
		{name: "garbage", min: "not-a-version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decoderManifest("ext.x", "x")
			m.MinHostVersion = tt.min
			err := m.CheckCompatibility()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckCompatibility() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrIncompatibleVersion) {
				t.Errorf("error = %v, want ErrIncompatibleVersion", err)
			}
		})
	}
}

func TestAddDecoderRegistersAfterBuiltins(t *testing.T) {
	reg := format.NewRegistry()
	builtin := format.NewBase(format.Info{ID: "hex", Name: "Hexadecimal"})
	if err := reg.Register(struct{ format.Base }{builtin}); err != nil {
		t.Fatalf("builtin Register error: %v", err)
	}

	h := NewHost(reg)
	err := h.AddDecoder(decoderManifest("ext.magic", "magic"), DecoderFuncs{
		ParseFunc: func(input string) ([]format.Interpretation, error) {
			if input != "magic!" {
				return nil, nil
			}
			return []format.Interpretation{{Value: value.Text(input), Confidence: 0.7}}, nil
		},
	})
	if err != nil {
		t.Fatalf("AddDecoder() error: %v", err)
	}

	analyzers := reg.Analyzers()
	if len(analyzers) != 2 || analyzers[1].ID() != "magic" {
		t.Fatal("plugin analyzer should be appended after builtins")
	}

	got := analyzers[1].Parse("magic!")
	if len(got) != 1 {
		t.Fatalf("adapter Parse() returned %d interpretations, want 1", len(got))
	}
	if got[0].Format != "magic" {
		t.Errorf("interpretation format = %q, want stamped %q", got[0].Format, "magic")
	}
}

func TestAddDecoderRejectsCollision(t *testing.T) {
	reg := format.NewRegistry()
	if err := reg.Register(struct{ format.Base }{format.NewBase(format.Info{ID: "hex", Name: "hex"})}); err != nil {
		t.Fatalf("builtin Register error: %v", err)
	}

	h := NewHost(reg)
	err := h.AddDecoder(decoderManifest("ext.fakehex", "hex"), DecoderFuncs{})
	if err == nil {
		t.Fatal("colliding format id should be rejected; builtin identifiers win")
	}
	if reg.Len() != 1 {
		t.Errorf("registry len = %d, want 1", reg.Len())
	}
}

func TestAdapterFaultIsolation(t *testing.T) {
	reg := format.NewRegistry()
	h := NewHost(reg)

	err := h.AddDecoder(decoderManifest("ext.crash", "crash"), DecoderFuncs{
		ParseFunc: func(input string) ([]format.Interpretation, error) {
			panic("malformed plugin input")
		},
		ConversionsFunc: func(v value.Value) ([]format.Conversion, error) {
			return nil, errors.New("wrong return type")
		},
	})
	if err != nil {
		t.Fatalf("AddDecoder() error: %v", err)
	}

	a, _ := reg.Lookup("crash")
	if got := a.Parse("anything"); got != nil {
		t.Errorf("panicking Parse should degrade to nil, got %v", got)
	}
	if got := a.Conversions(value.Text("x")); got != nil {
		t.Errorf("erroring Conversions should degrade to nil, got %v", got)
	}
}

func TestAdapterTimeout(t *testing.T) {
	reg := format.NewRegistry()
	h := NewHost(reg)
	h.SetTimeout(20 * time.Millisecond)

	err := h.AddDecoder(decoderManifest("ext.slow", "slow"), DecoderFuncs{
		ParseFunc: func(input string) ([]format.Interpretation, error) {
			time.Sleep(5 * time.Second)
			return []format.Interpretation{{Value: value.Text("late"), Confidence: 1}}, nil
		},
	})
	if err != nil {
		t.Fatalf("AddDecoder() error: %v", err)
	}

	a, _ := reg.Lookup("slow")
	start := time.Now()
	got := a.Parse("x")
	if got != nil {
		t.Errorf("timed-out Parse should degrade to nil, got %v", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Parse took %v, timeout not enforced", elapsed)
	}
}

func TestAdapterSanitizesConversions(t *testing.T) {
	reg := format.NewRegistry()
	h := NewHost(reg)

	err := h.AddDecoder(decoderManifest("ext.odd", "odd"), DecoderFuncs{
		ConversionsFunc: func(v value.Value) ([]format.Conversion, error) {
			return []format.Conversion{
				{TargetFormat: "", Display: "nameless"},
				{TargetFormat: "odd", Display: "ok", Path: []string{"forged", "path"}},
			}, nil
		},
	})
	if err != nil {
		t.Fatalf("AddDecoder() error: %v", err)
	}

	a, _ := reg.Lookup("odd")
	got := a.Conversions(value.Text("x"))
	if len(got) != 1 {
		t.Fatalf("Conversions() len = %d, want 1 (empty target dropped)", len(got))
	}
	if got[0].Path != nil {
		t.Error("adapter must clear plugin-supplied paths; traversal owns them")
	}
}

func TestTraitObserversAreDisplayOnly(t *testing.T) {
	reg := format.NewRegistry()
	h := NewHost(reg)

	m := &Manifest{PluginID: "ext.notes", Version: "1.0.0", Kind: KindTrait}
	err := h.AddTraitObserver(m, func(v value.Value) (string, error) {
		if _, ok := v.Bytes(); ok {
			return "looks like a key fingerprint", nil
		}
		return "", nil
	})
	if err != nil {
		t.Fatalf("AddTraitObserver() error: %v", err)
	}

	faulty := &Manifest{PluginID: "ext.broken", Version: "1.0.0", Kind: KindTrait}
	if err := h.AddTraitObserver(faulty, func(v value.Value) (string, error) {
		panic("observer crash")
	}); err != nil {
		t.Fatalf("AddTraitObserver() error: %v", err)
	}

	notes := h.Annotate(format.Interpretation{Value: value.Bytes([]byte{1, 2, 3})})
	if len(notes) != 1 || notes[0] != "looks like a key fingerprint" {
		t.Errorf("Annotate() = %v, want the healthy observer's note only", notes)
	}
	// Observers never touch the registry.
	if reg.Len() != 0 {
		t.Error("trait observers must not register analyzers")
	}
}

func TestFetchRatesMergesAndIsolates(t *testing.T) {
	h := NewHost(format.NewRegistry())

	add := func(id string, fn RateProvider) {
		t.Helper()
		m := &Manifest{PluginID: id, Version: "1.0.0", Kind: KindRates}
		if err := h.AddRateProvider(m, fn); err != nil {
			t.Fatalf("AddRateProvider(%s) error: %v", id, err)
		}
	}

	add("ext.primary", func(ctx context.Context) (map[string]float64, error) {
		return map[string]float64{"EUR": 0.9, "GBP": 0.8}, nil
	})
	add("ext.secondary", func(ctx context.Context) (map[string]float64, error) {
		return map[string]float64{"EUR": 0.95, "JPY": 150}, nil
	})
	add("ext.broken", func(ctx context.Context) (map[string]float64, error) {
		return nil, errors.New("upstream unavailable")
	})

	got := h.FetchRates(context.Background())
	if got["EUR"] != 0.9 {
		t.Errorf("EUR = %v, want earlier provider to win (0.9)", got["EUR"])
	}
	if got["JPY"] != 150 || got["GBP"] != 0.8 {
		t.Errorf("merged rates = %v", got)
	}
}

func TestHostKindMismatch(t *testing.T) {
	h := NewHost(format.NewRegistry())

	if err := h.AddDecoder(&Manifest{PluginID: "x", Version: "1", Kind: KindTrait}, DecoderFuncs{}); err == nil {
		t.Error("AddDecoder with trait manifest should fail")
	}
	if err := h.AddTraitObserver(decoderManifest("x", "x"), func(value.Value) (string, error) { return "", nil }); err == nil {
		t.Error("AddTraitObserver with decoder manifest should fail")
	}
	var vErr *apperrors.ValidationError
	err := h.AddRateProvider(decoderManifest("x", "x"), func(context.Context) (map[string]float64, error) { return nil, nil })
	if !apperrors.As(err, &vErr) {
		t.Errorf("AddRateProvider error = %v, want ValidationError", err)
	}
}
