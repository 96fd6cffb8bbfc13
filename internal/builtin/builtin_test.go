package builtin

import (
	"strings"
	"testing"
	"time"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/interp"
	"github.com/tokenlens/tokenlens/core/traverse"
	"github.com/tokenlens/tokenlens/internal/rates"
)

func newRegistry(t *testing.T) *format.Registry {
	t.Helper()
	r := format.NewRegistry()
	if err := Register(r, nil); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegister(t *testing.T) {
	r := newRegistry(t)
	if r.Len() != 28 {
		t.Errorf("Len() = %d, want 28", r.Len())
	}

	for _, id := range []string{
		"hex", "base64", "base64-url", "base32", "base58",
		"int-be", "int-le", "int-dec",
		"epoch-seconds", "epoch-millis", "iso8601",
		"uuid", "ipv4", "ipv6", "color-hex",
		"json", "yaml", "xml", "cbor", "url",
		"gzip", "zstd", "xz", "sha256", "blake3",
		"utf8", "speed", "expr",
	} {
		if _, ok := r.Lookup(id); !ok {
			t.Errorf("Lookup(%q) failed", id)
		}
	}

	// Aliases resolve to their canonical analyzer.
	a, ok := r.Lookup("base16")
	if !ok || a.ID() != "hex" {
		t.Errorf("Lookup(base16) = %v, %v", a, ok)
	}

	// Registering twice is an error.
	if err := Register(r, nil); err == nil {
		t.Error("second Register should fail on duplicate IDs")
	}
}

func conversionFor(convs []format.Conversion, target string) (format.Conversion, bool) {
	for _, c := range convs {
		if c.TargetFormat == target {
			return c, true
		}
	}
	return format.Conversion{}, false
}

// A base64 token decodes to bytes and the byte value fans out to its
// hex, integer, and timestamp views in one traversal.
func TestBase64ToTimestamp(t *testing.T) {
	r := newRegistry(t)
	it := interp.New(r)

	interps := it.Parse("aR4BuA==", interp.Options{})
	if len(interps) == 0 {
		t.Fatal("no interpretations")
	}
	best := interps[0]
	if best.Format != "base64" {
		t.Fatalf("best = %q (%.2f), want base64", best.Format, best.Confidence)
	}
	if best.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want >= 0.9", best.Confidence)
	}
	raw, ok := best.Value.Bytes()
	if !ok || string(raw) != "\x69\x1e\x01\xb8" {
		t.Fatalf("decoded = % x", raw)
	}

	convs := traverse.Traverse(r, best)

	hexView, ok := conversionFor(convs, "hex")
	if !ok || hexView.Display != "691e01b8" {
		t.Errorf("hex view = %+v", hexView)
	}

	intView, ok := conversionFor(convs, "int-be")
	if !ok || intView.Display != "1763574200" {
		t.Errorf("int-be view = %+v", intView)
	}

	epochView, ok := conversionFor(convs, "epoch-seconds")
	if !ok {
		t.Fatal("no epoch-seconds view")
	}
	if !strings.Contains(epochView.Display, "2025-11-19T17:43:20Z") {
		t.Errorf("epoch display = %q", epochView.Display)
	}
	// Two hops: bytes to integer, integer to timestamp.
	if len(epochView.Path) != 2 || epochView.Path[0] != "int-be" {
		t.Errorf("epoch path = %v", epochView.Path)
	}
}

// The same chain starting from hex input instead of base64.
func TestHexToTimestamp(t *testing.T) {
	r := newRegistry(t)
	it := interp.New(r)

	interps := it.Parse("0x691E01B8", interp.Options{})
	if len(interps) == 0 || interps[0].Format != "hex" {
		t.Fatalf("interps = %v", interps)
	}

	convs := traverse.Traverse(r, interps[0])
	epochView, ok := conversionFor(convs, "epoch-seconds")
	if !ok || !strings.Contains(epochView.Display, "2025-11-19") {
		t.Errorf("epoch view = %+v, %v", epochView, ok)
	}
	// Hashes ride along as terminal views of the byte value.
	if _, ok := conversionFor(convs, "sha256"); !ok {
		t.Error("no sha256 view")
	}
}

func TestExpressionWithRates(t *testing.T) {
	store := rates.NewStore()
	store.SetRates(map[string]float64{"USD": 1, "EUR": 0.9}, time.Now())
	store.SetTarget("USD")

	r := format.NewRegistry()
	if err := Register(r, store); err != nil {
		t.Fatal(err)
	}
	it := interp.New(r)

	interps := it.Parse("100 EUR in USD", interp.Options{Allow: []string{"expr"}})
	if len(interps) != 1 {
		t.Fatalf("interps = %v", interps)
	}
	if !strings.Contains(interps[0].Description, "111.11 USD") {
		t.Errorf("Description = %q", interps[0].Description)
	}
}

type panicky struct {
	format.Base
}

func newPanicky() *panicky {
	return &panicky{Base: format.NewBase(format.Info{ID: "panicky", Name: "Panicky", Category: "raw"})}
}

func (p *panicky) Parse(string) []format.Interpretation { panic("boom") }

// A faulting analyzer must not take down the scan.
func TestFaultIsolation(t *testing.T) {
	r := newRegistry(t)
	if err := r.Register(newPanicky()); err != nil {
		t.Fatal(err)
	}
	it := interp.New(r)

	interps := it.Parse("hello world", interp.Options{})
	if len(interps) == 0 {
		t.Fatal("no interpretations despite the healthy analyzers")
	}
	for _, in := range interps {
		if in.Format == "panicky" {
			t.Errorf("faulting analyzer produced %+v", in)
		}
	}
}
