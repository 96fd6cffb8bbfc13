package format

import (
	"testing"

	apperrors "github.com/tokenlens/tokenlens/core/errors"
)

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"hex", "base64", "uuid"}
	for _, id := range ids {
		if err := r.Register(newStub(id, "x")); err != nil {
			t.Fatalf("Register(%q) error: %v", id, err)
		}
	}

	got := r.Analyzers()
	if len(got) != len(ids) {
		t.Fatalf("Analyzers() len = %d, want %d", len(got), len(ids))
	}
	for i, a := range got {
		if a.ID() != ids[i] {
			t.Errorf("Analyzers()[%d] = %q, want %q (registration order)", i, a.ID(), ids[i])
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("hex", "x")); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	err := r.Register(newStub("hex", "y"))
	if err == nil {
		t.Fatal("duplicate Register should fail")
	}
	if !apperrors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("duplicate Register error = %v, want ErrInvalidInput", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after rejected duplicate", r.Len())
	}
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("", "x")); err == nil {
		t.Error("Register with empty ID should fail")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("base64", "x", "b64")); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "by id", query: "base64", want: true},
		{name: "by alias", query: "b64", want: true},
		{name: "missing", query: "hex", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Lookup(tt.query)
			if ok != tt.want {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.query, ok, tt.want)
			}
			if ok && got.ID() != "base64" {
				t.Errorf("Lookup(%q).ID() = %q, want base64", tt.query, got.ID())
			}
		})
	}
}

func TestRegistryAnalyzersIsCopy(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStub("hex", "x")); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	got := r.Analyzers()
	got[0] = nil
	if r.Analyzers()[0] == nil {
		t.Error("mutating the returned slice must not affect the registry")
	}
}
