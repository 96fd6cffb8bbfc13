// Package uuidfmt recognizes RFC 4122 UUIDs and renders 16-byte
// values in canonical UUID form.
package uuidfmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the UUID analyzer.
type Handler struct {
	format.Base
}

// New returns the UUID analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "uuid",
		Name:        "UUID",
		Category:    "identifier",
		Description: "RFC 4122 universally unique identifier",
		Examples:    []string{"550e8400-e29b-41d4-a716-446655440000"},
		Aliases:     []string{"guid"},
		CanValidate: true,
	})}
}

// Parse recognizes the canonical hyphenated form. The value is the 16
// raw bytes, so byte-level conversions chain from it.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) != 36 || strings.Count(input, "-") != 4 {
		return nil
	}
	id, err := uuid.Parse(input)
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Bytes(id[:]),
		Confidence:  0.98,
		Description: describe(id),
	}}
}

// Conversions renders any 16-byte value in canonical UUID form.
func (h *Handler) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) != 16 {
		return nil
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return nil
	}
	return []format.Conversion{{
		Value:        value.Text(id.String()),
		TargetFormat: "uuid",
		Display:      id.String(),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

// Validate explains why input is not a UUID.
func (h *Handler) Validate(input string) string {
	if len(input) != 36 {
		return fmt.Sprintf("expected 36 characters, got %d", len(input))
	}
	if _, err := uuid.Parse(input); err != nil {
		return err.Error()
	}
	return ""
}

// describe names the version and, for v1 and v7, the embedded time.
func describe(id uuid.UUID) string {
	desc := fmt.Sprintf("UUID version %d, variant %s", id.Version(), id.Variant())
	switch id.Version() {
	case 1:
		sec, nsec := id.Time().UnixTime()
		desc += ", time " + time.Unix(sec, nsec).UTC().Format(time.RFC3339)
	case 7:
		ms := int64(id[0])<<40 | int64(id[1])<<32 | int64(id[2])<<24 |
			int64(id[3])<<16 | int64(id[4])<<8 | int64(id[5])
		desc += ", time " + time.UnixMilli(ms).UTC().Format(time.RFC3339)
	}
	return desc
}
