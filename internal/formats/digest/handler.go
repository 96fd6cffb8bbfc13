// Package digest computes content hashes of byte values.
package digest

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// SHA256 reports the SHA-256 digest of byte values.
type SHA256 struct {
	format.Base
}

// NewSHA256 returns the SHA-256 analyzer.
func NewSHA256() *SHA256 {
	return &SHA256{Base: format.NewBase(format.Info{
		ID:          "sha256",
		Name:        "SHA-256",
		Category:    "digest",
		Description: "SHA-256 digest of the byte value",
	})}
}

// Conversions reports the digest. Hashes are one-way, so the view is
// terminal and marked lossy.
func (s *SHA256) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) == 0 {
		return nil
	}
	sum := sha256.Sum256(raw)
	return []format.Conversion{{
		Value:        value.Text(hex.EncodeToString(sum[:])),
		TargetFormat: "sha256",
		Display:      hex.EncodeToString(sum[:]),
		Kind:         format.KindRepresentation,
		Priority:     format.PriorityRaw,
		DisplayOnly:  true,
		Lossy:        true,
	}}
}

// BLAKE3 reports the BLAKE3 digest of byte values.
type BLAKE3 struct {
	format.Base
}

// NewBLAKE3 returns the BLAKE3 analyzer.
func NewBLAKE3() *BLAKE3 {
	return &BLAKE3{Base: format.NewBase(format.Info{
		ID:          "blake3",
		Name:        "BLAKE3",
		Category:    "digest",
		Description: "BLAKE3 digest of the byte value",
	})}
}

// Conversions reports the digest, terminal and lossy like SHA-256.
func (b *BLAKE3) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) == 0 {
		return nil
	}
	sum := blake3.Sum256(raw)
	return []format.Conversion{{
		Value:        value.Text(hex.EncodeToString(sum[:])),
		TargetFormat: "blake3",
		Display:      hex.EncodeToString(sum[:]),
		Kind:         format.KindRepresentation,
		Priority:     format.PriorityRaw,
		DisplayOnly:  true,
		Lossy:        true,
	}}
}
