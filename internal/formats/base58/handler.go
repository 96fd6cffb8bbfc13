// Package base58 recognizes the Bitcoin base58 alphabet.
package base58

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// alphabet is the Bitcoin variant: no 0, O, I or l.
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var digit [256]int8

func init() {
	for i := range digit {
		digit[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digit[alphabet[i]] = int8(i)
	}
}

// Handler is the base58 analyzer.
type Handler struct {
	format.Base
}

// New returns the base58 analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "base58",
		Name:        "Base58",
		Category:    "encoding",
		Description: "Bitcoin-alphabet base58, as used in addresses and CIDs",
		Examples:    []string{"2NEpo7TZRRrLZSi2U", "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"},
	})}
}

// Parse decodes base58. Everything alphanumeric without 0OIl is
// formally valid base58, so confidence stays moderate and prose-like
// single-case strings are skipped entirely.
func (h *Handler) Parse(input string) []format.Interpretation {
	if len(input) < 8 || singleCase(input) {
		return nil
	}
	raw, ok := Decode(input)
	if !ok || len(raw) == 0 {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Bytes(raw),
		Confidence:  0.35,
		Description: fmt.Sprintf("base58, %d bytes", len(raw)),
	}}
}

// CanFormat renders any byte value.
func (h *Handler) CanFormat(v value.Value) bool {
	_, ok := v.Bytes()
	return ok
}

// Format renders bytes as base58.
func (h *Handler) Format(v value.Value) (string, bool) {
	raw, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return Encode(raw), true
}

// Decode converts a base58 string to bytes, preserving leading-zero
// '1' digits.
func Decode(s string) ([]byte, bool) {
	n := new(big.Int)
	radix := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		d := digit[s[i]]
		if d < 0 {
			return nil, false
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(d)))
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}
	raw := n.Bytes()
	out := make([]byte, zeros+len(raw))
	copy(out[zeros:], raw)
	return out, true
}

// Encode converts bytes to base58, preserving leading zero bytes as
// '1' digits.
func Encode(raw []byte) string {
	zeros := 0
	for zeros < len(raw) && raw[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(raw)
	radix := big.NewInt(58)
	mod := new(big.Int)
	var sb []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		sb = append(sb, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		sb = append(sb, '1')
	}
	// Digits came out least significant first.
	for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
		sb[i], sb[j] = sb[j], sb[i]
	}
	return string(sb)
}

func singleCase(s string) bool {
	return strings.ToLower(s) == s || strings.ToUpper(s) == s
}
