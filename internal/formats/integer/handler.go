// Package integer recognizes decimal integers and converts short byte
// strings to their big-endian and little-endian integer readings.
package integer

import (
	"math/big"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// maxWidth bounds the byte-to-integer reading; longer byte strings
// are payloads, not machine words.
const maxWidth = 8

// Decimal recognizes decimal integer text.
type Decimal struct {
	format.Base
}

// NewDecimal returns the decimal integer analyzer.
func NewDecimal() *Decimal {
	return &Decimal{Base: format.NewBase(format.Info{
		ID:          "int-dec",
		Name:        "Decimal integer",
		Category:    "number",
		Description: "decimal integer, optionally signed",
		Examples:    []string{"1763574200", "-42"},
	})}
}

// Parse recognizes an optionally signed decimal integer.
func (d *Decimal) Parse(input string) []format.Interpretation {
	s := strings.TrimPrefix(input, "-")
	if s == "" || len(s) > 40 || !allDigits(s) {
		return nil
	}
	n, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Int(n),
		Confidence:  0.6,
		Description: "decimal integer " + n.String(),
	}}
}

// CanFormat renders any integer value.
func (d *Decimal) CanFormat(v value.Value) bool {
	_, ok := v.Int()
	return ok
}

// Format renders an integer as decimal text.
func (d *Decimal) Format(v value.Value) (string, bool) {
	n, ok := v.Int()
	if !ok {
		return "", false
	}
	return n.String(), true
}

// BigEndian reads short byte strings as big-endian unsigned integers.
type BigEndian struct {
	format.Base
}

// NewBigEndian returns the big-endian integer analyzer.
func NewBigEndian() *BigEndian {
	return &BigEndian{Base: format.NewBase(format.Info{
		ID:          "int-be",
		Name:        "Integer (big-endian)",
		Category:    "number",
		Description: "byte string read as a big-endian unsigned integer",
	})}
}

// Conversions reads bytes of machine-word width as an unsigned
// big-endian integer. The produced value remembers its source bytes.
func (b *BigEndian) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) == 0 || len(raw) > maxWidth {
		return nil
	}
	n := new(big.Int).SetBytes(raw)
	return []format.Conversion{{
		Value:        value.IntFromBytes(n, raw),
		TargetFormat: "int-be",
		Display:      n.String(),
		Kind:         format.KindTransformation,
		Priority:     format.PriorityRaw,
	}}
}

// LittleEndian reads short byte strings as little-endian unsigned
// integers.
type LittleEndian struct {
	format.Base
}

// NewLittleEndian returns the little-endian integer analyzer.
func NewLittleEndian() *LittleEndian {
	return &LittleEndian{Base: format.NewBase(format.Info{
		ID:          "int-le",
		Name:        "Integer (little-endian)",
		Category:    "number",
		Description: "byte string read as a little-endian unsigned integer",
	})}
}

// Conversions mirrors the big-endian reading with reversed bytes.
// Single bytes are skipped: both orders read identically and the
// big-endian analyzer already claims that value.
func (l *LittleEndian) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) < 2 || len(raw) > maxWidth {
		return nil
	}
	rev := make([]byte, len(raw))
	for i, b := range raw {
		rev[len(raw)-1-i] = b
	}
	n := new(big.Int).SetBytes(rev)
	return []format.Conversion{{
		Value:        value.IntFromBytes(n, raw),
		TargetFormat: "int-le",
		Display:      n.String(),
		Kind:         format.KindTransformation,
		Priority:     format.PriorityRaw,
	}}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
