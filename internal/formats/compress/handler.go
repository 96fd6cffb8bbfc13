// Package compress decompresses gzip, zstd and xz byte values.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// maxDecompressed caps expansion so a small bomb cannot exhaust
// memory during traversal.
const maxDecompressed = 1 << 20

// Gzip decompresses gzip byte values.
type Gzip struct {
	format.Base
}

// NewGzip returns the gzip analyzer.
func NewGzip() *Gzip {
	return &Gzip{Base: format.NewBase(format.Info{
		ID:          "gzip",
		Name:        "gzip",
		Category:    "compression",
		Description: "gzip-compressed data (magic 1f 8b)",
		Aliases:     []string{"gz"},
	})}
}

// Conversions inflates byte values carrying the gzip magic.
func (g *Gzip) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) < 3 || raw[0] != 0x1f || raw[1] != 0x8b {
		return nil
	}
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	defer r.Close()
	return inflated(r, "gzip")
}

// Zstd decompresses zstandard byte values.
type Zstd struct {
	format.Base
}

// NewZstd returns the zstd analyzer.
func NewZstd() *Zstd {
	return &Zstd{Base: format.NewBase(format.Info{
		ID:          "zstd",
		Name:        "Zstandard",
		Category:    "compression",
		Description: "zstd-compressed data (magic 28 b5 2f fd)",
	})}
}

// Conversions inflates byte values carrying the zstd magic.
func (z *Zstd) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) < 5 ||
		raw[0] != 0x28 || raw[1] != 0xb5 || raw[2] != 0x2f || raw[3] != 0xfd {
		return nil
	}
	r, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	defer r.Close()
	return inflated(r.IOReadCloser(), "zstd")
}

// Xz decompresses xz byte values.
type Xz struct {
	format.Base
}

// NewXz returns the xz analyzer.
func NewXz() *Xz {
	return &Xz{Base: format.NewBase(format.Info{
		ID:          "xz",
		Name:        "xz",
		Category:    "compression",
		Description: "xz-compressed data (magic fd 37 7a 58 5a 00)",
	})}
}

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Conversions inflates byte values carrying the xz magic.
func (x *Xz) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) < len(xzMagic) || !bytes.HasPrefix(raw, xzMagic) {
		return nil
	}
	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	return inflated(r, "xz")
}

// inflated reads up to the expansion cap and reports the decompressed
// bytes as a new value.
func inflated(r io.Reader, target string) []format.Conversion {
	out, err := io.ReadAll(io.LimitReader(r, maxDecompressed+1))
	if err != nil || len(out) == 0 {
		return nil
	}
	if len(out) > maxDecompressed {
		return nil
	}
	return []format.Conversion{{
		Value:        value.Bytes(out),
		TargetFormat: target,
		Display:      fmt.Sprintf("decompressed, %d bytes", len(out)),
		Kind:         format.KindTransformation,
		Priority:     format.PriorityEncoding,
	}}
}
