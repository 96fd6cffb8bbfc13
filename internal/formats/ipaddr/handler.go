// Package ipaddr recognizes IPv4 and IPv6 address text and renders
// 4- and 16-byte values as addresses.
package ipaddr

import (
	"net/netip"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// V4 is the IPv4 analyzer.
type V4 struct {
	format.Base
}

// NewV4 returns the IPv4 analyzer.
func NewV4() *V4 {
	return &V4{Base: format.NewBase(format.Info{
		ID:          "ipv4",
		Name:        "IPv4 address",
		Category:    "network",
		Description: "dotted-quad IPv4 address",
		Examples:    []string{"192.168.1.1"},
		CanValidate: true,
	})}
}

// Parse recognizes a dotted quad. The value is the 4 address bytes.
func (h *V4) Parse(input string) []format.Interpretation {
	addr, err := netip.ParseAddr(input)
	if err != nil || !addr.Is4() {
		return nil
	}
	b := addr.As4()
	return []format.Interpretation{{
		Value:       value.Bytes(b[:]),
		Confidence:  0.95,
		Description: "IPv4 address, " + classify(addr),
	}}
}

// Conversions renders any 4-byte value as a dotted quad.
func (h *V4) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) != 4 {
		return nil
	}
	addr := netip.AddrFrom4([4]byte(raw))
	return []format.Conversion{{
		Value:        value.Text(addr.String()),
		TargetFormat: "ipv4",
		Display:      addr.String(),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

// Validate explains why input is not an IPv4 address.
func (h *V4) Validate(input string) string {
	addr, err := netip.ParseAddr(input)
	if err != nil {
		return err.Error()
	}
	if !addr.Is4() {
		return "parses as IPv6, not IPv4"
	}
	return ""
}

// V6 is the IPv6 analyzer.
type V6 struct {
	format.Base
}

// NewV6 returns the IPv6 analyzer.
func NewV6() *V6 {
	return &V6{Base: format.NewBase(format.Info{
		ID:          "ipv6",
		Name:        "IPv6 address",
		Category:    "network",
		Description: "IPv6 address in any textual form",
		Examples:    []string{"2001:db8::1", "::1"},
		CanValidate: true,
	})}
}

// Parse recognizes IPv6 text. The value is the 16 address bytes.
func (h *V6) Parse(input string) []format.Interpretation {
	if !strings.Contains(input, ":") {
		return nil
	}
	addr, err := netip.ParseAddr(input)
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return nil
	}
	b := addr.As16()
	return []format.Interpretation{{
		Value:       value.Bytes(b[:]),
		Confidence:  0.95,
		Description: "IPv6 address, " + classify(addr),
	}}
}

// Conversions renders any 16-byte value in compressed IPv6 form.
func (h *V6) Conversions(v value.Value) []format.Conversion {
	raw, ok := v.Bytes()
	if !ok || len(raw) != 16 {
		return nil
	}
	addr := netip.AddrFrom16([16]byte(raw))
	return []format.Conversion{{
		Value:        value.Text(addr.String()),
		TargetFormat: "ipv6",
		Display:      addr.String(),
		Kind:         format.KindRepresentation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

// Validate explains why input is not an IPv6 address.
func (h *V6) Validate(input string) string {
	addr, err := netip.ParseAddr(input)
	if err != nil {
		return err.Error()
	}
	if !addr.Is6() || addr.Is4In6() {
		return "parses as IPv4, not IPv6"
	}
	return ""
}

func classify(addr netip.Addr) string {
	switch {
	case addr.IsLoopback():
		return "loopback"
	case addr.IsPrivate():
		return "private"
	case addr.IsLinkLocalUnicast():
		return "link-local"
	case addr.IsMulticast():
		return "multicast"
	case addr.IsUnspecified():
		return "unspecified"
	default:
		return "global"
	}
}
