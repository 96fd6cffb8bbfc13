// Package urlenc recognizes percent-encoded URL text.
package urlenc

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the percent-encoding analyzer. It only decodes; encoding
// arbitrary text back is noise, every string would qualify.
type Handler struct {
	format.Base
}

// New returns the percent-encoding analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "url",
		Name:        "URL encoding",
		Category:    "encoding",
		Description: "percent-encoded text, %XX escapes",
		Examples:    []string{"hello%20world", "a%2Fb%3Fc%3D1"},
		Aliases:     []string{"urlencoded", "percent"},
	})}
}

// Parse decodes input containing at least one %XX escape.
func (h *Handler) Parse(input string) []format.Interpretation {
	if !hasEscape(input) {
		return nil
	}
	decoded, err := url.QueryUnescape(strings.ReplaceAll(input, "+", "%2B"))
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Text(decoded),
		Confidence:  0.85,
		Description: fmt.Sprintf("percent-encoded: %s", decoded),
	}}
}

// hasEscape reports whether a complete %XX escape is present.
func hasEscape(s string) bool {
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2]) {
			return true
		}
	}
	return false
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
