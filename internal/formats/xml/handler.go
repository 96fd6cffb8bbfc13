// Package xml recognizes XML documents.
package xml

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
)

// Handler is the XML analyzer.
type Handler struct {
	format.Base
}

// New returns the XML analyzer.
func New() *Handler {
	return &Handler{Base: format.NewBase(format.Info{
		ID:          "xml",
		Name:        "XML",
		Category:    "structured",
		Description: "XML document or fragment",
		Examples:    []string{"<a><b>1</b></a>"},
		CanValidate: true,
	})}
}

// Parse recognizes an XML element tree and converts it to the shared
// node form: elements become maps of tag to child, attributes keyed
// as @name, text under #text.
func (h *Handler) Parse(input string) []format.Interpretation {
	s := strings.TrimSpace(input)
	if len(s) < 3 || s[0] != '<' || !strings.HasSuffix(s, ">") {
		return nil
	}
	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}
	root := firstElement(doc)
	if root == nil {
		return nil
	}
	node := value.Map().Set(root.Data, elementNode(root))
	return []format.Interpretation{{
		Value:       value.Structured(node),
		Confidence:  0.9,
		Description: fmt.Sprintf("XML, root element <%s>", root.Data),
	}}
}

// Validate explains why input is not XML.
func (h *Handler) Validate(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return "empty input"
	}
	if s[0] != '<' {
		return "expected '<' to open an element"
	}
	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return err.Error()
	}
	if firstElement(doc) == nil {
		return "no element found"
	}
	return ""
}

func firstElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// elementNode converts one element. Repeated child tags collapse into
// lists so the result round-trips common document shapes.
func elementNode(el *xmlquery.Node) *value.Node {
	out := value.Map()
	for _, attr := range el.Attr {
		out.Set("@"+attr.Name.Local, value.StringNode(attr.Value))
	}

	var text strings.Builder
	children := map[string][]*value.Node{}
	var order []string
	for n := el.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			if _, seen := children[n.Data]; !seen {
				order = append(order, n.Data)
			}
			children[n.Data] = append(children[n.Data], elementNode(n))
		case xmlquery.TextNode:
			text.WriteString(n.Data)
		}
	}

	trimmed := strings.TrimSpace(text.String())
	if len(children) == 0 && out.Len() == 0 {
		return value.StringNode(trimmed)
	}
	if trimmed != "" {
		out.Set("#text", value.StringNode(trimmed))
	}
	for _, tag := range order {
		if nodes := children[tag]; len(nodes) == 1 {
			out.Set(tag, nodes[0])
		} else {
			out.Set(tag, value.List(nodes...))
		}
	}
	return out
}
