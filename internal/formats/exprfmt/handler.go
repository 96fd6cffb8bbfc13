// Package exprfmt recognizes arithmetic and currency expressions.
package exprfmt

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tokenlens/tokenlens/core/format"
	"github.com/tokenlens/tokenlens/core/value"
	"github.com/tokenlens/tokenlens/internal/expr"
)

// ContextFunc supplies the evaluation context per call, so live
// currency rates flow in without coupling the analyzer to their
// source.
type ContextFunc func() expr.Context

// Handler is the expression analyzer.
type Handler struct {
	format.Base
	context ContextFunc
}

// New returns the expression analyzer. ctx may be nil, which
// evaluates with the default context and no currency rates.
func New(ctx ContextFunc) *Handler {
	if ctx == nil {
		ctx = func() expr.Context { return expr.DefaultContext() }
	}
	return &Handler{
		Base: format.NewBase(format.Info{
			ID:          "expr",
			Name:        "Expression",
			Category:    "expression",
			Description: "arithmetic or currency expression",
			Examples:    []string{"2*(3+4)", "100 USD in EUR"},
			Aliases:     []string{"calc"},
		}),
		context: ctx,
	}
}

// Parse evaluates input that looks like an expression. The
// interpretation keeps the original text; the computed result is a
// derived view exposed through SourceConversions.
func (h *Handler) Parse(input string) []format.Interpretation {
	if !expr.Looks(input) {
		return nil
	}
	res, err := expr.Eval(input, h.context())
	if err != nil {
		return nil
	}
	return []format.Interpretation{{
		Value:       value.Text(input),
		Confidence:  0.8,
		Description: "expression = " + render(res),
	}}
}

// SourceConversions exposes the computed result. Only the expression
// analyzer itself can offer it: re-evaluating arbitrary text found
// mid-traversal would be noise.
func (h *Handler) SourceConversions(v value.Value) []format.Conversion {
	input, ok := v.Text()
	if !ok || !expr.Looks(input) {
		return nil
	}
	res, err := expr.Eval(input, h.context())
	if err != nil {
		return nil
	}
	return []format.Conversion{{
		Value:        value.Float(res.Value),
		TargetFormat: "expr-result",
		Display:      render(res),
		Kind:         format.KindTransformation,
		Priority:     format.PrioritySemantic,
		DisplayOnly:  true,
	}}
}

func render(res expr.Result) string {
	if res.Currency != "" {
		return fmt.Sprintf("%.2f %s", res.Value, res.Currency)
	}
	if res.IsInt() {
		return strconv.FormatInt(int64(math.Trunc(res.Value)), 10)
	}
	return strconv.FormatFloat(res.Value, 'g', 12, 64)
}
