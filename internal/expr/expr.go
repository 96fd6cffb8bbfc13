// Package expr evaluates arithmetic and currency expressions. The
// grammar is deliberately small: numbers, the four basic operators,
// exponentiation, parentheses, named variables and one-argument
// functions, currency-qualified amounts, and "in <currency>"
// conversion. Evaluation is pure over an explicit Context resolved
// once per request.
package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Context supplies the variable/function table and the currency rates
// visible to one evaluation. It is read-only during evaluation.
type Context struct {
	// Variables maps identifier to value.
	Variables map[string]float64
	// Functions maps identifier to a one-argument function.
	Functions map[string]func(float64) float64
	// Rates maps ISO currency code to units per US dollar.
	Rates map[string]float64
	// TargetCurrency is the default conversion target when an
	// expression carries a currency but no explicit "in" clause.
	TargetCurrency string
}

// DefaultContext returns a context with the standard variable and
// function table and no rates.
func DefaultContext() Context {
	return Context{
		Variables: map[string]float64{
			"pi": math.Pi,
			"e":  math.E,
		},
		Functions: map[string]func(float64) float64{
			"sqrt":  math.Sqrt,
			"abs":   math.Abs,
			"ln":    math.Log,
			"log":   math.Log10,
			"sin":   math.Sin,
			"cos":   math.Cos,
			"tan":   math.Tan,
			"round": math.Round,
			"floor": math.Floor,
			"ceil":  math.Ceil,
		},
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	// Value is the numeric result. For currency expressions it is
	// denominated in Currency.
	Value float64
	// Currency is the ISO code of the result, empty for plain numbers.
	Currency string
}

// IsInt reports whether the result is integral and small enough to be
// represented exactly.
func (r Result) IsInt() bool {
	return r.Currency == "" && r.Value == math.Trunc(r.Value) && math.Abs(r.Value) < 1e15
}

//nolint:govet // participle grammar tags are not standard struct tags
type exprGrammar struct {
	Sum    *sumExpr `@@`
	Target *string  `( ("in" | "to") @Ident )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type sumExpr struct {
	Left  *termExpr `@@`
	Rest  []*sumOp  `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type sumOp struct {
	Op   string    `@("+" | "-")`
	Term *termExpr `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type termExpr struct {
	Left *powExpr  `@@`
	Rest []*termOp `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type termOp struct {
	Op  string   `@("*" | "/" | "%")`
	Pow *powExpr `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type powExpr struct {
	Base *unaryExpr `@@`
	Exp  *powExpr   `( "^" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type unaryExpr struct {
	Neg  bool      `@"-"?`
	Atom *atomExpr `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type atomExpr struct {
	Number *numberAtom `  @@`
	Call   *callAtom   `| @@`
	Group  *exprGroup  `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type numberAtom struct {
	Value    float64 `@Number`
	Currency *string `@Ident?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type callAtom struct {
	Name string   `@Ident`
	Arg  *sumExpr `( "(" @@ ")" )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type exprGroup struct {
	Inner    *sumExpr `"(" @@ ")"`
	Currency *string  `@Ident?`
}

// exprLexer tokenizes expressions. The conversion keywords get their
// own token type so an optional currency suffix can never swallow the
// "in"/"to" of a conversion clause; remaining Idents cover variables,
// functions, and currency codes alike, and evaluation disambiguates.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`},
	{Name: "Conv", Pattern: `(?:in|to)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9]*`},
	{Name: "Op", Pattern: `[-+*/%^()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[exprGrammar](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// Looks reports whether the input plausibly is an expression rather
// than a bare number or word: it must contain an operator, a function
// call, or a conversion clause. Cheap pre-filter before Parse.
func Looks(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if strings.ContainsAny(trimmed, "+*/%^(") {
		return true
	}
	// A minus that is not a leading sign.
	if i := strings.IndexByte(trimmed, '-'); i > 0 {
		return true
	}
	fields := strings.Fields(trimmed)
	// "100 USD", "3 USD in EUR" style.
	return len(fields) >= 2 && len(fields) <= 4
}

// Parse parses the expression without evaluating it.
func Parse(input string) (*exprGrammar, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("empty expression")
	}
	parsed, err := exprParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", trimmed, err)
	}
	return parsed, nil
}

// Eval parses and evaluates the expression against the context.
func Eval(input string, ctx Context) (Result, error) {
	parsed, err := Parse(input)
	if err != nil {
		return Result{}, err
	}
	return evalGrammar(parsed, ctx)
}

// quantity is an intermediate value: a number optionally denominated
// in a currency.
type quantity struct {
	val      float64
	currency string
}

func evalGrammar(g *exprGrammar, ctx Context) (Result, error) {
	q, err := evalSum(g.Sum, ctx)
	if err != nil {
		return Result{}, err
	}

	target := ""
	if g.Target != nil {
		target = strings.ToUpper(*g.Target)
	} else if q.currency != "" && ctx.TargetCurrency != "" && ctx.TargetCurrency != q.currency {
		target = ctx.TargetCurrency
	}

	if target != "" {
		if q.currency == "" {
			return Result{}, fmt.Errorf("cannot convert a plain number to %s", target)
		}
		converted, err := convert(q, target, ctx)
		if err != nil {
			return Result{}, err
		}
		q = converted
	}

	if math.IsNaN(q.val) || math.IsInf(q.val, 0) {
		return Result{}, fmt.Errorf("expression result is not finite")
	}
	return Result{Value: q.val, Currency: q.currency}, nil
}

func convert(q quantity, target string, ctx Context) (quantity, error) {
	from, err := rateFor(q.currency, ctx)
	if err != nil {
		return quantity{}, err
	}
	to, err := rateFor(target, ctx)
	if err != nil {
		return quantity{}, err
	}
	return quantity{val: q.val / from * to, currency: target}, nil
}

// rateFor resolves a currency to units per US dollar. USD is the base
// and always available.
func rateFor(code string, ctx Context) (float64, error) {
	if r, ok := ctx.Rates[code]; ok && r > 0 {
		return r, nil
	}
	if code == "USD" {
		return 1, nil
	}
	return 0, fmt.Errorf("no rate for %s", code)
}

func evalSum(s *sumExpr, ctx Context) (quantity, error) {
	acc, err := evalTerm(s.Left, ctx)
	if err != nil {
		return quantity{}, err
	}
	for _, op := range s.Rest {
		rhs, err := evalTerm(op.Term, ctx)
		if err != nil {
			return quantity{}, err
		}
		acc, err = combine(acc, rhs, op.Op, ctx)
		if err != nil {
			return quantity{}, err
		}
	}
	return acc, nil
}

// combine adds or subtracts two quantities, converting the right side
// when both carry currencies.
func combine(a, b quantity, op string, ctx Context) (quantity, error) {
	if a.currency != b.currency {
		switch {
		case a.currency != "" && b.currency != "":
			conv, err := convert(b, a.currency, ctx)
			if err != nil {
				return quantity{}, err
			}
			b = conv
		case a.currency == "":
			a.currency = b.currency
		default:
			b.currency = a.currency
		}
	}
	switch op {
	case "+":
		return quantity{val: a.val + b.val, currency: a.currency}, nil
	case "-":
		return quantity{val: a.val - b.val, currency: a.currency}, nil
	default:
		return quantity{}, fmt.Errorf("unknown operator %q", op)
	}
}

func evalTerm(t *termExpr, ctx Context) (quantity, error) {
	acc, err := evalPow(t.Left, ctx)
	if err != nil {
		return quantity{}, err
	}
	for _, op := range t.Rest {
		rhs, err := evalPow(op.Pow, ctx)
		if err != nil {
			return quantity{}, err
		}
		switch op.Op {
		case "*":
			acc = quantity{val: acc.val * rhs.val, currency: firstCurrency(acc, rhs)}
		case "/":
			if rhs.val == 0 {
				return quantity{}, fmt.Errorf("division by zero")
			}
			acc = quantity{val: acc.val / rhs.val, currency: firstCurrency(acc, rhs)}
		case "%":
			if rhs.val == 0 {
				return quantity{}, fmt.Errorf("division by zero")
			}
			acc = quantity{val: math.Mod(acc.val, rhs.val), currency: firstCurrency(acc, rhs)}
		}
	}
	return acc, nil
}

func firstCurrency(a, b quantity) string {
	if a.currency != "" {
		return a.currency
	}
	return b.currency
}

func evalPow(p *powExpr, ctx Context) (quantity, error) {
	base, err := evalUnary(p.Base, ctx)
	if err != nil {
		return quantity{}, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := evalPow(p.Exp, ctx)
	if err != nil {
		return quantity{}, err
	}
	return quantity{val: math.Pow(base.val, exp.val), currency: base.currency}, nil
}

func evalUnary(u *unaryExpr, ctx Context) (quantity, error) {
	q, err := evalAtom(u.Atom, ctx)
	if err != nil {
		return quantity{}, err
	}
	if u.Neg {
		q.val = -q.val
	}
	return q, nil
}

func evalAtom(a *atomExpr, ctx Context) (quantity, error) {
	switch {
	case a.Number != nil:
		return denominate(quantity{val: a.Number.Value}, a.Number.Currency, ctx)

	case a.Call != nil:
		name := a.Call.Name
		if a.Call.Arg == nil {
			if v, ok := ctx.Variables[strings.ToLower(name)]; ok {
				return quantity{val: v}, nil
			}
			return quantity{}, fmt.Errorf("unknown variable %q", name)
		}
		fn, ok := ctx.Functions[strings.ToLower(name)]
		if !ok {
			return quantity{}, fmt.Errorf("unknown function %q", name)
		}
		arg, err := evalSum(a.Call.Arg, ctx)
		if err != nil {
			return quantity{}, err
		}
		return quantity{val: fn(arg.val), currency: arg.currency}, nil

	case a.Group != nil:
		q, err := evalSum(a.Group.Inner, ctx)
		if err != nil {
			return quantity{}, err
		}
		return denominate(q, a.Group.Currency, ctx)

	default:
		return quantity{}, fmt.Errorf("empty atom")
	}
}

// denominate applies an optional currency suffix to a quantity, so
// "(50+50) USD" denominates the same way "100 USD" does.
func denominate(q quantity, currency *string, ctx Context) (quantity, error) {
	if currency == nil {
		return q, nil
	}
	code := strings.ToUpper(*currency)
	if !isCurrencyCode(code, ctx) {
		return quantity{}, fmt.Errorf("unknown currency %q", *currency)
	}
	if q.currency != "" && q.currency != code {
		return quantity{}, fmt.Errorf("quantity already denominated in %s", q.currency)
	}
	q.currency = code
	return q, nil
}

// isCurrencyCode accepts a code present in the rate table, or USD
// (the base), or any three-letter uppercase code when no table is
// loaded so parsing still succeeds offline.
func isCurrencyCode(code string, ctx Context) bool {
	if code == "USD" {
		return true
	}
	if _, ok := ctx.Rates[code]; ok {
		return true
	}
	return len(ctx.Rates) == 0 && len(code) == 3 && code == strings.ToUpper(code)
}
