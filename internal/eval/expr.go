package eval

import (
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// allowedFunctions is the complete set of functions a formula may call.
var allowedFunctions = map[string]function.Function{
	"min": stdlib.MinFunc,
	"max": stdlib.MaxFunc,
	"abs": stdlib.AbsoluteFunc,
}

// allowedBinaryOps maps the permitted arithmetic operations to their source
// symbol. Comparison operators are permitted too, but they go through
// numericCompareOps instead so their results stay numeric.
var allowedBinaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:      "+",
	hclsyntax.OpSubtract: "-",
	hclsyntax.OpMultiply: "*",
	hclsyntax.OpDivide:   "/",
}

// numericCompareOps substitutes the stock comparison operations, whose cty
// bool results cannot participate in arithmetic, with variants yielding 1 or
// 0. Formulas use comparisons as numeric gates, (Demand > Supply) * Rate, so
// the whole expression must stay in the number domain.
var numericCompareOps = map[*hclsyntax.Operation]*hclsyntax.Operation{
	hclsyntax.OpEqual:              numericComparison(func(a, b cty.Value) bool { return a.Equals(b).True() }),
	hclsyntax.OpNotEqual:           numericComparison(func(a, b cty.Value) bool { return !a.Equals(b).True() }),
	hclsyntax.OpGreaterThan:        numericComparison(func(a, b cty.Value) bool { return a.GreaterThan(b).True() }),
	hclsyntax.OpGreaterThanOrEqual: numericComparison(func(a, b cty.Value) bool { return a.GreaterThanOrEqualTo(b).True() }),
	hclsyntax.OpLessThan:           numericComparison(func(a, b cty.Value) bool { return a.LessThan(b).True() }),
	hclsyntax.OpLessThanOrEqual:    numericComparison(func(a, b cty.Value) bool { return a.LessThanOrEqualTo(b).True() }),
}

func numericComparison(test func(a, b cty.Value) bool) *hclsyntax.Operation {
	return &hclsyntax.Operation{
		Impl: function.New(&function.Spec{
			Params: []function.Parameter{
				{Name: "a", Type: cty.Number},
				{Name: "b", Type: cty.Number},
			},
			Type: function.StaticReturnType(cty.Number),
			Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
				if test(args[0], args[1]) {
					return cty.NumberIntVal(1), nil
				}
				return cty.NumberIntVal(0), nil
			},
		}),
		Type: cty.Number,
	}
}

// rejectedOps names the operations the restricted grammar leaves out, so
// rejections can point at the offending symbol.
var rejectedOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpModulo:     "%",
	hclsyntax.OpLogicalAnd: "&&",
	hclsyntax.OpLogicalOr:  "||",
	hclsyntax.OpLogicalNot: "!",
}

func opSymbol(op *hclsyntax.Operation) string {
	if sym, ok := allowedBinaryOps[op]; ok {
		return sym
	}
	if sym, ok := rejectedOps[op]; ok {
		return sym
	}
	return "?"
}

// Expr is a parsed, restriction-checked formula ready for repeated
// evaluation. Parsing happens once per entity per run; evaluation happens
// once per entity per step.
type Expr struct {
	src  string
	expr hclsyntax.Expression
	refs []string
}

// Parse parses a formula and verifies it stays inside the restricted
// grammar. The returned expression is inert: it holds no values and touches
// nothing outside the scope handed to Evaluate.
func Parse(formula string) (*Expr, error) {
	src := strings.TrimSpace(formula)
	if src == "" {
		return nil, &Error{Formula: formula, Reason: "empty formula"}
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(src), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &Error{Formula: formula, Reason: "syntax error", Err: diags}
	}
	if err := restrict(formula, parsed); err != nil {
		return nil, err
	}

	return &Expr{
		src:  formula,
		expr: parsed,
		refs: collectReferences(parsed),
	}, nil
}

// restrict walks the parsed syntax tree, rejects the first construct that
// falls outside the allowed grammar, and swaps comparison operations for
// their numeric variants.
func restrict(formula string, root hclsyntax.Expression) error {
	var violation *Error
	record := func(name, reason string) {
		if violation == nil {
			violation = &Error{Formula: formula, Name: name, Reason: reason}
		}
	}

	hclsyntax.VisitAll(root, func(node hclsyntax.Node) hcl.Diagnostics {
		switch n := node.(type) {
		case *hclsyntax.LiteralValueExpr,
			*hclsyntax.ScopeTraversalExpr,
			*hclsyntax.RelativeTraversalExpr,
			*hclsyntax.ParenthesesExpr:
			// plain values and name references
		case *hclsyntax.FunctionCallExpr:
			if _, ok := allowedFunctions[n.Name]; !ok {
				record(n.Name, "call to disallowed function")
			}
		case *hclsyntax.BinaryOpExpr:
			if numeric, ok := numericCompareOps[n.Op]; ok {
				n.Op = numeric
			} else if _, ok := allowedBinaryOps[n.Op]; !ok {
				record(opSymbol(n.Op), "disallowed operator")
			}
		case *hclsyntax.UnaryOpExpr:
			if n.Op != hclsyntax.OpNegate {
				record(opSymbol(n.Op), "disallowed operator")
			}
		default:
			record("", "unsupported construct")
		}
		return nil
	})

	if violation != nil {
		return violation
	}
	return nil
}

// collectReferences returns the sorted unique root names the expression
// refers to. Attribute steps are dropped: RATE.value references RATE.
func collectReferences(expr hcl.Expression) []string {
	seen := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		seen[traversal.RootName()] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// References returns the names this formula refers to, sorted and unique.
func (e *Expr) References() []string {
	return append([]string(nil), e.refs...)
}

// Source returns the original formula text.
func (e *Expr) Source() string {
	return e.src
}

// Evaluate computes the formula's numeric result against the given scope.
// Every referenced name must be bound in the scope. Comparisons already
// yield 1 or 0; a bare boolean literal maps the same way.
func (e *Expr) Evaluate(scope *Scope) (float64, error) {
	for _, name := range e.refs {
		if !scope.Has(name) {
			return 0, &Error{Formula: e.src, Name: name, Reason: "undefined name"}
		}
	}

	evalCtx := &hcl.EvalContext{
		Variables: scope.vars,
		Functions: allowedFunctions,
	}
	v, diags := e.expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, &Error{Formula: e.src, Reason: strings.TrimSpace(diags.Error()), Err: diags}
	}

	if v.IsNull() {
		return 0, &Error{Formula: e.src, Reason: "result is null, want a number"}
	}
	if v.Type() == cty.Bool {
		if v.True() {
			return 1, nil
		}
		return 0, nil
	}
	if v.Type() != cty.Number {
		return 0, &Error{Formula: e.src, Reason: "result is " + v.Type().FriendlyName() + ", want a number"}
	}

	f, _ := v.AsBigFloat().Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &Error{Formula: e.src, Reason: "result is not a finite number"}
	}
	return f, nil
}
