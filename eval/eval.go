// Package eval implements the shunting-yard expression evaluator: a
// token sequence is evaluated against a Resolver that answers variable
// lookups.
package eval

import (
	"math"

	"github.com/rickroll-lang/rickroll/exprtoken"
	"github.com/rickroll-lang/rickroll/langerr"
	"github.com/rickroll-lang/rickroll/value"
)

// Resolver answers a variable read during evaluation. Implementations
// are expected to apply the interpreter's scope/global-fallback lookup
// rule.
type Resolver interface {
	Get(name string) (value.Value, error)
}

// Eval evaluates tokens against resolver using the shunting-yard
// algorithm, with a fix-up pass for runs of leading unary operators
// that would otherwise pop before their operand exists.
func Eval(tokens []exprtoken.Token, resolver Resolver, line int) (value.Value, error) {
	var values []value.Value
	var ops []exprtoken.OpKind

	apply := func() error {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if exprtoken.IsUnary(op) {
			if len(values) < 1 {
				return langerr.New(langerr.Syntax, "malformed expression").WithLine(line)
			}
			a := values[len(values)-1]
			values = values[:len(values)-1]
			r, err := applyUnary(op, a, line)
			if err != nil {
				return err
			}
			values = append(values, r)
			return nil
		}
		if len(values) < 2 {
			return langerr.New(langerr.Syntax, "malformed expression").WithLine(line)
		}
		b := values[len(values)-1]
		a := values[len(values)-2]
		values = values[:len(values)-2]
		r, err := applyBinary(op, a, b, line)
		if err != nil {
			return err
		}
		values = append(values, r)
		return nil
	}

	// stack holds pending operators together with paren markers, so
	// popping respects both kinds of entries; popAndApply moves its top
	// operator onto ops for apply.
	type stackEntry struct {
		isParen bool
		op      exprtoken.OpKind
	}
	var stack []stackEntry

	popAndApply := func() error {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ops = append(ops, top.op)
		return apply()
	}

	// resolveUnaryRun applies any run of unary (prefix) operators sitting
	// directly on top of the stack, innermost first, once their operand
	// has just been pushed. A unary operator is never popped by a
	// following unary operator (that would fire before its operand
	// exists, breaking e.g. "- - a"). If the next token (rest[0]) is an
	// operator that binds tighter than the unary one, as ':' does over
	// '!', the unary operator stays on the stack and is popped later by
	// a looser binary operator or when the expression/parenthesis closes.
	resolveUnaryRun := func(rest []exprtoken.Token) error {
		for len(stack) > 0 && !stack[len(stack)-1].isParen && exprtoken.IsUnary(stack[len(stack)-1].op) {
			if len(rest) > 0 && rest[0].Kind == exprtoken.KindOperator &&
				exprtoken.Precedence(rest[0].Op) < exprtoken.Precedence(stack[len(stack)-1].op) {
				break
			}
			if err := popAndApply(); err != nil {
				return err
			}
		}
		return nil
	}

	for i, tok := range tokens {
		switch tok.Kind {
		case exprtoken.KindValue:
			values = append(values, tok.Value)
			if err := resolveUnaryRun(tokens[i+1:]); err != nil {
				return value.Undefined, err
			}
		case exprtoken.KindVariable:
			v, err := resolver.Get(tok.Variable)
			if err != nil {
				return value.Undefined, err
			}
			values = append(values, v)
			if err := resolveUnaryRun(tokens[i+1:]); err != nil {
				return value.Undefined, err
			}
		case exprtoken.KindLParen:
			stack = append(stack, stackEntry{isParen: true})
		case exprtoken.KindRParen:
			for len(stack) > 0 && !stack[len(stack)-1].isParen {
				if err := popAndApply(); err != nil {
					return value.Undefined, err
				}
			}
			if len(stack) == 0 {
				return value.Undefined, langerr.New(langerr.Syntax, "unmatched parenthesis").WithLine(line)
			}
			stack = stack[:len(stack)-1] // discard the LParen marker
			if err := resolveUnaryRun(tokens[i+1:]); err != nil {
				return value.Undefined, err
			}
		case exprtoken.KindOperator:
			for len(stack) > 0 && !stack[len(stack)-1].isParen &&
				(!exprtoken.IsUnary(stack[len(stack)-1].op) || !exprtoken.IsUnary(tok.Op)) &&
				exprtoken.Precedence(stack[len(stack)-1].op) <= exprtoken.Precedence(tok.Op) {
				if err := popAndApply(); err != nil {
					return value.Undefined, err
				}
			}
			stack = append(stack, stackEntry{op: tok.Op})
		}
	}

	for len(stack) > 0 {
		if stack[len(stack)-1].isParen {
			return value.Undefined, langerr.New(langerr.Syntax, "unmatched parenthesis").WithLine(line)
		}
		if err := popAndApply(); err != nil {
			return value.Undefined, err
		}
	}

	if len(values) != 1 {
		return value.Undefined, langerr.New(langerr.Syntax, "malformed expression").WithLine(line)
	}
	return values[0], nil
}

func isNumeric(v value.Value) bool { return v.Kind() == value.Int || v.Kind() == value.Float }

func asFloat(v value.Value) float32 {
	if v.Kind() == value.Int {
		return float32(v.Int())
	}
	return v.Float()
}

func applyUnary(op exprtoken.OpKind, a value.Value, line int) (value.Value, error) {
	switch op {
	case exprtoken.Neg:
		switch a.Kind() {
		case value.Int:
			return value.NewInt(-a.Int()), nil
		case value.Float:
			return value.NewFloat(-a.Float()), nil
		default:
			return value.Undefined, langerr.New(langerr.IllegalArgument, "unary - requires a numeric operand").WithLine(line)
		}
	case exprtoken.Not:
		if a.Kind() != value.Bool {
			return value.Undefined, langerr.New(langerr.IllegalArgument, "! requires a boolean operand").WithLine(line)
		}
		return value.NewBool(!a.Bool()), nil
	default:
		return value.Undefined, langerr.New(langerr.Syntax, "unknown unary operator").WithLine(line)
	}
}

func applyBinary(op exprtoken.OpKind, a, b value.Value, line int) (value.Value, error) {
	switch op {
	case exprtoken.Add:
		return applyAdd(a, b, line)
	case exprtoken.Sub:
		return applyArith(a, b, line, "-", func(x, y int32) (int32, bool) { return x - y, !subOverflows(x, y) }, func(x, y float32) float32 { return x - y })
	case exprtoken.Mul:
		return applyArith(a, b, line, "*", func(x, y int32) (int32, bool) { return x * y, !mulOverflows(x, y) }, func(x, y float32) float32 { return x * y })
	case exprtoken.Div:
		return applyDiv(a, b, line)
	case exprtoken.Mod:
		return applyMod(a, b, line)
	case exprtoken.Gt, exprtoken.Lt, exprtoken.Gte, exprtoken.Lte:
		return applyCompare(op, a, b, line)
	case exprtoken.Eq:
		return value.NewBool(value.Equal(a, b)), nil
	case exprtoken.Neq:
		return value.NewBool(!value.Equal(a, b)), nil
	case exprtoken.And:
		if a.Kind() != value.Bool || b.Kind() != value.Bool {
			return value.Undefined, langerr.New(langerr.IllegalArgument, "&& requires boolean operands").WithLine(line)
		}
		return value.NewBool(a.Bool() && b.Bool()), nil
	case exprtoken.Or:
		if a.Kind() != value.Bool || b.Kind() != value.Bool {
			return value.Undefined, langerr.New(langerr.IllegalArgument, "|| requires boolean operands").WithLine(line)
		}
		return value.NewBool(a.Bool() || b.Bool()), nil
	case exprtoken.ArrayIndex:
		return applyIndex(a, b, line)
	default:
		return value.Undefined, langerr.New(langerr.Syntax, "unknown binary operator").WithLine(line)
	}
}

func subOverflows(a, b int32) bool {
	r := int64(a) - int64(b)
	return r > math.MaxInt32 || r < math.MinInt32
}

func mulOverflows(a, b int32) bool {
	r := int64(a) * int64(b)
	return r > math.MaxInt32 || r < math.MinInt32
}

func applyArith(a, b value.Value, line int, name string, intOp func(int32, int32) (int32, bool), floatOp func(float32, float32) float32) (value.Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "%s requires numeric operands", name).WithLine(line)
	}
	if a.Kind() == value.Int && b.Kind() == value.Int {
		r, ok := intOp(a.Int(), b.Int())
		if !ok {
			return value.Undefined, langerr.New(langerr.Overflow, "integer overflow in %s", name).WithLine(line)
		}
		return value.NewInt(r), nil
	}
	return value.NewFloat(floatOp(asFloat(a), asFloat(b))), nil
}

func applyAdd(a, b value.Value, line int) (value.Value, error) {
	switch {
	case a.Kind() == value.Array && b.Kind() == value.Array:
		return value.NewArray(append(append([]value.Value{}, a.Array()...), b.Array()...)), nil
	case a.Kind() == value.Array:
		return value.NewArray(append(append([]value.Value{}, a.Array()...), b)), nil
	case a.Kind() == value.Char && b.Kind() == value.Char:
		return value.NewArray([]value.Value{a, b}), nil
	case a.Kind() == value.Char && b.Kind() == value.Array:
		return value.NewArray(append([]value.Value{a}, b.Array()...)), nil
	case isNumeric(a) && isNumeric(b):
		return applyArith(a, b, line, "+", func(x, y int32) (int32, bool) { return x + y, !addOverflows(x, y) }, func(x, y float32) float32 { return x + y })
	default:
		return value.Undefined, langerr.New(langerr.IllegalArgument, "+ is not defined for these operand kinds").WithLine(line)
	}
}

func addOverflows(a, b int32) bool {
	r := int64(a) + int64(b)
	return r > math.MaxInt32 || r < math.MinInt32
}

func applyDiv(a, b value.Value, line int) (value.Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "/ requires numeric operands").WithLine(line)
	}
	if a.Kind() == value.Int && b.Kind() == value.Int {
		if b.Int() == 0 {
			return value.Undefined, langerr.New(langerr.IllegalArgument, "division by zero").WithLine(line)
		}
		return value.NewInt(a.Int() / b.Int()), nil
	}
	if asFloat(b) == 0 {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "division by zero").WithLine(line)
	}
	return value.NewFloat(asFloat(a) / asFloat(b)), nil
}

func applyMod(a, b value.Value, line int) (value.Value, error) {
	if a.Kind() != value.Int || b.Kind() != value.Int {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "%% requires integer operands").WithLine(line)
	}
	if b.Int() == 0 {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "division by zero").WithLine(line)
	}
	return value.NewInt(a.Int() % b.Int()), nil
}

func applyCompare(op exprtoken.OpKind, a, b value.Value, line int) (value.Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "comparison requires numeric operands").WithLine(line)
	}
	x, y := asFloat(a), asFloat(b)
	switch op {
	case exprtoken.Gt:
		return value.NewBool(x > y), nil
	case exprtoken.Lt:
		return value.NewBool(x < y), nil
	case exprtoken.Gte:
		return value.NewBool(x >= y), nil
	case exprtoken.Lte:
		return value.NewBool(x <= y), nil
	default:
		return value.Undefined, langerr.New(langerr.Syntax, "unknown comparison operator").WithLine(line)
	}
}

func applyIndex(a, b value.Value, line int) (value.Value, error) {
	if a.Kind() != value.Array || b.Kind() != value.Int {
		return value.Undefined, langerr.New(langerr.IllegalArgument, ": requires an array and an integer index").WithLine(line)
	}
	idx := int(b.Int())
	arr := a.Array()
	if idx < 0 || idx >= len(arr) {
		return value.Undefined, langerr.New(langerr.IllegalArgument, "array index %d out of range", idx).WithLine(line)
	}
	return arr[idx], nil
}
