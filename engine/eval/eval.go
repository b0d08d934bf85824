package eval

import (
	"math"

	"github.com/OranPie/rulatro/types"
)

// Env resolves context identifiers and context functions. Identifiers and
// functions the env does not know must return an EvalError.
type Env interface {
	Ident(name string) (Value, error)
	Call(name string, args []Value) (Value, error)
}

// Eval evaluates expr against env. Operands are evaluated left to right
// and && / || short-circuit, so RNG-backed calls draw in source order.
func Eval(expr *types.Expr, env Env) (Value, error) {
	if expr == nil {
		return None, &EvalError{Code: CodeMalformed, Name: "nil"}
	}
	switch expr.Kind {
	case types.ExprBool:
		return Bool(expr.Bool), nil
	case types.ExprNumber:
		return Num(expr.Number), nil
	case types.ExprString:
		return Str(expr.Text), nil
	case types.ExprIdent:
		return env.Ident(expr.Text)
	case types.ExprUnary:
		return evalUnary(expr, env)
	case types.ExprBinary:
		return evalBinary(expr, env)
	case types.ExprCall:
		return evalCall(expr, env)
	default:
		return None, &EvalError{Code: CodeMalformed, Name: string(expr.Kind)}
	}
}

// EvalBool evaluates expr and converts the result to a condition.
func EvalBool(expr *types.Expr, env Env) (bool, error) {
	v, err := Eval(expr, env)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// EvalNumber evaluates expr and requires a numeric result.
func EvalNumber(expr *types.Expr, env Env) (float64, error) {
	v, err := Eval(expr, env)
	if err != nil {
		return 0, err
	}
	n, ok := v.Number()
	if !ok {
		return 0, Mismatch("value", "expected number, got "+v.Kind.String())
	}
	return n, nil
}

func evalUnary(expr *types.Expr, env Env) (Value, error) {
	v, err := Eval(expr.Left, env)
	if err != nil {
		return None, err
	}
	switch expr.Op {
	case "!":
		return Bool(!v.Truthy()), nil
	case "-":
		n, ok := v.Number()
		if !ok {
			return None, Mismatch("-", "cannot negate "+v.Kind.String())
		}
		return Num(-n), nil
	default:
		return None, &EvalError{Code: CodeMalformed, Name: expr.Op}
	}
}

func evalBinary(expr *types.Expr, env Env) (Value, error) {
	left, err := Eval(expr.Left, env)
	if err != nil {
		return None, err
	}

	// Short-circuit before touching the right operand.
	switch expr.Op {
	case "&&":
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := Eval(expr.Right, env)
		if err != nil {
			return None, err
		}
		return Bool(right.Truthy()), nil
	case "||":
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := Eval(expr.Right, env)
		if err != nil {
			return None, err
		}
		return Bool(right.Truthy()), nil
	}

	right, err := Eval(expr.Right, env)
	if err != nil {
		return None, err
	}

	switch expr.Op {
	case "==", "!=":
		eq, err := equal(left, right)
		if err != nil {
			return None, err
		}
		if expr.Op == "!=" {
			if left.Kind == KindNone || right.Kind == KindNone {
				return Bool(false), nil
			}
			return Bool(!eq), nil
		}
		return Bool(eq), nil
	case "<", "<=", ">", ">=":
		if left.Kind == KindNone || right.Kind == KindNone {
			return Bool(false), nil
		}
		a, b, err := numbers(expr.Op, left, right)
		if err != nil {
			return None, err
		}
		switch expr.Op {
		case "<":
			return Bool(a < b), nil
		case "<=":
			return Bool(a <= b), nil
		case ">":
			return Bool(a > b), nil
		default:
			return Bool(a >= b), nil
		}
	case "+", "-", "*", "/":
		a, b, err := numbers(expr.Op, left, right)
		if err != nil {
			return None, err
		}
		switch expr.Op {
		case "+":
			return Num(a + b), nil
		case "-":
			return Num(a - b), nil
		case "*":
			return Num(a * b), nil
		default:
			// Division by zero leaves the left operand unchanged.
			if b == 0 {
				return Num(a), nil
			}
			return Num(a / b), nil
		}
	default:
		return None, &EvalError{Code: CodeMalformed, Name: expr.Op}
	}
}

// equal compares two values of the same kind. Absent values are never
// equal to anything. Comparing a string with a number is a mismatch.
func equal(a, b Value) (bool, error) {
	if a.Kind == KindNone || b.Kind == KindNone {
		return false, nil
	}
	if a.Kind != b.Kind {
		if a.Kind == KindString || b.Kind == KindString {
			return false, Mismatch("==", "cannot compare "+a.Kind.String()+" with "+b.Kind.String())
		}
		x, _ := a.Number()
		y, _ := b.Number()
		return x == y, nil
	}
	switch a.Kind {
	case KindBool:
		return a.B == b.B, nil
	case KindNumber:
		return a.N == b.N, nil
	default:
		return a.S == b.S, nil
	}
}

func numbers(op string, a, b Value) (float64, float64, error) {
	x, ok := a.Number()
	if !ok {
		return 0, 0, Mismatch(op, "left operand is "+a.Kind.String())
	}
	y, ok := b.Number()
	if !ok {
		return 0, 0, Mismatch(op, "right operand is "+b.Kind.String())
	}
	return x, y, nil
}

func evalCall(expr *types.Expr, env Env) (Value, error) {
	args := make([]Value, 0, len(expr.Args))
	for _, a := range expr.Args {
		v, err := Eval(a, env)
		if err != nil {
			return None, err
		}
		args = append(args, v)
	}
	if fn, ok := pure[expr.Text]; ok {
		return fn(expr.Text, args)
	}
	return env.Call(expr.Text, args)
}

// pure holds the functions that need no context.
var pure = map[string]func(name string, args []Value) (Value, error){
	"min":   fold(math.Min),
	"max":   fold(math.Max),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"abs":   unary(math.Abs),
	"pow": func(name string, args []Value) (Value, error) {
		if len(args) != 2 {
			return None, Arity(name, 2, len(args))
		}
		a, b, err := numbers(name, args[0], args[1])
		if err != nil {
			return None, err
		}
		return Num(math.Pow(a, b)), nil
	},
}

func unary(f func(float64) float64) func(string, []Value) (Value, error) {
	return func(name string, args []Value) (Value, error) {
		if len(args) != 1 {
			return None, Arity(name, 1, len(args))
		}
		n, ok := args[0].Number()
		if !ok {
			return None, Mismatch(name, "expected number")
		}
		return Num(f(n)), nil
	}
}

func fold(f func(a, b float64) float64) func(string, []Value) (Value, error) {
	return func(name string, args []Value) (Value, error) {
		if len(args) == 0 {
			return None, Arity(name, 1, 0)
		}
		acc, ok := args[0].Number()
		if !ok {
			return None, Mismatch(name, "expected number")
		}
		for _, a := range args[1:] {
			n, ok := a.Number()
			if !ok {
				return None, Mismatch(name, "expected number")
			}
			acc = f(acc, n)
		}
		return Num(acc), nil
	}
}
