package eval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OranPie/rulatro/types"
)

func num(n float64) *types.Expr  { return &types.Expr{Kind: types.ExprNumber, Number: n} }
func str(s string) *types.Expr   { return &types.Expr{Kind: types.ExprString, Text: s} }
func ident(s string) *types.Expr { return &types.Expr{Kind: types.ExprIdent, Text: s} }
func bin(op string, l, r *types.Expr) *types.Expr {
	return &types.Expr{Kind: types.ExprBinary, Op: op, Left: l, Right: r}
}
func not(e *types.Expr) *types.Expr { return &types.Expr{Kind: types.ExprUnary, Op: "!", Left: e} }
func call(name string, args ...*types.Expr) *types.Expr {
	return &types.Expr{Kind: types.ExprCall, Text: name, Args: args}
}

// fakeEnv records calls so tests can check evaluation order.
type fakeEnv struct {
	idents map[string]Value
	calls  []string
}

func (f *fakeEnv) Ident(name string) (Value, error) {
	if v, ok := f.idents[name]; ok {
		return v, nil
	}
	return None, Unbound(name)
}

func (f *fakeEnv) Call(name string, args []Value) (Value, error) {
	f.calls = append(f.calls, name)
	switch name {
	case "yes":
		return Bool(true), nil
	case "no":
		return Bool(false), nil
	case "absent":
		return None, nil
	}
	return None, UnknownFunc(name)
}

func newEnv() *fakeEnv {
	return &fakeEnv{idents: map[string]Value{
		"hand":       Str("Pair"),
		"hands_left": Int(2),
		"money":      Int(10),
		"is_boss":    Bool(true),
	}}
}

func TestEval_Precedence(t *testing.T) {
	// 2 + 3 * 4 parsed as 2 + (3 * 4)
	v, err := Eval(bin("+", num(2), bin("*", num(3), num(4))), newEnv())
	require.NoError(t, err)
	assert.Equal(t, 14.0, v.N)
}

func TestEval_Comparisons(t *testing.T) {
	env := newEnv()
	tests := []struct {
		name string
		expr *types.Expr
		want bool
	}{
		{"lt", bin("<", ident("hands_left"), num(3)), true},
		{"ge", bin(">=", ident("money"), num(10)), true},
		{"gt", bin(">", ident("money"), num(10)), false},
		{"string eq case-insensitive", bin("==", ident("hand"), str("PAIR")), true},
		{"string ne", bin("!=", ident("hand"), str("flush")), true},
		{"bool eq", bin("==", ident("is_boss"), &types.Expr{Kind: types.ExprBool, Bool: true}), true},
		{"not", not(ident("is_boss")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalBool(tt.expr, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_DivisionByZeroKeepsLeft(t *testing.T) {
	v, err := Eval(bin("/", num(7), num(0)), newEnv())
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.N)
}

func TestEval_UnknownIdentifier(t *testing.T) {
	_, err := Eval(ident("card.rank"), newEnv())
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, CodeUnbound, ee.Code)
	assert.Equal(t, "card.rank", ee.Name)
}

func TestEval_UnknownFunction(t *testing.T) {
	_, err := Eval(call("frobnicate"), newEnv())
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, CodeUnknownFunc, ee.Code)
}

func TestEval_TypeMismatch(t *testing.T) {
	_, err := Eval(bin("==", ident("hand"), num(1)), newEnv())
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, CodeTypeMismatch, ee.Code)

	_, err = Eval(bin("+", ident("hand"), num(1)), newEnv())
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, CodeTypeMismatch, ee.Code)
}

func TestEval_ShortCircuitAnd(t *testing.T) {
	env := newEnv()
	got, err := EvalBool(bin("&&", call("no"), call("yes")), env)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, []string{"no"}, env.calls)
}

func TestEval_ShortCircuitOr(t *testing.T) {
	env := newEnv()
	got, err := EvalBool(bin("||", call("yes"), ident("card.rank")), env)
	require.NoError(t, err, "right side must not be evaluated")
	assert.True(t, got)
	assert.Equal(t, []string{"yes"}, env.calls)
}

func TestEval_ArgumentsLeftToRight(t *testing.T) {
	env := newEnv()
	_, err := Eval(call("max", call("yes"), call("no"), call("absent")), env)
	require.NoError(t, err)
	assert.Equal(t, []string{"yes", "no", "absent"}, env.calls)
}

func TestEval_AbsentComparesFalse(t *testing.T) {
	env := newEnv()
	for _, op := range []string{"==", "!=", "<", ">="} {
		got, err := EvalBool(bin(op, call("absent"), num(0)), env)
		require.NoError(t, err)
		assert.False(t, got, op)
	}
	// Absent counts as zero in arithmetic.
	v, err := Eval(bin("+", call("absent"), num(3)), env)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.N)
}

func TestEval_PureFunctions(t *testing.T) {
	env := newEnv()
	tests := []struct {
		expr *types.Expr
		want float64
	}{
		{call("min", num(3), num(1), num(2)), 1},
		{call("max", num(3), num(5)), 5},
		{call("floor", num(2.7)), 2},
		{call("ceil", num(2.1)), 3},
		{call("abs", num(-4)), 4},
		{call("pow", num(2), num(3)), 8},
	}
	for _, tt := range tests {
		v, err := Eval(tt.expr, env)
		require.NoError(t, err, tt.expr.Text)
		assert.Equal(t, tt.want, v.N, tt.expr.Text)
	}
	_, err := Eval(call("pow", num(2)), env)
	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, CodeArity, ee.Code)
}

func TestEval_NilExpr(t *testing.T) {
	_, err := Eval(nil, newEnv())
	assert.Error(t, err)
}

func TestValue_Truthy(t *testing.T) {
	assert.True(t, Num(2).Truthy())
	assert.False(t, Num(0).Truthy())
	assert.True(t, Str("x").Truthy())
	assert.False(t, None.Truthy())
	assert.Equal(t, "pair", Str("Pair").S)
}
