package loader

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OranPie/rulatro/types"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
	{Name: "Op", Pattern: `&&|\|\||==|!=|<=|>=|[-+*/<>!(),]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Grammar levels, loosest first: || then && then comparison, additive,
// multiplicative, unary, primary.

type orExpr struct {
	Left  *andExpr   `parser:"@@"`
	Right []*andExpr `parser:"( '||' @@ )*"`
}

type andExpr struct {
	Left  *cmpExpr   `parser:"@@"`
	Right []*cmpExpr `parser:"( '&&' @@ )*"`
}

type cmpExpr struct {
	Left  *addExpr `parser:"@@"`
	Op    string   `parser:"( @( '==' | '!=' | '<=' | '>=' | '<' | '>' )"`
	Right *addExpr `parser:"  @@ )?"`
}

type addExpr struct {
	Left *mulExpr `parser:"@@"`
	Tail []*addOp `parser:"@@*"`
}

type addOp struct {
	Op    string   `parser:"@( '+' | '-' )"`
	Right *mulExpr `parser:"@@"`
}

type mulExpr struct {
	Left *unaryExpr `parser:"@@"`
	Tail []*mulOp   `parser:"@@*"`
}

type mulOp struct {
	Op    string     `parser:"@( '*' | '/' )"`
	Right *unaryExpr `parser:"@@"`
}

type unaryExpr struct {
	Op      string      `parser:"  ( @( '!' | '-' )"`
	Operand *unaryExpr  `parser:"    @@ )"`
	Primary *primaryExp `parser:"| @@"`
}

type primaryExp struct {
	Number *float64  `parser:"  @Number"`
	String *string   `parser:"| @String"`
	Bool   *string   `parser:"| @( 'true' | 'false' )"`
	Call   *callExpr `parser:"| @@"`
	Ident  *string   `parser:"| @Ident"`
	Sub    *orExpr   `parser:"| '(' @@ ')'"`
}

type callExpr struct {
	Name string    `parser:"@Ident '('"`
	Args []*orExpr `parser:"( @@ ( ',' @@ )* )? ')'"`
}

var exprParser = participle.MustBuild[orExpr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseExpr parses condition or value text into an expression tree.
func ParseExpr(src string) (*types.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	return ast.expr(), nil
}

func binary(op string, l, r *types.Expr) *types.Expr {
	return &types.Expr{Kind: types.ExprBinary, Op: op, Left: l, Right: r}
}

func (o *orExpr) expr() *types.Expr {
	e := o.Left.expr()
	for _, r := range o.Right {
		e = binary("||", e, r.expr())
	}
	return e
}

func (a *andExpr) expr() *types.Expr {
	e := a.Left.expr()
	for _, r := range a.Right {
		e = binary("&&", e, r.expr())
	}
	return e
}

func (c *cmpExpr) expr() *types.Expr {
	if c.Right == nil {
		return c.Left.expr()
	}
	return binary(c.Op, c.Left.expr(), c.Right.expr())
}

func (a *addExpr) expr() *types.Expr {
	e := a.Left.expr()
	for _, t := range a.Tail {
		e = binary(t.Op, e, t.Right.expr())
	}
	return e
}

func (m *mulExpr) expr() *types.Expr {
	e := m.Left.expr()
	for _, t := range m.Tail {
		e = binary(t.Op, e, t.Right.expr())
	}
	return e
}

func (u *unaryExpr) expr() *types.Expr {
	if u.Primary != nil {
		return u.Primary.expr()
	}
	inner := u.Operand.expr()
	// fold negative literals
	if u.Op == "-" && inner.Kind == types.ExprNumber {
		return &types.Expr{Kind: types.ExprNumber, Number: -inner.Number}
	}
	return &types.Expr{Kind: types.ExprUnary, Op: u.Op, Left: inner}
}

func (p *primaryExp) expr() *types.Expr {
	switch {
	case p.Number != nil:
		return &types.Expr{Kind: types.ExprNumber, Number: *p.Number}
	case p.String != nil:
		s := *p.String
		return &types.Expr{Kind: types.ExprString, Text: s[1 : len(s)-1]}
	case p.Bool != nil:
		return &types.Expr{Kind: types.ExprBool, Bool: *p.Bool == "true"}
	case p.Call != nil:
		call := &types.Expr{Kind: types.ExprCall, Text: p.Call.Name}
		for _, a := range p.Call.Args {
			call.Args = append(call.Args, a.expr())
		}
		return call
	case p.Ident != nil:
		return &types.Expr{Kind: types.ExprIdent, Text: *p.Ident}
	default:
		return p.Sub.expr()
	}
}

// Number returns a literal expression.
func Number(n float64) *types.Expr {
	return &types.Expr{Kind: types.ExprNumber, Number: n}
}
