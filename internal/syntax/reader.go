// Package syntax reads terms from a compact textual form.
//
// The form is a CUE expression, parsed with the CUE parser and then
// interpreted as a term:
//
//	Shape(vector(3, 4))
//	BinaryOperation(add, scalar(10), [3, 4])
//	Dim(array(2, "A"))
//
// Calls name a node kind (Shape, Index, ...) or one of the helpers below.
// Bare identifiers name free variables, except add and mul, which are fresh
// two-parameter functions, and _, which is an anonymous variable.
//
//	scalar(x)        Scalar(x)
//	vector(a, ...)   concrete vector; [a, ...] is the same
//	array(n, "A")    n-dimensional unbound array named A
//	unbound("x")     free variable x
package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"
	"github.com/cockroachdb/apd/v3"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
)

// Reader turns source text into terms. Functions it creates take their
// parameter names from clock, so read terms with the clock of the engine
// that will normalize them.
type Reader struct {
	clock *rewrite.Clock
}

// NewReader creates a reader drawing fresh names from clock.
func NewReader(clock *rewrite.Clock) *Reader {
	return &Reader{clock: clock}
}

// Error is a read error at a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// Parse reads a single term.
func (r *Reader) Parse(src string) (term.Term, error) {
	expr, err := parser.ParseExpr("term", src)
	if err != nil {
		return nil, fmt.Errorf("parse term: %w", err)
	}
	return r.read(expr)
}

// MustParse is like Parse but panics on error. Use in tests.
func (r *Reader) MustParse(src string) term.Term {
	t, err := r.Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func errorf(n ast.Node, format string, args ...any) error {
	return &Error{Pos: n.Pos(), Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) read(e ast.Expr) (term.Term, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return r.read(x.X)
	case *ast.BasicLit:
		return readLiteral(x, false)
	case *ast.UnaryExpr:
		lit, ok := x.X.(*ast.BasicLit)
		if !ok || (x.Op != token.SUB && x.Op != token.ADD) {
			return nil, errorf(x, "unsupported unary expression")
		}
		return readLiteral(lit, x.Op == token.SUB)
	case *ast.Ident:
		return r.readIdent(x), nil
	case *ast.ListLit:
		items, err := r.readAll(x.Elts)
		if err != nil {
			return nil, err
		}
		return moa.VectorOf(items...), nil
	case *ast.CallExpr:
		return r.readCall(x)
	default:
		return nil, errorf(e, "unsupported expression %T", e)
	}
}

func (r *Reader) readIdent(id *ast.Ident) term.Term {
	switch id.Name {
	case "_":
		return term.Unbound{}
	case "add":
		return moa.AddFunc(r.clock)
	case "mul":
		return moa.MulFunc(r.clock)
	default:
		return term.Unbound{Name: id.Name}
	}
}

func (r *Reader) readAll(exprs []ast.Expr) ([]term.Term, error) {
	out := make([]term.Term, len(exprs))
	for i, e := range exprs {
		t, err := r.read(e)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (r *Reader) readCall(c *ast.CallExpr) (term.Term, error) {
	fn, ok := c.Fun.(*ast.Ident)
	if !ok {
		return nil, errorf(c, "callee must be a name")
	}

	switch fn.Name {
	case "array":
		return readArray(c)
	case "unbound":
		return readUnbound(c)
	}

	args, err := r.readAll(c.Args)
	if err != nil {
		return nil, err
	}

	switch fn.Name {
	case "scalar":
		if len(args) != 1 {
			return nil, errorf(c, "scalar takes 1 argument, got %d", len(args))
		}
		return moa.Scalar(args[0]), nil
	case "vector":
		return moa.VectorOf(args...), nil
	case rewrite.FunctionKind.Name:
		return nil, errorf(c, "functions cannot be written directly; use add or mul")
	}

	kind, ok := moa.LookupKind(fn.Name)
	if !ok {
		return nil, errorf(fn, "unknown operation %q", fn.Name)
	}
	n, err := term.NewNode(kind, args...)
	if err != nil {
		return nil, errorf(c, "%v", err)
	}
	return n, nil
}

func readArray(c *ast.CallExpr) (term.Term, error) {
	if len(c.Args) != 2 {
		return nil, errorf(c, "array takes (dimensions, name)")
	}
	lit, ok := c.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return nil, errorf(c.Args[0], "array dimensions must be an integer literal")
	}
	n, err := strconv.Atoi(lit.Value)
	if err != nil {
		return nil, errorf(lit, "invalid dimensions %q", lit.Value)
	}
	name, err := stringArg(c.Args[1])
	if err != nil {
		return nil, err
	}
	return term.DimUnbound{N: n, Name: name}, nil
}

func readUnbound(c *ast.CallExpr) (term.Term, error) {
	switch len(c.Args) {
	case 0:
		return term.Unbound{}, nil
	case 1:
		name, err := stringArg(c.Args[0])
		if err != nil {
			return nil, err
		}
		return term.Unbound{Name: name}, nil
	default:
		return nil, errorf(c, "unbound takes at most one name")
	}
}

func stringArg(e ast.Expr) (string, error) {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", errorf(e, "expected a string literal")
	}
	s, err := literal.Unquote(lit.Value)
	if err != nil {
		return "", errorf(lit, "invalid string: %v", err)
	}
	return s, nil
}

func readLiteral(lit *ast.BasicLit, negate bool) (term.Term, error) {
	switch lit.Kind {
	case token.INT:
		digits := strings.ReplaceAll(lit.Value, "_", "")
		if negate {
			// The sign goes in before parsing so math.MinInt64 stays in range
			digits = "-" + digits
		}
		v, err := strconv.ParseInt(digits, 0, 64)
		if err != nil {
			return nil, errorf(lit, "invalid integer %s", digits)
		}
		return term.Int(v), nil
	case token.FLOAT:
		d, _, err := apd.NewFromString(strings.ReplaceAll(lit.Value, "_", ""))
		if err != nil {
			return nil, errorf(lit, "invalid decimal %s", lit.Value)
		}
		if negate {
			d.Neg(d)
		}
		return term.Value{V: d}, nil
	case token.STRING:
		if negate {
			return nil, errorf(lit, "cannot negate a string")
		}
		s, err := literal.Unquote(lit.Value)
		if err != nil {
			return nil, errorf(lit, "invalid string: %v", err)
		}
		return term.Value{V: s}, nil
	default:
		return nil, errorf(lit, "unsupported literal %s", lit.Value)
	}
}
