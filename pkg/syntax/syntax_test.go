package syntax

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	return f
}

func bindingNames(bs []*Binding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Name)
	}
	return out
}

func TestParseFixtureFunctions(t *testing.T) {
	f, err := ParseFile(context.Background(), filepath.Join("..", "..", "testdata", "js", "properties.js"))
	require.NoError(t, err)

	main := f.Function("main")
	require.NotNil(t, main)
	assert.False(t, main.IsTopLevel())
	assert.Equal(t, []string{"p"}, bindingNames(main.Params))
	assert.Equal(t, []string{"x", "y"}, bindingNames(main.Locals))
	assert.Equal(t, f.TopLevel, main.Parent)

	unknown := f.Free("unknown")
	require.NotNil(t, unknown)
	assert.Equal(t, KindFree, unknown.Kind)
	assert.False(t, unknown.Declared())
	assert.Len(t, unknown.Usages, 2)

	assert.NotNil(t, f.Free("bar"))
	assert.Nil(t, f.Free("p"))
	assert.Zero(t, f.Errors)
}

func TestResolveShadowing(t *testing.T) {
	f := parse(t, `
function outer() {
  let x = 1;
  {
    let x = 2;
    use(x);
  }
  use(x);
}`)
	fn := f.Function("outer")
	require.NotNil(t, fn)
	require.Len(t, fn.Locals, 2)
	inner, outerX := fn.Locals[1], fn.Locals[0]
	assert.NotEqual(t, inner.ID, outerX.ID)

	var reads []*Ident
	Inspect(&BlockStmt{List: fn.Body}, func(n Node) bool {
		if call, ok := n.(*CallExpr); ok {
			reads = append(reads, call.Args[0].(*Ident))
		}
		return true
	})
	require.Len(t, reads, 2)
	assert.Same(t, inner, reads[0].Binding)
	assert.Same(t, outerX, reads[1].Binding)
}

func TestResolveHoisting(t *testing.T) {
	f := parse(t, `
function h() {
  use(v);
  if (c) {
    var v = 1;
    function inner() {}
  }
  inner();
}`)
	fn := f.Function("h")
	require.NotNil(t, fn)
	assert.Equal(t, []string{"v", "inner"}, bindingNames(fn.Locals))

	v := fn.Locals[0]
	kinds := make([]UsageKind, 0, len(v.Usages))
	for _, u := range v.Usages {
		kinds = append(kinds, u.Kind)
	}
	assert.Equal(t, []UsageKind{UsageDeclaration, UsageRead}, kinds)
	assert.Equal(t, KindFunction, fn.Locals[1].Kind)
}

func TestResolveBuiltins(t *testing.T) {
	f := parse(t, `
var eval = 1;
function g() {
  arguments = [];
  return arguments.length;
}
const k = () => arguments;
`)
	top := f.TopLevel
	require.NotEmpty(t, top.Locals)
	assert.Equal(t, "eval", top.Locals[0].Name)
	assert.Equal(t, KindVar, top.Locals[0].Kind)
	assert.False(t, top.Locals[0].Builtin())

	var gArgs *Binding
	for _, b := range f.Bindings {
		if b.Name == "arguments" && b.Builtin() && len(b.Usages) == 2 {
			gArgs = b
		}
	}
	require.NotNil(t, gArgs)
	assert.True(t, gArgs.Usages[0].IsWrite())
	assert.False(t, gArgs.Usages[1].IsWrite())

	free := f.Free("arguments")
	assert.Nil(t, free, "top-level arguments is builtin, not free")
}

func TestParamsAndPatterns(t *testing.T) {
	f := parse(t, `
function d(a, {b, c: [e]}, f = 1, ...rest) {
  const {g, h = 2} = a;
  return g;
}`)
	fn := f.Function("d")
	require.NotNil(t, fn)
	assert.Equal(t, []string{"a", "b", "e", "f", "rest"}, bindingNames(fn.Params))
	assert.Equal(t, []string{"g", "h"}, bindingNames(fn.Locals))
	for _, b := range fn.Locals {
		assert.Equal(t, KindConst, b.Kind)
	}
}

func TestOperatorPositions(t *testing.T) {
	f := parse(t, "var c = true || false;\nvar t = a ? 1 : 2;\n")
	require.Len(t, f.TopLevel.Body, 2)

	first := f.TopLevel.Body[0].(*VarDecl).Decls[0].Init.(*LogicalExpr)
	assert.Equal(t, "||", first.Op)
	assert.Equal(t, Position{Line: 1, Column: 14, Offset: 13}, first.OpPos)

	second := f.TopLevel.Body[1].(*VarDecl).Decls[0].Init.(*ConditionalExpr)
	assert.Equal(t, 2, second.QuestionPos.Line)
	assert.Equal(t, 11, second.QuestionPos.Column)
}

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, e Expr)
	}{
		{
			name: "optional member",
			src:  "a?.b;",
			check: func(t *testing.T, e Expr) {
				m, ok := e.(*MemberExpr)
				require.True(t, ok)
				assert.True(t, m.Optional)
				assert.Equal(t, "a", m.Object.(*Ident).Name)
			},
		},
		{
			name: "plain member",
			src:  "a.b;",
			check: func(t *testing.T, e Expr) {
				m, ok := e.(*MemberExpr)
				require.True(t, ok)
				assert.False(t, m.Optional)
				assert.False(t, m.Computed)
				assert.Nil(t, m.Property.(*Ident).Binding)
			},
		},
		{
			name: "subscript",
			src:  "a[k];",
			check: func(t *testing.T, e Expr) {
				m, ok := e.(*MemberExpr)
				require.True(t, ok)
				assert.True(t, m.Computed)
				assert.NotNil(t, m.Property.(*Ident).Binding)
			},
		},
		{
			name: "strict inequality",
			src:  "x !== null;",
			check: func(t *testing.T, e Expr) {
				b, ok := e.(*BinaryExpr)
				require.True(t, ok)
				assert.Equal(t, "!==", b.Op)
				assert.True(t, IsNullish(b.Y))
			},
		},
		{
			name: "new expression",
			src:  "new Foo(1);",
			check: func(t *testing.T, e Expr) {
				c, ok := e.(*CallExpr)
				require.True(t, ok)
				assert.True(t, c.New)
				assert.Len(t, c.Args, 1)
			},
		},
		{
			name: "compound assignment",
			src:  "x += 1;",
			check: func(t *testing.T, e Expr) {
				a, ok := e.(*AssignExpr)
				require.True(t, ok)
				assert.Equal(t, "+=", a.Op)
				assert.Equal(t, UsageReadWrite, a.Target.(*Ident).Binding.Usages[0].Kind)
			},
		},
		{
			name: "arrow with expression body",
			src:  "(a) => a && b;",
			check: func(t *testing.T, e Expr) {
				fn, ok := e.(*FuncLit)
				require.True(t, ok)
				assert.True(t, fn.Arrow)
				assert.True(t, fn.ExprBody)
				require.Len(t, fn.Body.List, 1)
				ret, ok := fn.Body.List[0].(*ReturnStmt)
				require.True(t, ok)
				assert.IsType(t, &LogicalExpr{}, ret.Result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parse(t, tt.src)
			require.Len(t, f.TopLevel.Body, 1)
			stmt, ok := f.TopLevel.Body[0].(*ExprStmt)
			require.True(t, ok)
			tt.check(t, stmt.X)
		})
	}
}

func TestFunctionNames(t *testing.T) {
	f := parse(t, `
var named = function () {};
var obj = { method() {}, prop: () => 1 };
class K { run() {} }
(function () {})();
`)
	var names []string
	for _, fn := range f.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"<program>", "named", "method", "prop", "run", "<anonymous>"}, names)
}

func TestStatementShapes(t *testing.T) {
	f := parse(t, `
for (let i = 0; i < n; i++) {}
for (const k in obj) {}
for (v of list) {}
do { x(); } while (y);
outer: while (true) { break outer; }
switch (s) { case 1: a(); break; default: b(); }
try { t(); } catch (e) { c(e); } finally { d(); }
`)
	body := f.TopLevel.Body
	require.Len(t, body, 7)

	forStmt := body[0].(*ForStmt)
	assert.IsType(t, &VarDecl{}, forStmt.Init)
	assert.NotNil(t, forStmt.Test)
	assert.IsType(t, &UpdateExpr{}, forStmt.Update)

	forIn := body[1].(*ForInStmt)
	assert.False(t, forIn.Of)
	assert.Equal(t, DeclConst, forIn.Left.(*VarDecl).Kind)

	forOf := body[2].(*ForInStmt)
	assert.True(t, forOf.Of)
	assert.IsType(t, &Ident{}, forOf.Left)

	assert.IsType(t, &DoWhileStmt{}, body[3])

	labeled := body[4].(*LabeledStmt)
	assert.Equal(t, "outer", labeled.Label)

	sw := body[5].(*SwitchStmt)
	require.Len(t, sw.Cases, 2)
	assert.NotNil(t, sw.Cases[0].Test)
	assert.Len(t, sw.Cases[0].Body, 2)
	assert.Nil(t, sw.Cases[1].Test)

	try := body[6].(*TryStmt)
	assert.NotNil(t, try.Handler)
	assert.NotNil(t, try.Finally)
	param := try.Param.(*Ident)
	assert.Equal(t, KindCatch, param.Binding.Kind)
}

func TestUnmodeledStatement(t *testing.T) {
	f := parse(t, "with (o) { x = y; }")
	require.Len(t, f.TopLevel.Body, 1)
	bad, ok := f.TopLevel.Body[0].(*BadStmt)
	require.True(t, ok)
	assert.Equal(t, "with_statement", bad.Kind)

	var names []string
	for _, id := range bad.Idents {
		names = append(names, id.Name)
		assert.NotNil(t, id.Binding)
	}
	assert.Equal(t, []string{"o", "x", "y"}, names)
}
