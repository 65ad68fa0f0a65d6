package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinyjs/interpreter-go/pkg/ast"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := ParseProgram([]byte(source))
	require.NoError(t, err)
	return program
}

func onlyStatement(t *testing.T, source string) ast.Statement {
	t.Helper()
	program := parse(t, source)
	require.Len(t, program.Body, 1)
	return program.Body[0]
}

func onlyExpression(t *testing.T, source string) ast.Expression {
	t.Helper()
	stmt, ok := onlyStatement(t, source).(*ast.ExpressionStatement)
	require.True(t, ok, "expected an expression statement, got %T", onlyStatement(t, source))
	return stmt.Expression
}

func TestParseLiterals(t *testing.T) {
	num, ok := onlyExpression(t, "42;").(*ast.NumberLiteral)
	require.True(t, ok)
	require.Equal(t, 42.0, num.Value)

	hex, ok := onlyExpression(t, "0xff;").(*ast.NumberLiteral)
	require.True(t, ok)
	require.Equal(t, 255.0, hex.Value)

	sep, ok := onlyExpression(t, "1_000_000;").(*ast.NumberLiteral)
	require.True(t, ok)
	require.Equal(t, 1000000.0, sep.Value)

	str, ok := onlyExpression(t, `"a\nbA";`).(*ast.StringLiteral)
	require.True(t, ok)
	require.Equal(t, "a\nbA", str.Value)

	boolean, ok := onlyExpression(t, "true;").(*ast.BooleanLiteral)
	require.True(t, ok)
	require.True(t, boolean.Value)

	_, ok = onlyExpression(t, "null;").(*ast.NullLiteral)
	require.True(t, ok)

	_, ok = onlyExpression(t, "undefined;").(*ast.UndefinedLiteral)
	require.True(t, ok)
}

func TestParseTemplateStringWithoutSubstitution(t *testing.T) {
	str, ok := onlyExpression(t, "`plain text`;").(*ast.StringLiteral)
	require.True(t, ok)
	require.Equal(t, "plain text", str.Value)

	_, err := ParseProgram([]byte("`x = ${x}`;"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "template substitutions")
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	arr, ok := onlyExpression(t, "[1, \"two\", [3]];").(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
	require.IsType(t, &ast.ArrayLiteral{}, arr.Elements[2])

	obj, ok := onlyExpression(t, `({ a: 1, "b": 2, 3: c, d });`).(*ast.ObjectLiteral)
	require.True(t, ok)
	require.Len(t, obj.Properties, 4)
	require.Equal(t, "a", obj.Properties[0].Key)
	require.Equal(t, "b", obj.Properties[1].Key)
	require.Equal(t, "3", obj.Properties[2].Key)
	// shorthand { d } expands to d: d
	require.Equal(t, "d", obj.Properties[3].Key)
	shorthand, ok := obj.Properties[3].Value.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "d", shorthand.Name)
}

func TestParseVariableDeclarations(t *testing.T) {
	decl, ok := onlyStatement(t, "let x = 1, y;").(*ast.VariableDeclaration)
	require.True(t, ok)
	require.Equal(t, "let", decl.Kind)
	require.Len(t, decl.Declarations, 2)
	require.Equal(t, "x", decl.Declarations[0].Name.Name)
	require.NotNil(t, decl.Declarations[0].Init)
	require.Equal(t, "y", decl.Declarations[1].Name.Name)
	require.Nil(t, decl.Declarations[1].Init)

	constDecl, ok := onlyStatement(t, "const pi = 3.14;").(*ast.VariableDeclaration)
	require.True(t, ok)
	require.Equal(t, "const", constDecl.Kind)

	varDecl, ok := onlyStatement(t, "var old = true;").(*ast.VariableDeclaration)
	require.True(t, ok)
	require.Equal(t, "var", varDecl.Kind)
}

func TestParseFunctionForms(t *testing.T) {
	decl, ok := onlyStatement(t, "function add(a, b) { return a + b; }").(*ast.FunctionDeclaration)
	require.True(t, ok)
	require.Equal(t, "add", decl.Function.Name.Name)
	require.Len(t, decl.Function.Params, 2)
	require.False(t, decl.Function.Generator)
	require.False(t, decl.Function.Arrow)

	gen, ok := onlyStatement(t, "function* gen() { yield 1; }").(*ast.FunctionDeclaration)
	require.True(t, ok)
	require.True(t, gen.Function.Generator)

	expr, ok := onlyExpression(t, "(function named() {});").(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Equal(t, "named", expr.Name.Name)
}

func TestParseArrowFunctions(t *testing.T) {
	arrow, ok := onlyExpression(t, "(x) => x * 2;").(*ast.FunctionLiteral)
	require.True(t, ok)
	require.True(t, arrow.Arrow)
	require.Len(t, arrow.Params, 1)
	// an expression body desugars to a single return
	require.Len(t, arrow.Body.Body, 1)
	require.IsType(t, &ast.ReturnStatement{}, arrow.Body.Body[0])

	bare, ok := onlyExpression(t, "x => x;").(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Len(t, bare.Params, 1)
	require.Equal(t, "x", bare.Params[0].Name)

	block, ok := onlyExpression(t, "() => { return 1; };").(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Empty(t, block.Params)
	require.Len(t, block.Body.Body, 1)
}

func TestParseOperatorExpressions(t *testing.T) {
	bin, ok := onlyExpression(t, "1 + 2 * 3;").(*ast.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, "+", bin.Operator)
	right, ok := bin.Right.(*ast.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, "*", right.Operator)

	unary, ok := onlyExpression(t, "typeof x;").(*ast.UnaryExpression)
	require.True(t, ok)
	require.Equal(t, "typeof", unary.Operator)

	update, ok := onlyExpression(t, "i++;").(*ast.UpdateExpression)
	require.True(t, ok)
	require.Equal(t, "++", update.Operator)
	require.False(t, update.Prefix)

	prefix, ok := onlyExpression(t, "--i;").(*ast.UpdateExpression)
	require.True(t, ok)
	require.True(t, prefix.Prefix)

	cond, ok := onlyExpression(t, "a ? b : c;").(*ast.ConditionalExpression)
	require.True(t, ok)
	require.IsType(t, &ast.Identifier{}, cond.Test)

	seq, ok := onlyExpression(t, "a, b, c;").(*ast.SequenceExpression)
	require.True(t, ok)
	require.Len(t, seq.Expressions, 3)
}

func TestParseAssignmentForms(t *testing.T) {
	assign, ok := onlyExpression(t, "x = 1;").(*ast.AssignmentExpression)
	require.True(t, ok)
	require.Equal(t, "=", assign.Operator)

	for _, op := range []string{"+=", "-=", "*=", "/=", "%=", "&&=", "||=", "??="} {
		compound, ok := onlyExpression(t, "x "+op+" 1;").(*ast.AssignmentExpression)
		require.True(t, ok, "operator %s", op)
		require.Equal(t, op, compound.Operator)
	}
}

func TestParseMemberAndCallExpressions(t *testing.T) {
	member, ok := onlyExpression(t, "obj.field;").(*ast.MemberExpression)
	require.True(t, ok)
	require.False(t, member.Computed)
	prop, ok := member.Property.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "field", prop.Name)

	index, ok := onlyExpression(t, "arr[0];").(*ast.MemberExpression)
	require.True(t, ok)
	require.True(t, index.Computed)

	call, ok := onlyExpression(t, "f(1, g(2));").(*ast.CallExpression)
	require.True(t, ok)
	require.Len(t, call.Arguments, 2)
	require.IsType(t, &ast.CallExpression{}, call.Arguments[1])

	// new X(...) lowers to an ordinary call
	ctor, ok := onlyExpression(t, "new Error(\"boom\");").(*ast.CallExpression)
	require.True(t, ok)
	require.Len(t, ctor.Arguments, 1)
}

func TestParseControlFlowStatements(t *testing.T) {
	ifStmt, ok := onlyStatement(t, "if (x) { a(); } else if (y) { b(); }").(*ast.IfStatement)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Alternate)
	require.IsType(t, &ast.IfStatement{}, ifStmt.Alternate)

	while, ok := onlyStatement(t, "while (x) { x--; }").(*ast.WhileStatement)
	require.True(t, ok)
	require.NotNil(t, while.Test)

	doWhile, ok := onlyStatement(t, "do { x--; } while (x);").(*ast.DoWhileStatement)
	require.True(t, ok)
	require.NotNil(t, doWhile.Test)

	forStmt, ok := onlyStatement(t, "for (let i = 0; i < 3; i++) {}").(*ast.ForStatement)
	require.True(t, ok)
	require.IsType(t, &ast.VariableDeclaration{}, forStmt.Init)
	require.NotNil(t, forStmt.Test)
	require.NotNil(t, forStmt.Update)

	bare, ok := onlyStatement(t, "for (;;) { break; }").(*ast.ForStatement)
	require.True(t, ok)
	require.Nil(t, bare.Init)
	require.Nil(t, bare.Test)
	require.Nil(t, bare.Update)
}

func TestParseForInAndForOf(t *testing.T) {
	forOf, ok := onlyStatement(t, "for (const item of list) {}").(*ast.ForInStatement)
	require.True(t, ok)
	require.True(t, forOf.Of)
	require.Equal(t, "const", forOf.Kind)
	require.Equal(t, "item", forOf.Name.Name)

	forIn, ok := onlyStatement(t, "for (let key in obj) {}").(*ast.ForInStatement)
	require.True(t, ok)
	require.False(t, forIn.Of)
	require.Equal(t, "let", forIn.Kind)

	existing, ok := onlyStatement(t, "for (k in obj) {}").(*ast.ForInStatement)
	require.True(t, ok)
	require.Equal(t, "", existing.Kind)
}

func TestParseTrySwitchAndLabels(t *testing.T) {
	try, ok := onlyStatement(t, "try { risky(); } catch (e) { log(e); } finally { done(); }").(*ast.TryStatement)
	require.True(t, ok)
	require.NotNil(t, try.Handler)
	require.Equal(t, "e", try.Handler.Param.Name)
	require.NotNil(t, try.Finalizer)

	bareCatch, ok := onlyStatement(t, "try { f(); } catch { g(); }").(*ast.TryStatement)
	require.True(t, ok)
	require.NotNil(t, bareCatch.Handler)
	require.Nil(t, bareCatch.Handler.Param)

	sw, ok := onlyStatement(t, "switch (x) { case 1: a(); break; default: b(); }").(*ast.SwitchStatement)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	require.NotNil(t, sw.Cases[0].Test)
	require.Nil(t, sw.Cases[1].Test)

	labeled, ok := onlyStatement(t, "outer: while (x) { break outer; }").(*ast.LabeledStatement)
	require.True(t, ok)
	require.Equal(t, "outer", labeled.Label)
	body, ok := labeled.Body.(*ast.WhileStatement)
	require.True(t, ok)
	brk, ok := body.Body.(*ast.BlockStatement).Body[0].(*ast.BreakStatement)
	require.True(t, ok)
	require.Equal(t, "outer", brk.Label)
}

func TestParseYieldExpressions(t *testing.T) {
	program := parse(t, "function* g() { let x = yield 1; yield; }")
	decl := program.Body[0].(*ast.FunctionDeclaration)
	body := decl.Function.Body.Body

	first := body[0].(*ast.VariableDeclaration)
	y, ok := first.Declarations[0].Init.(*ast.YieldExpression)
	require.True(t, ok)
	require.NotNil(t, y.Argument)

	second := body[1].(*ast.ExpressionStatement)
	bare, ok := second.Expression.(*ast.YieldExpression)
	require.True(t, ok)
	require.Nil(t, bare.Argument)

	_, err := ParseProgram([]byte("function* g() { yield* other(); }"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "delegation")
}

func TestParseSpans(t *testing.T) {
	program := parse(t, "let x = 1;\nlet y = 2;")
	require.Len(t, program.Body, 2)
	require.Equal(t, 1, program.Body[0].Span().Line)
	require.Equal(t, 2, program.Body[1].Span().Line)
	require.Equal(t, 1, program.Body[1].Span().Column)
}

func TestParseSyntaxErrorsArePositioned(t *testing.T) {
	_, err := ParseProgram([]byte("let x = ;"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "syntax error")
	require.Contains(t, err.Error(), "line 1")

	_, err = ParseProgram([]byte("function () {"))
	require.Error(t, err)
}

func TestParseCommentsAreIgnored(t *testing.T) {
	program := parse(t, "// leading\nlet x = 1; /* inline */ let y = 2;\n// trailing")
	require.Len(t, program.Body, 2)
}

func TestParserReuseAcrossPrograms(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	first, err := p.ParseProgram([]byte("1 + 1;"))
	require.NoError(t, err)
	require.Len(t, first.Body, 1)

	second, err := p.ParseProgram([]byte("let x = 2;"))
	require.NoError(t, err)
	require.Len(t, second.Body, 1)
	require.Equal(t, "let x = 2;", second.Source)
}
