package ast

// Constructors used by the parser and heavily by tests. They intentionally
// leave spans unset; the parser stamps positions with WithSpan.

func ID(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

func Num(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

func Str(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

func Bool(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

func Null() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

func Undefined() *UndefinedLiteral {
	return &UndefinedLiteral{nodeImpl: newNodeImpl(NodeUndefinedLiteral)}
}

func Arr(elements ...Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

func Prop(key string, value Expression) *Property {
	return &Property{nodeImpl: newNodeImpl(NodeProperty), Key: key, Value: value}
}

func Obj(props ...*Property) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: props}
}

func Fn(name *Identifier, params []*Identifier, body *BlockStatement) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Name: name, Params: params, Body: body}
}

func GenFn(name *Identifier, params []*Identifier, body *BlockStatement) *FunctionLiteral {
	fn := Fn(name, params, body)
	fn.Generator = true
	return fn
}

func Arrow(params []*Identifier, body *BlockStatement) *FunctionLiteral {
	fn := Fn(nil, params, body)
	fn.Arrow = true
	return fn
}

func Unary(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

func Update(operator string, operand Expression, prefix bool) *UpdateExpression {
	return &UpdateExpression{nodeImpl: newNodeImpl(NodeUpdateExpression), Operator: operator, Operand: operand, Prefix: prefix}
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

func Assign(target Expression, value Expression) *AssignmentExpression {
	return AssignOp("=", target, value)
}

func AssignOp(operator string, target Expression, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Target: target, Value: value}
}

func Cond(test, consequent, alternate Expression) *ConditionalExpression {
	return &ConditionalExpression{nodeImpl: newNodeImpl(NodeConditionalExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

func Member(object Expression, name string) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: ID(name)}
}

func Index(object, index Expression) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: index, Computed: true}
}

func Seq(exprs ...Expression) *SequenceExpression {
	return &SequenceExpression{nodeImpl: newNodeImpl(NodeSequenceExpression), Expressions: exprs}
}

func This() *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression)}
}

func Yield(argument Expression) *YieldExpression {
	return &YieldExpression{nodeImpl: newNodeImpl(NodeYieldExpression), Argument: argument}
}

func Prog(body ...Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

func ExprStmt(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

func Declarator(name string, init Expression) *VariableDeclarator {
	return &VariableDeclarator{nodeImpl: newNodeImpl(NodeVariableDeclarator), Name: ID(name), Init: init}
}

func Decl(kind string, declarators ...*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Kind: kind, Declarations: declarators}
}

// Let is shorthand for the common single-declarator case in tests.
func Let(name string, init Expression) *VariableDeclaration {
	return Decl("let", Declarator(name, init))
}

func Var(name string, init Expression) *VariableDeclaration {
	return Decl("var", Declarator(name, init))
}

func Const(name string, init Expression) *VariableDeclaration {
	return Decl("const", Declarator(name, init))
}

func FnDecl(fn *FunctionLiteral) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Function: fn}
}

func Block(statements ...Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: statements}
}

func If(test Expression, consequent, alternate Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Test: test, Consequent: consequent, Alternate: alternate}
}

func While(test Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Test: test, Body: body}
}

func DoWhile(body Statement, test Expression) *DoWhileStatement {
	return &DoWhileStatement{nodeImpl: newNodeImpl(NodeDoWhileStatement), Body: body, Test: test}
}

func For(init Statement, test, update Expression, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Test: test, Update: update, Body: body}
}

func ForIn(kind, name string, object Expression, body Statement) *ForInStatement {
	return &ForInStatement{nodeImpl: newNodeImpl(NodeForInStatement), Kind: kind, Name: ID(name), Object: object, Body: body}
}

func ForOf(kind, name string, object Expression, body Statement) *ForInStatement {
	stmt := ForIn(kind, name, object, body)
	stmt.Of = true
	return stmt
}

func Ret(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

func Brk(label string) *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement), Label: label}
}

func Cont(label string) *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement), Label: label}
}

func Throw(argument Expression) *ThrowStatement {
	return &ThrowStatement{nodeImpl: newNodeImpl(NodeThrowStatement), Argument: argument}
}

func Catch(param string, body *BlockStatement) *CatchClause {
	clause := &CatchClause{nodeImpl: newNodeImpl(NodeCatchClause), Body: body}
	if param != "" {
		clause.Param = ID(param)
	}
	return clause
}

func Try(block *BlockStatement, handler *CatchClause, finalizer *BlockStatement) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Block: block, Handler: handler, Finalizer: finalizer}
}

func Case(test Expression, body ...Statement) *SwitchCase {
	return &SwitchCase{nodeImpl: newNodeImpl(NodeSwitchCase), Test: test, Body: body}
}

func Switch(discriminant Expression, cases ...*SwitchCase) *SwitchStatement {
	return &SwitchStatement{nodeImpl: newNodeImpl(NodeSwitchStatement), Discriminant: discriminant, Cases: cases}
}

func Label(label string, body Statement) *LabeledStatement {
	return &LabeledStatement{nodeImpl: newNodeImpl(NodeLabeledStatement), Label: label, Body: body}
}

func Empty() *EmptyStatement {
	return &EmptyStatement{nodeImpl: newNodeImpl(NodeEmptyStatement)}
}
