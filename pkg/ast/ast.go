package ast

type NodeType string

const (
	NodeIdentifier            NodeType = "Identifier"
	NodeNumberLiteral         NodeType = "NumberLiteral"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeNullLiteral           NodeType = "NullLiteral"
	NodeUndefinedLiteral      NodeType = "UndefinedLiteral"
	NodeArrayLiteral          NodeType = "ArrayLiteral"
	NodeObjectLiteral         NodeType = "ObjectLiteral"
	NodeProperty              NodeType = "Property"
	NodeFunctionLiteral       NodeType = "FunctionLiteral"
	NodeUnaryExpression       NodeType = "UnaryExpression"
	NodeUpdateExpression      NodeType = "UpdateExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeAssignmentExpression  NodeType = "AssignmentExpression"
	NodeConditionalExpression NodeType = "ConditionalExpression"
	NodeCallExpression        NodeType = "CallExpression"
	NodeMemberExpression      NodeType = "MemberExpression"
	NodeSequenceExpression    NodeType = "SequenceExpression"
	NodeThisExpression        NodeType = "ThisExpression"
	NodeYieldExpression       NodeType = "YieldExpression"
	NodeProgram               NodeType = "Program"
	NodeExpressionStatement   NodeType = "ExpressionStatement"
	NodeVariableDeclaration   NodeType = "VariableDeclaration"
	NodeVariableDeclarator    NodeType = "VariableDeclarator"
	NodeFunctionDeclaration   NodeType = "FunctionDeclaration"
	NodeBlockStatement        NodeType = "BlockStatement"
	NodeIfStatement           NodeType = "IfStatement"
	NodeWhileStatement        NodeType = "WhileStatement"
	NodeDoWhileStatement      NodeType = "DoWhileStatement"
	NodeForStatement          NodeType = "ForStatement"
	NodeForInStatement        NodeType = "ForInStatement"
	NodeReturnStatement       NodeType = "ReturnStatement"
	NodeBreakStatement        NodeType = "BreakStatement"
	NodeContinueStatement     NodeType = "ContinueStatement"
	NodeThrowStatement        NodeType = "ThrowStatement"
	NodeTryStatement          NodeType = "TryStatement"
	NodeCatchClause           NodeType = "CatchClause"
	NodeSwitchStatement       NodeType = "SwitchStatement"
	NodeSwitchCase            NodeType = "SwitchCase"
	NodeLabeledStatement      NodeType = "LabeledStatement"
	NodeEmptyStatement        NodeType = "EmptyStatement"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	At   Span     `json:"span"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.At }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	Name string
}

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Value float64
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Value string
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Value bool
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
}

type UndefinedLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Elements []Expression
}

// Property is one key/value entry of an object literal. Keys are always
// stored as strings; numeric keys are normalized by the parser.
type Property struct {
	nodeImpl
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Properties []*Property
}

type FunctionLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	Name      *Identifier // nil for anonymous functions
	Params    []*Identifier
	Body      *BlockStatement
	Generator bool
	Arrow     bool // arrow functions resolve this lexically
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Operator string // "-", "+", "!", "~", "typeof", "void", "delete"
	Operand  Expression
}

type UpdateExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Operator string // "++" or "--"
	Operand  Expression
	Prefix   bool
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Operator string
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Operator string // "=", "+=", "-=", "*=", "/=", "%="
	Target   Expression
	Value    Expression
}

type ConditionalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Callee    Expression
	Arguments []Expression
}

type MemberExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Object   Expression
	Property Expression // Identifier when !Computed, arbitrary expression otherwise
	Computed bool
}

type SequenceExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Expressions []Expression
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

type YieldExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	Argument Expression // nil yields undefined
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// Program is the root node produced by the parser. Source retains the raw
// text so diagnostics can quote the offending line.
type Program struct {
	nodeImpl
	Body   []Statement
	Source string
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker
	Expression Expression
}

type VariableDeclarator struct {
	nodeImpl
	Name *Identifier
	Init Expression // nil binds undefined
}

type VariableDeclaration struct {
	nodeImpl
	statementMarker
	Kind         string // "var", "let", "const"
	Declarations []*VariableDeclarator
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker
	Function *FunctionLiteral
}

type BlockStatement struct {
	nodeImpl
	statementMarker
	Body []Statement
}

type IfStatement struct {
	nodeImpl
	statementMarker
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil when no else branch
}

type WhileStatement struct {
	nodeImpl
	statementMarker
	Test Expression
	Body Statement
}

type DoWhileStatement struct {
	nodeImpl
	statementMarker
	Body Statement
	Test Expression
}

type ForStatement struct {
	nodeImpl
	statementMarker
	Init   Statement // VariableDeclaration or ExpressionStatement, may be nil
	Test   Expression
	Update Expression
	Body   Statement
}

type ForInStatement struct {
	nodeImpl
	statementMarker
	Kind   string // declaration kind, "" when iterating an existing binding
	Name   *Identifier
	Of     bool // for-of iterates values, for-in iterates keys
	Object Expression
	Body   Statement
}

type ReturnStatement struct {
	nodeImpl
	statementMarker
	Argument Expression // nil returns undefined
}

type BreakStatement struct {
	nodeImpl
	statementMarker
	Label string
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
	Label string
}

type ThrowStatement struct {
	nodeImpl
	statementMarker
	Argument Expression
}

type CatchClause struct {
	nodeImpl
	Param *Identifier // nil for a bare catch
	Body  *BlockStatement
}

type TryStatement struct {
	nodeImpl
	statementMarker
	Block     *BlockStatement
	Handler   *CatchClause
	Finalizer *BlockStatement
}

type SwitchCase struct {
	nodeImpl
	Test Expression // nil marks the default clause
	Body []Statement
}

type SwitchStatement struct {
	nodeImpl
	statementMarker
	Discriminant Expression
	Cases        []*SwitchCase
}

type LabeledStatement struct {
	nodeImpl
	statementMarker
	Label string
	Body  Statement
}

type EmptyStatement struct {
	nodeImpl
	statementMarker
}
