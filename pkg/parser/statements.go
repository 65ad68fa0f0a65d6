package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"tinyjs/interpreter-go/pkg/ast"
)

func parseStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: nil statement node")
	}
	switch node.Kind() {
	case "expression_statement":
		expr, err := parseExpression(firstNamedChild(node), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.ExprStmt(expr), node), nil
	case "lexical_declaration", "variable_declaration":
		return parseVariableDeclaration(node, source)
	case "function_declaration", "generator_function_declaration":
		fn, err := parseFunctionLiteral(node, source)
		if err != nil {
			return nil, err
		}
		if fn.Name == nil {
			return nil, fmt.Errorf("parser: function declaration missing name")
		}
		return annotateStatement(ast.FnDecl(fn), node), nil
	case "statement_block":
		return parseBlock(node, source)
	case "if_statement":
		return parseIfStatement(node, source)
	case "while_statement":
		cond, err := parseParenthesizedCondition(node.ChildByFieldName("condition"), source)
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.While(cond, body), node), nil
	case "do_statement":
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		cond, err := parseParenthesizedCondition(node.ChildByFieldName("condition"), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.DoWhile(body, cond), node), nil
	case "for_statement":
		return parseForStatement(node, source)
	case "for_in_statement":
		return parseForInStatement(node, source)
	case "return_statement":
		var value ast.Expression
		if child := firstNamedChild(node); child != nil {
			expr, err := parseExpression(child, source)
			if err != nil {
				return nil, err
			}
			value = expr
		}
		return annotateStatement(ast.Ret(value), node), nil
	case "break_statement":
		label, err := optionalLabel(node.ChildByFieldName("label"), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.Brk(label), node), nil
	case "continue_statement":
		label, err := optionalLabel(node.ChildByFieldName("label"), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.Cont(label), node), nil
	case "throw_statement":
		expr, err := parseExpression(firstNamedChild(node), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.Throw(expr), node), nil
	case "try_statement":
		return parseTryStatement(node, source)
	case "switch_statement":
		return parseSwitchStatement(node, source)
	case "labeled_statement":
		label, err := parseIdentifierNode(node.ChildByFieldName("label"), source)
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		return annotateStatement(ast.Label(label.Name, body), node), nil
	case "empty_statement":
		return annotateStatement(ast.Empty(), node), nil
	}
	return nil, fmt.Errorf("parser: unsupported statement %s", node.Kind())
}

func parseVariableDeclaration(node *sitter.Node, source []byte) (*ast.VariableDeclaration, error) {
	kind := declarationKind(node, source)
	decls := make([]*ast.VariableDeclarator, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		if child.Kind() != "variable_declarator" {
			return nil, fmt.Errorf("parser: unexpected %s in %s declaration", child.Kind(), kind)
		}
		name, err := parseIdentifierNode(child.ChildByFieldName("name"), source)
		if err != nil {
			return nil, err
		}
		var init ast.Expression
		if valueNode := child.ChildByFieldName("value"); valueNode != nil {
			init, err = parseExpression(valueNode, source)
			if err != nil {
				return nil, err
			}
		}
		decl := ast.Declarator(name.Name, init)
		decl.Name = name
		annotateSpan(decl, child)
		decls = append(decls, decl)
	}
	if len(decls) == 0 {
		return nil, fmt.Errorf("parser: empty %s declaration", kind)
	}
	out := ast.Decl(kind, decls...)
	annotateSpan(out, node)
	return out, nil
}

// declarationKind reads the leading let/const/var keyword token.
func declarationKind(node *sitter.Node, source []byte) string {
	if kindNode := node.ChildByFieldName("kind"); kindNode != nil {
		return sliceContent(kindNode, source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		switch node.Child(i).Kind() {
		case "let", "const", "var":
			return node.Child(i).Kind()
		}
	}
	return "var"
}

func parseBlock(node *sitter.Node, source []byte) (*ast.BlockStatement, error) {
	if node == nil || node.Kind() != "statement_block" {
		return nil, fmt.Errorf("parser: expected block")
	}
	body := make([]ast.Statement, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		stmt, err := parseStatement(child, source)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	block := ast.Block(body...)
	annotateSpan(block, node)
	return block, nil
}

func parseIfStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	cond, err := parseParenthesizedCondition(node.ChildByFieldName("condition"), source)
	if err != nil {
		return nil, err
	}
	consequent, err := parseStatement(node.ChildByFieldName("consequence"), source)
	if err != nil {
		return nil, err
	}
	var alternate ast.Statement
	if altNode := node.ChildByFieldName("alternative"); altNode != nil {
		// else_clause wraps the alternate statement
		inner := firstNamedChild(altNode)
		if inner == nil {
			return nil, fmt.Errorf("parser: empty else clause")
		}
		alternate, err = parseStatement(inner, source)
		if err != nil {
			return nil, err
		}
	}
	return annotateStatement(ast.If(cond, consequent, alternate), node), nil
}

func parseForStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	var init ast.Statement
	if initNode := node.ChildByFieldName("initializer"); initNode != nil && initNode.Kind() != "empty_statement" {
		stmt, err := parseStatement(initNode, source)
		if err != nil {
			return nil, err
		}
		init = stmt
	}
	var test ast.Expression
	if condNode := node.ChildByFieldName("condition"); condNode != nil && condNode.Kind() != "empty_statement" {
		// grammar wraps the condition in an expression_statement
		inner := condNode
		if inner.Kind() == "expression_statement" {
			inner = firstNamedChild(inner)
		}
		expr, err := parseExpression(inner, source)
		if err != nil {
			return nil, err
		}
		test = expr
	}
	var update ast.Expression
	if incNode := node.ChildByFieldName("increment"); incNode != nil {
		expr, err := parseExpression(incNode, source)
		if err != nil {
			return nil, err
		}
		update = expr
	}
	body, err := parseStatement(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	return annotateStatement(ast.For(init, test, update, body), node), nil
}

func parseForInStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	leftNode := node.ChildByFieldName("left")
	name, err := parseIdentifierNode(leftNode, source)
	if err != nil {
		return nil, fmt.Errorf("parser: for-in/of loop variable must be an identifier")
	}
	right, err := parseExpression(node.ChildByFieldName("right"), source)
	if err != nil {
		return nil, err
	}
	body, err := parseStatement(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	kind := forInDeclarationKind(node)
	isOf := false
	if opNode := node.ChildByFieldName("operator"); opNode != nil {
		isOf = sliceContent(opNode, source) == "of"
	}
	stmt := ast.ForIn(kind, name.Name, right, body)
	stmt.Of = isOf
	stmt.Name = name
	return annotateStatement(stmt, node), nil
}

func forInDeclarationKind(node *sitter.Node) string {
	if kindNode := node.ChildByFieldName("kind"); kindNode != nil {
		return kindNode.Kind()
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		switch node.Child(i).Kind() {
		case "let", "const", "var":
			return node.Child(i).Kind()
		}
	}
	return ""
}

func parseTryStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	block, err := parseBlock(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	var handler *ast.CatchClause
	if handlerNode := node.ChildByFieldName("handler"); handlerNode != nil {
		var param *ast.Identifier
		if paramNode := handlerNode.ChildByFieldName("parameter"); paramNode != nil {
			param, err = parseIdentifierNode(paramNode, source)
			if err != nil {
				return nil, err
			}
		}
		catchBody, err := parseBlock(handlerNode.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		handler = ast.Catch("", catchBody)
		handler.Param = param
		annotateSpan(handler, handlerNode)
	}
	var finalizer *ast.BlockStatement
	if finNode := node.ChildByFieldName("finalizer"); finNode != nil {
		finalizer, err = parseBlock(finNode.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
	}
	if handler == nil && finalizer == nil {
		return nil, fmt.Errorf("parser: try needs a catch or finally")
	}
	return annotateStatement(ast.Try(block, handler, finalizer), node), nil
}

func parseSwitchStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	disc, err := parseParenthesizedCondition(node.ChildByFieldName("value"), source)
	if err != nil {
		return nil, err
	}
	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, fmt.Errorf("parser: switch missing body")
	}
	cases := make([]*ast.SwitchCase, 0, bodyNode.NamedChildCount())
	for i := uint(0); i < bodyNode.NamedChildCount(); i++ {
		caseNode := bodyNode.NamedChild(i)
		if isIgnorableNode(caseNode) {
			continue
		}
		var test ast.Expression
		switch caseNode.Kind() {
		case "switch_case":
			test, err = parseExpression(caseNode.ChildByFieldName("value"), source)
			if err != nil {
				return nil, err
			}
		case "switch_default":
			test = nil
		default:
			return nil, fmt.Errorf("parser: unexpected %s in switch body", caseNode.Kind())
		}
		consequent := make([]ast.Statement, 0)
		for j := uint(0); j < caseNode.NamedChildCount(); j++ {
			child := caseNode.NamedChild(j)
			if isIgnorableNode(child) || sameNode(child, caseNode.ChildByFieldName("value")) {
				continue
			}
			stmt, err := parseStatement(child, source)
			if err != nil {
				return nil, err
			}
			consequent = append(consequent, stmt)
		}
		sc := ast.Case(test, consequent...)
		annotateSpan(sc, caseNode)
		cases = append(cases, sc)
	}
	return annotateStatement(ast.Switch(disc, cases...), node), nil
}

func parseParenthesizedCondition(node *sitter.Node, source []byte) (ast.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: missing condition")
	}
	if node.Kind() == "parenthesized_expression" {
		node = firstNamedChild(node)
	}
	return parseExpression(node, source)
}

func optionalLabel(node *sitter.Node, source []byte) (string, error) {
	if node == nil {
		return "", nil
	}
	id, err := parseIdentifierNode(node, source)
	if err != nil {
		return "", err
	}
	return id.Name, nil
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && !isIgnorableNode(child) {
			return child
		}
	}
	return nil
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
