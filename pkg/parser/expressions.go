package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"tinyjs/interpreter-go/pkg/ast"
)

func parseExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: nil expression node")
	}
	switch node.Kind() {
	case "parenthesized_expression":
		return parseExpression(firstNamedChild(node), source)
	case "identifier":
		return parseIdentifierNode(node, source)
	case "number":
		value, err := parseNumberText(sliceContent(node, source))
		if err != nil {
			return nil, fmt.Errorf("parser: bad number literal %q", sliceContent(node, source))
		}
		return annotateExpression(ast.Num(value), node), nil
	case "string":
		text := decodeStringText(stripQuotes(sliceContent(node, source)))
		return annotateExpression(ast.Str(text), node), nil
	case "template_string":
		return parseTemplateString(node, source)
	case "true":
		return annotateExpression(ast.Bool(true), node), nil
	case "false":
		return annotateExpression(ast.Bool(false), node), nil
	case "null":
		return annotateExpression(ast.Null(), node), nil
	case "undefined":
		return annotateExpression(ast.Undefined(), node), nil
	case "this":
		return annotateExpression(ast.This(), node), nil
	case "array":
		elements := make([]ast.Expression, 0, node.NamedChildCount())
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if isIgnorableNode(child) {
				continue
			}
			elem, err := parseExpression(child, source)
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
		return annotateExpression(ast.Arr(elements...), node), nil
	case "object":
		return parseObjectLiteral(node, source)
	case "function_expression", "generator_function":
		fn, err := parseFunctionLiteral(node, source)
		if err != nil {
			return nil, err
		}
		return annotateExpression(fn, node), nil
	case "arrow_function":
		return parseArrowFunction(node, source)
	case "call_expression":
		return parseCallExpression(node, source)
	case "new_expression":
		return parseNewExpression(node, source)
	case "member_expression":
		object, err := parseExpression(node.ChildByFieldName("object"), source)
		if err != nil {
			return nil, err
		}
		propNode := node.ChildByFieldName("property")
		if propNode == nil || propNode.Kind() != "property_identifier" {
			return nil, fmt.Errorf("parser: unsupported member access")
		}
		return annotateExpression(ast.Member(object, sliceContent(propNode, source)), node), nil
	case "subscript_expression":
		object, err := parseExpression(node.ChildByFieldName("object"), source)
		if err != nil {
			return nil, err
		}
		index, err := parseExpression(node.ChildByFieldName("index"), source)
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.Index(object, index), node), nil
	case "assignment_expression":
		target, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		value, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.Assign(target, value), node), nil
	case "augmented_assignment_expression":
		target, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		value, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		op := sliceContent(node.ChildByFieldName("operator"), source)
		return annotateExpression(ast.AssignOp(op, target, value), node), nil
	case "binary_expression":
		left, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		op := sliceContent(node.ChildByFieldName("operator"), source)
		return annotateExpression(ast.Bin(op, left, right), node), nil
	case "unary_expression":
		operand, err := parseExpression(node.ChildByFieldName("argument"), source)
		if err != nil {
			return nil, err
		}
		op := sliceContent(node.ChildByFieldName("operator"), source)
		return annotateExpression(ast.Unary(op, operand), node), nil
	case "update_expression":
		argNode := node.ChildByFieldName("argument")
		operand, err := parseExpression(argNode, source)
		if err != nil {
			return nil, err
		}
		opNode := node.ChildByFieldName("operator")
		op := sliceContent(opNode, source)
		prefix := opNode != nil && argNode != nil && opNode.StartByte() < argNode.StartByte()
		return annotateExpression(ast.Update(op, operand, prefix), node), nil
	case "ternary_expression":
		test, err := parseExpression(node.ChildByFieldName("condition"), source)
		if err != nil {
			return nil, err
		}
		consequent, err := parseExpression(node.ChildByFieldName("consequence"), source)
		if err != nil {
			return nil, err
		}
		alternate, err := parseExpression(node.ChildByFieldName("alternative"), source)
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.Cond(test, consequent, alternate), node), nil
	case "sequence_expression":
		return parseSequenceExpression(node, source)
	case "yield_expression":
		return parseYieldExpression(node, source)
	}
	return nil, fmt.Errorf("parser: unsupported expression %s", node.Kind())
}

func parseTemplateString(node *sitter.Node, source []byte) (ast.Expression, error) {
	var text string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "string_fragment":
			text += sliceContent(child, source)
		case "escape_sequence":
			text += decodeStringText(sliceContent(child, source))
		case "template_substitution":
			return nil, fmt.Errorf("parser: template substitutions are not supported")
		}
	}
	return annotateExpression(ast.Str(text), node), nil
}

func parseObjectLiteral(node *sitter.Node, source []byte) (ast.Expression, error) {
	props := make([]*ast.Property, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		switch child.Kind() {
		case "pair":
			key, err := parsePropertyKey(child.ChildByFieldName("key"), source)
			if err != nil {
				return nil, err
			}
			value, err := parseExpression(child.ChildByFieldName("value"), source)
			if err != nil {
				return nil, err
			}
			prop := ast.Prop(key, value)
			annotateSpan(prop, child)
			props = append(props, prop)
		case "shorthand_property_identifier":
			name := sliceContent(child, source)
			prop := ast.Prop(name, annotateExpression(ast.ID(name), child))
			annotateSpan(prop, child)
			props = append(props, prop)
		case "method_definition":
			key, err := parsePropertyKey(child.ChildByFieldName("name"), source)
			if err != nil {
				return nil, err
			}
			fn, err := parseFunctionLiteral(child, source)
			if err != nil {
				return nil, err
			}
			prop := ast.Prop(key, annotateExpression(fn, child))
			annotateSpan(prop, child)
			props = append(props, prop)
		default:
			return nil, fmt.Errorf("parser: unsupported object member %s", child.Kind())
		}
	}
	return annotateExpression(ast.Obj(props...), node), nil
}

func parsePropertyKey(node *sitter.Node, source []byte) (string, error) {
	if node == nil {
		return "", fmt.Errorf("parser: object property missing key")
	}
	switch node.Kind() {
	case "property_identifier", "number":
		return sliceContent(node, source), nil
	case "string":
		return decodeStringText(stripQuotes(sliceContent(node, source))), nil
	}
	return "", fmt.Errorf("parser: unsupported property key %s", node.Kind())
}

func parseFunctionLiteral(node *sitter.Node, source []byte) (*ast.FunctionLiteral, error) {
	var name *ast.Identifier
	if nameNode := node.ChildByFieldName("name"); nameNode != nil && nameNode.Kind() == "identifier" {
		id, err := parseIdentifierNode(nameNode, source)
		if err != nil {
			return nil, err
		}
		name = id
	}
	params, err := parseFormalParameters(node.ChildByFieldName("parameters"), source)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	fn := ast.Fn(name, params, body)
	fn.Generator = isGeneratorNode(node)
	annotateSpan(fn, node)
	return fn, nil
}

func isGeneratorNode(node *sitter.Node) bool {
	switch node.Kind() {
	case "generator_function", "generator_function_declaration":
		return true
	}
	// generator methods carry a bare "*" token
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "*" {
			return true
		}
	}
	return false
}

func parseFormalParameters(node *sitter.Node, source []byte) ([]*ast.Identifier, error) {
	if node == nil {
		return nil, nil
	}
	params := make([]*ast.Identifier, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		id, err := parseIdentifierNode(child, source)
		if err != nil {
			return nil, fmt.Errorf("parser: parameters must be plain identifiers")
		}
		params = append(params, id)
	}
	return params, nil
}

func parseArrowFunction(node *sitter.Node, source []byte) (ast.Expression, error) {
	var params []*ast.Identifier
	if paramNode := node.ChildByFieldName("parameter"); paramNode != nil {
		id, err := parseIdentifierNode(paramNode, source)
		if err != nil {
			return nil, err
		}
		params = []*ast.Identifier{id}
	} else {
		parsed, err := parseFormalParameters(node.ChildByFieldName("parameters"), source)
		if err != nil {
			return nil, err
		}
		params = parsed
	}
	bodyNode := node.ChildByFieldName("body")
	var body *ast.BlockStatement
	if bodyNode != nil && bodyNode.Kind() == "statement_block" {
		block, err := parseBlock(bodyNode, source)
		if err != nil {
			return nil, err
		}
		body = block
	} else {
		// expression body desugars to an implicit return
		expr, err := parseExpression(bodyNode, source)
		if err != nil {
			return nil, err
		}
		ret := ast.Ret(expr)
		annotateSpan(ret, bodyNode)
		body = ast.Block(ret)
		annotateSpan(body, bodyNode)
	}
	fn := ast.Arrow(params, body)
	return annotateExpression(fn, node), nil
}

func parseCallExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	callee, err := parseExpression(node.ChildByFieldName("function"), source)
	if err != nil {
		return nil, err
	}
	argsNode := node.ChildByFieldName("arguments")
	if argsNode == nil || argsNode.Kind() != "arguments" {
		return nil, fmt.Errorf("parser: unsupported call arguments")
	}
	args := make([]ast.Expression, 0, argsNode.NamedChildCount())
	for i := uint(0); i < argsNode.NamedChildCount(); i++ {
		child := argsNode.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		arg, err := parseExpression(child, source)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return annotateExpression(ast.Call(callee, args...), node), nil
}

// parseNewExpression lowers `new F(args)` to a plain call. Constructors in
// the runtime are ordinary callables that build and return their result.
func parseNewExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	callee, err := parseExpression(node.ChildByFieldName("constructor"), source)
	if err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	if argsNode := node.ChildByFieldName("arguments"); argsNode != nil {
		for i := uint(0); i < argsNode.NamedChildCount(); i++ {
			child := argsNode.NamedChild(i)
			if isIgnorableNode(child) {
				continue
			}
			arg, err := parseExpression(child, source)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	return annotateExpression(ast.Call(callee, args...), node), nil
}

func parseSequenceExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	exprs := make([]ast.Expression, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if isIgnorableNode(child) {
			continue
		}
		expr, err := parseExpression(child, source)
		if err != nil {
			return nil, err
		}
		// nested sequences flatten left to right
		if seq, ok := expr.(*ast.SequenceExpression); ok {
			exprs = append(exprs, seq.Expressions...)
			continue
		}
		exprs = append(exprs, expr)
	}
	return annotateExpression(ast.Seq(exprs...), node), nil
}

func parseYieldExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "*" {
			return nil, fmt.Errorf("parser: yield* delegation is not supported")
		}
	}
	var argument ast.Expression
	if child := firstNamedChild(node); child != nil {
		expr, err := parseExpression(child, source)
		if err != nil {
			return nil, err
		}
		argument = expr
	}
	return annotateExpression(ast.Yield(argument), node), nil
}
