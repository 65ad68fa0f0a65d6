package interpreter

import (
	"math"

	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		val, err := env.Get(n.Name)
		if err != nil {
			return nil, i.referenceError(n, "%s is not defined", n.Name)
		}
		return val, nil
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.UndefinedLiteral:
		return runtime.UndefinedValue{}, nil
	case *ast.ThisExpression:
		val, err := env.Get("this")
		if err != nil {
			return runtime.UndefinedValue{}, nil
		}
		return val, nil
	case *ast.ArrayLiteral:
		elements := make([]runtime.Value, 0, len(n.Elements))
		for _, elem := range n.Elements {
			val, err := i.evaluateExpression(elem, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return runtime.NewArray(elements...), nil
	case *ast.ObjectLiteral:
		obj := runtime.NewObject()
		for _, prop := range n.Properties {
			val, err := i.evaluateExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
			obj.Set(prop.Key, val)
		}
		return obj, nil
	case *ast.FunctionLiteral:
		return i.makeFunction(n, env), nil
	case *ast.UnaryExpression:
		return i.evaluateUnary(n, env)
	case *ast.UpdateExpression:
		return i.evaluateUpdate(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env)
	case *ast.ConditionalExpression:
		test, err := i.evaluateExpression(n.Test, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(test) {
			return i.evaluateExpression(n.Consequent, env)
		}
		return i.evaluateExpression(n.Alternate, env)
	case *ast.SequenceExpression:
		var last runtime.Value = runtime.UndefinedValue{}
		for _, expr := range n.Expressions {
			val, err := i.evaluateExpression(expr, env)
			if err != nil {
				return nil, err
			}
			last = val
		}
		return last, nil
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	case *ast.MemberExpression:
		object, err := i.evaluateExpression(n.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.memberKey(n, env)
		if err != nil {
			return nil, err
		}
		return i.getMember(object, key, n)
	case *ast.YieldExpression:
		return i.evaluateYield(n, env)
	default:
		return nil, i.syntaxError(n, "unsupported expression type %s", n.NodeType())
	}
}

func (i *Interpreter) memberKey(n *ast.MemberExpression, env *runtime.Environment) (string, error) {
	if !n.Computed {
		id, ok := n.Property.(*ast.Identifier)
		if !ok {
			return "", i.syntaxError(n, "invalid member access")
		}
		return id.Name, nil
	}
	key, err := i.evaluateExpression(n.Property, env)
	if err != nil {
		return "", err
	}
	return runtime.ToString(key), nil
}

func (i *Interpreter) evaluateUnary(n *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch n.Operator {
	case "typeof":
		// typeof tolerates unresolved identifiers
		if id, ok := n.Operand.(*ast.Identifier); ok && !env.Has(id.Name) {
			return runtime.StringValue{Val: "undefined"}, nil
		}
	case "delete":
		if member, ok := n.Operand.(*ast.MemberExpression); ok {
			object, err := i.evaluateExpression(member.Object, env)
			if err != nil {
				return nil, err
			}
			key, err := i.memberKey(member, env)
			if err != nil {
				return nil, err
			}
			return runtime.BoolValue{Val: deleteMember(object, key)}, nil
		}
		return runtime.BoolValue{Val: true}, nil
	}

	operand, err := i.evaluateExpression(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "typeof":
		return runtime.StringValue{Val: runtime.TypeOf(operand)}, nil
	case "void":
		return runtime.UndefinedValue{}, nil
	case "-":
		return runtime.NumberValue{Val: -runtime.ToNumber(operand)}, nil
	case "+":
		return runtime.NumberValue{Val: runtime.ToNumber(operand)}, nil
	case "!":
		return runtime.BoolValue{Val: !runtime.ToBoolean(operand)}, nil
	case "~":
		return runtime.NumberValue{Val: float64(^toInt32(runtime.ToNumber(operand)))}, nil
	default:
		return nil, i.syntaxError(n, "unsupported unary operator %s", n.Operator)
	}
}

func (i *Interpreter) evaluateUpdate(n *ast.UpdateExpression, env *runtime.Environment) (runtime.Value, error) {
	read := func() (runtime.Value, error) { return i.evaluateExpression(n.Operand, env) }
	var write func(runtime.Value) error

	switch target := n.Operand.(type) {
	case *ast.Identifier:
		write = func(val runtime.Value) error {
			if err := env.Assign(target.Name, val); err != nil {
				return i.assignError(target, target.Name, env)
			}
			return nil
		}
	case *ast.MemberExpression:
		object, err := i.evaluateExpression(target.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.memberKey(target, env)
		if err != nil {
			return nil, err
		}
		read = func() (runtime.Value, error) { return i.getMember(object, key, target) }
		write = func(val runtime.Value) error { return i.setMember(object, key, val, target) }
	default:
		return nil, i.syntaxError(n, "invalid update target")
	}

	current, err := read()
	if err != nil {
		return nil, err
	}
	old := runtime.ToNumber(current)
	delta := 1.0
	if n.Operator == "--" {
		delta = -1
	}
	updated := runtime.NumberValue{Val: old + delta}
	if err := write(updated); err != nil {
		return nil, err
	}
	if n.Prefix {
		return updated, nil
	}
	return runtime.NumberValue{Val: old}, nil
}

func (i *Interpreter) evaluateBinary(n *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	switch n.Operator {
	case "&&":
		left, err := i.evaluateExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !runtime.ToBoolean(left) {
			return left, nil
		}
		return i.evaluateExpression(n.Right, env)
	case "||":
		left, err := i.evaluateExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(left) {
			return left, nil
		}
		return i.evaluateExpression(n.Right, env)
	case "??":
		left, err := i.evaluateExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		if left.Kind() != runtime.KindNull && left.Kind() != runtime.KindUndefined {
			return left, nil
		}
		return i.evaluateExpression(n.Right, env)
	}

	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(n.Operator, left, right, n)
}

func (i *Interpreter) applyBinary(op string, left, right runtime.Value, node ast.Node) (runtime.Value, error) {
	switch op {
	case "+":
		// concatenation only when a string is involved, everything else
		// numifies (composites come out NaN)
		if left.Kind() == runtime.KindString || right.Kind() == runtime.KindString {
			return runtime.StringValue{Val: runtime.ToString(left) + runtime.ToString(right)}, nil
		}
		return runtime.NumberValue{Val: runtime.ToNumber(left) + runtime.ToNumber(right)}, nil
	case "-":
		return runtime.NumberValue{Val: runtime.ToNumber(left) - runtime.ToNumber(right)}, nil
	case "*":
		return runtime.NumberValue{Val: runtime.ToNumber(left) * runtime.ToNumber(right)}, nil
	case "/":
		return runtime.NumberValue{Val: runtime.ToNumber(left) / runtime.ToNumber(right)}, nil
	case "%":
		return runtime.NumberValue{Val: math.Mod(runtime.ToNumber(left), runtime.ToNumber(right))}, nil
	case "**":
		return runtime.NumberValue{Val: math.Pow(runtime.ToNumber(left), runtime.ToNumber(right))}, nil
	case "<", "<=", ">", ">=":
		return compareValues(op, left, right), nil
	case "==":
		return runtime.BoolValue{Val: runtime.LooseEquals(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.LooseEquals(left, right)}, nil
	case "===":
		return runtime.BoolValue{Val: runtime.StrictEquals(left, right)}, nil
	case "!==":
		return runtime.BoolValue{Val: !runtime.StrictEquals(left, right)}, nil
	case "&":
		return runtime.NumberValue{Val: float64(toInt32(runtime.ToNumber(left)) & toInt32(runtime.ToNumber(right)))}, nil
	case "|":
		return runtime.NumberValue{Val: float64(toInt32(runtime.ToNumber(left)) | toInt32(runtime.ToNumber(right)))}, nil
	case "^":
		return runtime.NumberValue{Val: float64(toInt32(runtime.ToNumber(left)) ^ toInt32(runtime.ToNumber(right)))}, nil
	case "<<":
		return runtime.NumberValue{Val: float64(toInt32(runtime.ToNumber(left)) << (toUint32(runtime.ToNumber(right)) & 31))}, nil
	case ">>":
		return runtime.NumberValue{Val: float64(toInt32(runtime.ToNumber(left)) >> (toUint32(runtime.ToNumber(right)) & 31))}, nil
	case ">>>":
		return runtime.NumberValue{Val: float64(toUint32(runtime.ToNumber(left)) >> (toUint32(runtime.ToNumber(right)) & 31))}, nil
	case "in":
		return i.evaluateIn(left, right, node)
	default:
		return nil, i.syntaxError(node, "unsupported binary operator %s", op)
	}
}

func compareValues(op string, left, right runtime.Value) runtime.BoolValue {
	ls, lok := left.(runtime.StringValue)
	rs, rok := right.(runtime.StringValue)
	if lok && rok {
		switch op {
		case "<":
			return runtime.BoolValue{Val: ls.Val < rs.Val}
		case "<=":
			return runtime.BoolValue{Val: ls.Val <= rs.Val}
		case ">":
			return runtime.BoolValue{Val: ls.Val > rs.Val}
		default:
			return runtime.BoolValue{Val: ls.Val >= rs.Val}
		}
	}
	ln := runtime.ToNumber(left)
	rn := runtime.ToNumber(right)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return runtime.BoolValue{Val: false}
	}
	switch op {
	case "<":
		return runtime.BoolValue{Val: ln < rn}
	case "<=":
		return runtime.BoolValue{Val: ln <= rn}
	case ">":
		return runtime.BoolValue{Val: ln > rn}
	default:
		return runtime.BoolValue{Val: ln >= rn}
	}
}

func (i *Interpreter) evaluateIn(key, container runtime.Value, node ast.Node) (runtime.Value, error) {
	name := runtime.ToString(key)
	switch v := container.(type) {
	case *runtime.ObjectValue:
		_, ok := v.Get(name)
		return runtime.BoolValue{Val: ok}, nil
	case *runtime.ArrayValue:
		idx, ok := arrayIndex(name)
		if ok && idx < len(v.Elements) {
			return runtime.BoolValue{Val: true}, nil
		}
		return runtime.BoolValue{Val: name == "length"}, nil
	default:
		return nil, i.typeError(node, "Cannot use 'in' operator to search for '%s' in %s", name, runtime.ToString(container))
	}
}

func (i *Interpreter) evaluateAssignment(n *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, error) {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		value, err := i.assignmentValue(n, env, func() (runtime.Value, error) {
			val, err := env.Get(target.Name)
			if err != nil {
				return nil, i.referenceError(target, "%s is not defined", target.Name)
			}
			return val, nil
		})
		if err != nil {
			return nil, err
		}
		if err := env.Assign(target.Name, value); err != nil {
			return nil, i.assignError(target, target.Name, env)
		}
		return value, nil
	case *ast.MemberExpression:
		object, err := i.evaluateExpression(target.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.memberKey(target, env)
		if err != nil {
			return nil, err
		}
		value, err := i.assignmentValue(n, env, func() (runtime.Value, error) {
			return i.getMember(object, key, target)
		})
		if err != nil {
			return nil, err
		}
		if err := i.setMember(object, key, value, target); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, i.syntaxError(n, "Invalid left-hand side in assignment")
	}
}

// assignmentValue computes the right-hand side, folding in the current value
// for compound operators like += and *=.
func (i *Interpreter) assignmentValue(n *ast.AssignmentExpression, env *runtime.Environment, read func() (runtime.Value, error)) (runtime.Value, error) {
	if n.Operator == "=" {
		return i.evaluateExpression(n.Value, env)
	}
	current, err := read()
	if err != nil {
		return nil, err
	}
	op := n.Operator[:len(n.Operator)-1]
	// logical forms short-circuit without evaluating the right side
	switch op {
	case "&&":
		if !runtime.ToBoolean(current) {
			return current, nil
		}
		return i.evaluateExpression(n.Value, env)
	case "||":
		if runtime.ToBoolean(current) {
			return current, nil
		}
		return i.evaluateExpression(n.Value, env)
	case "??":
		if current.Kind() != runtime.KindNull && current.Kind() != runtime.KindUndefined {
			return current, nil
		}
		return i.evaluateExpression(n.Value, env)
	}
	value, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(op, current, value, n)
}

// assignError distinguishes writing a const from writing an undeclared name.
func (i *Interpreter) assignError(node ast.Node, name string, env *runtime.Environment) error {
	if cell, ok := env.GetCell(name); ok && cell.DeclKind() == runtime.DeclConst {
		return i.typeError(node, "Assignment to constant variable '%s'", name)
	}
	return i.referenceError(node, "%s is not defined", name)
}

func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	t := math.Trunc(n)
	m := math.Mod(t, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return int32(uint32(m))
}

func toUint32(n float64) uint32 {
	return uint32(toInt32(n))
}
