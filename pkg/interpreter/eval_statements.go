package interpreter

import (
	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableDeclaration:
		return nil, i.evaluateVariableDeclaration(n, env)
	case *ast.FunctionDeclaration:
		// hoisted by executeStatements; reached only when a declaration
		// appears somewhere hoisting does not cover, e.g. a switch case
		name := n.Function.Name.Name
		if !env.HasInCurrentScope(name) {
			if err := env.Declare(runtime.DeclFunction, name, runtime.UndefinedValue{}); err != nil {
				return nil, i.syntaxError(n, "%s", err.Error())
			}
		}
		return nil, env.Assign(name, i.makeFunction(n.Function, env))
	case *ast.BlockStatement:
		_, err := i.executeStatements(n.Body, env.Extend())
		return nil, err
	case *ast.IfStatement:
		test, err := i.evaluateExpression(n.Test, env)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(test) {
			return i.evaluateStatement(n.Consequent, env.Extend())
		}
		if n.Alternate != nil {
			return i.evaluateStatement(n.Alternate, env.Extend())
		}
		return nil, nil
	case *ast.WhileStatement:
		return nil, i.evaluateWhile(n, env, "")
	case *ast.DoWhileStatement:
		return nil, i.evaluateDoWhile(n, env, "")
	case *ast.ForStatement:
		return nil, i.evaluateFor(n, env, "")
	case *ast.ForInStatement:
		return nil, i.evaluateForIn(n, env, "")
	case *ast.ReturnStatement:
		var value runtime.Value = runtime.UndefinedValue{}
		if n.Argument != nil {
			val, err := i.evaluateExpression(n.Argument, env)
			if err != nil {
				return nil, err
			}
			value = val
		}
		return nil, returnSignal{value: value}
	case *ast.BreakStatement:
		return nil, breakSignal{label: n.Label}
	case *ast.ContinueStatement:
		return nil, continueSignal{label: n.Label}
	case *ast.ThrowStatement:
		value, err := i.evaluateExpression(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return nil, throwSignal{value: value}
	case *ast.TryStatement:
		return nil, i.evaluateTry(n, env)
	case *ast.SwitchStatement:
		return nil, i.evaluateSwitch(n, env)
	case *ast.LabeledStatement:
		return nil, i.evaluateLabeled(n, env)
	case *ast.EmptyStatement:
		return nil, nil
	default:
		return nil, i.syntaxError(n, "unsupported statement type %s", n.NodeType())
	}
}

func declKindFor(kind string) runtime.DeclKind {
	switch kind {
	case "let":
		return runtime.DeclLet
	case "const":
		return runtime.DeclConst
	default:
		return runtime.DeclVar
	}
}

func (i *Interpreter) evaluateVariableDeclaration(n *ast.VariableDeclaration, env *runtime.Environment) error {
	kind := declKindFor(n.Kind)
	for _, decl := range n.Declarations {
		if kind == runtime.DeclConst && decl.Init == nil {
			return i.syntaxError(decl, "Missing initializer in const declaration")
		}
		var value runtime.Value = runtime.UndefinedValue{}
		if decl.Init != nil {
			val, err := i.evaluateExpression(decl.Init, env)
			if err != nil {
				return err
			}
			value = val
		}
		if err := env.Declare(kind, decl.Name.Name, value); err != nil {
			return i.syntaxError(decl, "%s", err.Error())
		}
	}
	return nil
}

// loopSignal classifies a signal escaping a loop body: consume a break or
// continue addressed to this loop, propagate everything else.
func loopSignal(err error, label string) (brk, cont bool, out error) {
	switch sig := err.(type) {
	case breakSignal:
		if sig.label == "" || sig.label == label {
			return true, false, nil
		}
	case continueSignal:
		if sig.label == "" || sig.label == label {
			return false, true, nil
		}
	}
	return false, false, err
}

func (i *Interpreter) evaluateWhile(n *ast.WhileStatement, env *runtime.Environment, label string) error {
	for {
		test, err := i.evaluateExpression(n.Test, env)
		if err != nil {
			return err
		}
		if !runtime.ToBoolean(test) {
			return nil
		}
		if _, err := i.evaluateStatement(n.Body, env.Extend()); err != nil {
			brk, _, out := loopSignal(err, label)
			if out != nil {
				return out
			}
			if brk {
				return nil
			}
		}
	}
}

func (i *Interpreter) evaluateDoWhile(n *ast.DoWhileStatement, env *runtime.Environment, label string) error {
	for {
		if _, err := i.evaluateStatement(n.Body, env.Extend()); err != nil {
			brk, _, out := loopSignal(err, label)
			if out != nil {
				return out
			}
			if brk {
				return nil
			}
		}
		test, err := i.evaluateExpression(n.Test, env)
		if err != nil {
			return err
		}
		if !runtime.ToBoolean(test) {
			return nil
		}
	}
}

func (i *Interpreter) evaluateFor(n *ast.ForStatement, env *runtime.Environment, label string) error {
	loopEnv := env.Extend()
	var perIteration []string
	if n.Init != nil {
		if _, err := i.evaluateStatement(n.Init, loopEnv); err != nil {
			return err
		}
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok && decl.Kind == "let" {
			for _, d := range decl.Declarations {
				perIteration = append(perIteration, d.Name.Name)
			}
		}
	}
	// let bindings get a fresh cell per iteration so closures made in the
	// body observe that iteration's value
	loopEnv = i.copyIterationScope(env, loopEnv, perIteration)
	for {
		if n.Test != nil {
			test, err := i.evaluateExpression(n.Test, loopEnv)
			if err != nil {
				return err
			}
			if !runtime.ToBoolean(test) {
				return nil
			}
		}
		if _, err := i.evaluateStatement(n.Body, loopEnv.Extend()); err != nil {
			brk, _, out := loopSignal(err, label)
			if out != nil {
				return out
			}
			if brk {
				return nil
			}
		}
		loopEnv = i.copyIterationScope(env, loopEnv, perIteration)
		if n.Update != nil {
			if _, err := i.evaluateExpression(n.Update, loopEnv); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) copyIterationScope(parent, current *runtime.Environment, names []string) *runtime.Environment {
	if len(names) == 0 {
		return current
	}
	next := parent.Extend()
	for _, name := range names {
		val, err := current.Get(name)
		if err != nil {
			continue
		}
		_ = next.Declare(runtime.DeclLet, name, val)
	}
	return next
}

func (i *Interpreter) evaluateForIn(n *ast.ForInStatement, env *runtime.Environment, label string) error {
	source, err := i.evaluateExpression(n.Object, env)
	if err != nil {
		return err
	}

	runBody := func(value runtime.Value) (brk bool, err error) {
		iterEnv := env.Extend()
		if n.Kind == "" {
			if assignErr := env.Assign(n.Name.Name, value); assignErr != nil {
				return false, i.referenceError(n.Name, "%s", assignErr.Error())
			}
		} else if declErr := iterEnv.Declare(declKindFor(n.Kind), n.Name.Name, value); declErr != nil {
			return false, i.syntaxError(n.Name, "%s", declErr.Error())
		}
		if _, err := i.evaluateStatement(n.Body, iterEnv); err != nil {
			brk, _, out := loopSignal(err, label)
			return brk, out
		}
		return false, nil
	}

	if n.Of {
		return i.iterateForOf(n, source, runBody)
	}
	for _, key := range enumerableKeys(source) {
		brk, err := runBody(runtime.StringValue{Val: key})
		if err != nil || brk {
			return err
		}
	}
	return nil
}

// enumerableKeys lists for-in keys: own properties in insertion order for
// objects, index strings for arrays and strings, nothing for primitives.
func enumerableKeys(val runtime.Value) []string {
	switch v := val.(type) {
	case *runtime.ObjectValue:
		return v.Keys()
	case *runtime.ArrayValue:
		keys := make([]string, len(v.Elements))
		for idx := range v.Elements {
			keys[idx] = runtime.NumberToString(float64(idx))
		}
		return keys
	case runtime.StringValue:
		runes := []rune(v.Val)
		keys := make([]string, len(runes))
		for idx := range runes {
			keys[idx] = runtime.NumberToString(float64(idx))
		}
		return keys
	default:
		return nil
	}
}

func (i *Interpreter) iterateForOf(n *ast.ForInStatement, source runtime.Value, runBody func(runtime.Value) (bool, error)) error {
	switch v := source.(type) {
	case *runtime.ArrayValue:
		elements := make([]runtime.Value, len(v.Elements))
		copy(elements, v.Elements)
		for _, elem := range elements {
			if elem == nil {
				elem = runtime.UndefinedValue{}
			}
			brk, err := runBody(elem)
			if err != nil || brk {
				return err
			}
		}
		return nil
	case runtime.StringValue:
		for _, r := range v.Val {
			brk, err := runBody(runtime.StringValue{Val: string(r)})
			if err != nil || brk {
				return err
			}
		}
		return nil
	case *runtime.GeneratorValue:
		for {
			res, err := v.Next(runtime.UndefinedValue{})
			if err != nil {
				return err
			}
			if res.Done {
				return nil
			}
			brk, err := runBody(res.Value)
			if err != nil || brk {
				return err
			}
		}
	default:
		return i.typeError(n.Object, "%s is not iterable", runtime.TypeOf(source))
	}
}

func (i *Interpreter) evaluateTry(n *ast.TryStatement, env *runtime.Environment) error {
	_, err := i.executeStatements(n.Block.Body, env.Extend())
	if err != nil {
		if sig, ok := err.(throwSignal); ok && n.Handler != nil {
			catchEnv := env.Extend()
			if n.Handler.Param != nil {
				if declErr := catchEnv.Declare(runtime.DeclLet, n.Handler.Param.Name, sig.value); declErr != nil {
					return i.syntaxError(n.Handler, "%s", declErr.Error())
				}
			}
			_, err = i.executeStatements(n.Handler.Body.Body, catchEnv)
		}
	}
	if n.Finalizer != nil {
		if _, finErr := i.executeStatements(n.Finalizer.Body, env.Extend()); finErr != nil {
			// an abrupt finally wins over the try/catch outcome
			return finErr
		}
	}
	return err
}

func (i *Interpreter) evaluateSwitch(n *ast.SwitchStatement, env *runtime.Environment) error {
	disc, err := i.evaluateExpression(n.Discriminant, env)
	if err != nil {
		return err
	}
	caseEnv := env.Extend()
	matched := -1
	for idx, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		test, err := i.evaluateExpression(c.Test, caseEnv)
		if err != nil {
			return err
		}
		if runtime.StrictEquals(disc, test) || sameNullish(disc, test) {
			matched = idx
			break
		}
	}
	if matched < 0 {
		for idx, c := range n.Cases {
			if c.Test == nil {
				matched = idx
				break
			}
		}
	}
	if matched < 0 {
		return nil
	}
	for idx := matched; idx < len(n.Cases); idx++ {
		for _, stmt := range n.Cases[idx].Body {
			if _, err := i.evaluateStatement(stmt, caseEnv); err != nil {
				if sig, ok := err.(breakSignal); ok && sig.label == "" {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// sameNullish lets `case null` and `case undefined` match, since strict
// equality deliberately rejects nullish operands.
func sameNullish(a, b runtime.Value) bool {
	return a.Kind() == b.Kind() && (a.Kind() == runtime.KindNull || a.Kind() == runtime.KindUndefined)
}

func (i *Interpreter) evaluateLabeled(n *ast.LabeledStatement, env *runtime.Environment) error {
	var err error
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		err = i.evaluateWhile(body, env, n.Label)
	case *ast.DoWhileStatement:
		err = i.evaluateDoWhile(body, env, n.Label)
	case *ast.ForStatement:
		err = i.evaluateFor(body, env, n.Label)
	case *ast.ForInStatement:
		err = i.evaluateForIn(body, env, n.Label)
	default:
		_, err = i.evaluateStatement(n.Body, env)
	}
	if sig, ok := err.(breakSignal); ok && sig.label == n.Label {
		return nil
	}
	return err
}
