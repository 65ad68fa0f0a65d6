package interpreter

import (
	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

// generatorBarrier marks a plain function activation so yield cannot reach
// an enclosing generator through the scope chain.
type generatorBarrier struct{}

func (i *Interpreter) evaluateCall(n *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	var this runtime.Value = runtime.UndefinedValue{}
	var callee runtime.Value

	if member, ok := n.Callee.(*ast.MemberExpression); ok {
		object, err := i.evaluateExpression(member.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := i.memberKey(member, env)
		if err != nil {
			return nil, err
		}
		callee, err = i.getMember(object, key, member)
		if err != nil {
			return nil, err
		}
		this = object
	} else {
		val, err := i.evaluateExpression(n.Callee, env)
		if err != nil {
			return nil, err
		}
		callee = val
	}

	args := make([]runtime.Value, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	result, err := i.callValue(callee, this, args)
	if err != nil {
		if sig, ok := err.(throwSignal); ok {
			return nil, i.annotateThrow(sig, n)
		}
		return nil, err
	}
	return result, nil
}

// annotateThrow stamps the call site position onto engine-raised errors
// that carry none of their own.
func (i *Interpreter) annotateThrow(sig throwSignal, node ast.Node) error {
	errVal, ok := sig.value.(runtime.ErrorValue)
	if !ok || errVal.Line != 0 {
		return sig
	}
	span := node.Span()
	errVal.Line = span.Line
	errVal.Column = span.Column
	errVal.Snippet = i.snippetAt(span.Line)
	return throwSignal{value: errVal}
}

// callValue dispatches on the callee's kind: user functions run their body
// in a fresh activation scope, generator functions build a suspended
// coroutine handle, natives run in Go.
func (i *Interpreter) callValue(callee, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		if fn.Declaration.Generator {
			return i.instantiateGenerator(fn, this, args), nil
		}
		return i.invokeFunction(fn, this, args)
	case runtime.Callable:
		ctx := &runtime.NativeCallContext{Env: i.global, Call: i.callValue}
		return fn.Invoke(ctx, this, args)
	default:
		return nil, i.typeError(nil, "%s is not a function", describeValue(callee))
	}
}

func describeValue(val runtime.Value) string {
	switch val.Kind() {
	case runtime.KindUndefined, runtime.KindNull, runtime.KindBool, runtime.KindNumber:
		return runtime.ToString(val)
	case runtime.KindString:
		return "\"" + runtime.ToString(val) + "\""
	default:
		return runtime.TypeOf(val)
	}
}

// invokeFunction runs a non-generator body. The activation scope extends the
// captured closure, binds parameters positionally with undefined for the
// missing ones, and binds this and arguments unless the function is an
// arrow. A return signal is consumed here; break and continue must not
// escape a function body.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	env := i.activationScope(fn, this, args)
	env.SetRuntimeData(generatorBarrier{})
	_, err := i.executeStatements(fn.Declaration.Body.Body, env)
	if err != nil {
		switch sig := err.(type) {
		case returnSignal:
			return sig.value, nil
		case breakSignal, continueSignal:
			return nil, i.syntaxError(fn.Declaration, "Illegal %s statement", sig.Error())
		}
		return nil, err
	}
	return runtime.UndefinedValue{}, nil
}

func (i *Interpreter) activationScope(fn *runtime.FunctionValue, this runtime.Value, args []runtime.Value) *runtime.Environment {
	env := fn.Closure.Extend()
	decl := fn.Declaration
	if !decl.Arrow {
		if this == nil {
			this = runtime.UndefinedValue{}
		}
		_ = env.Declare(runtime.DeclVar, "this", this)
		_ = env.Declare(runtime.DeclVar, "arguments", runtime.NewArray(args...))
	}
	for idx, param := range decl.Params {
		var val runtime.Value = runtime.UndefinedValue{}
		if idx < len(args) && args[idx] != nil {
			val = args[idx]
		}
		_ = env.Declare(runtime.DeclVar, param.Name, val)
	}
	return env
}
