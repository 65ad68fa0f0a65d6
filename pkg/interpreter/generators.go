package interpreter

import (
	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

// instantiateGenerator builds a suspended coroutine handle. The body does
// not run until the first next(); it then executes on its own goroutine,
// handing values back and forth through the handle's channels.
func (i *Interpreter) instantiateGenerator(fn *runtime.FunctionValue, this runtime.Value, args []runtime.Value) *runtime.GeneratorValue {
	return runtime.NewGenerator(func(g *runtime.GeneratorValue) (runtime.Value, error) {
		env := i.activationScope(fn, this, args)
		env.SetRuntimeData(g)
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
	})
}

// evaluateYield suspends the innermost generator activation. An early
// return() surfaces here as a return signal so finally blocks on the way
// out still run.
func (i *Interpreter) evaluateYield(n *ast.YieldExpression, env *runtime.Environment) (runtime.Value, error) {
	g, ok := env.RuntimeData().(*runtime.GeneratorValue)
	if !ok {
		return nil, i.syntaxError(n, "yield is only valid inside a generator function")
	}
	var arg runtime.Value = runtime.UndefinedValue{}
	if n.Argument != nil {
		val, err := i.evaluateExpression(n.Argument, env)
		if err != nil {
			return nil, err
		}
		arg = val
	}
	resumed, err := g.Yield(arg)
	if err != nil {
		if ret, ok := err.(runtime.GeneratorReturn); ok {
			return nil, returnSignal{value: ret.Value}
		}
		return nil, err
	}
	return resumed, nil
}

// generatorMember exposes the iteration protocol as bound methods.
func (i *Interpreter) generatorMember(g *runtime.GeneratorValue, key string, node ast.Node) (runtime.Value, bool) {
	switch key {
	case "next":
		return runtime.NewNativeFunction("next", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var arg runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				arg = args[0]
			}
			res, err := g.Next(arg)
			if err != nil {
				return nil, i.generatorError(err, node)
			}
			return iteratorResultObject(res), nil
		}), true
	case "return":
		return runtime.NewNativeFunction("return", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var arg runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				arg = args[0]
			}
			res, err := g.Return(arg)
			if err != nil {
				return nil, i.generatorError(err, node)
			}
			return iteratorResultObject(res), nil
		}), true
	}
	return nil, false
}

// generatorError maps handle misuse onto the error taxonomy and lets thrown
// values from inside the body keep propagating as throws.
func (i *Interpreter) generatorError(err error, node ast.Node) error {
	if _, ok := err.(throwSignal); ok {
		return err
	}
	return i.typeError(node, "%s", err.Error())
}

func iteratorResultObject(res runtime.IteratorResult) *runtime.ObjectValue {
	obj := runtime.NewObject()
	value := res.Value
	if value == nil {
		value = runtime.UndefinedValue{}
	}
	obj.Set("value", value)
	obj.Set("done", runtime.BoolValue{Val: res.Done})
	return obj
}
