package interpreter

import (
	"math"
	"strconv"
	"strings"

	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

func arrayIndex(key string) (int, bool) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func (i *Interpreter) getMember(object runtime.Value, key string, node ast.Node) (runtime.Value, error) {
	switch v := object.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return nil, i.typeError(node, "Cannot read properties of %s (reading '%s')", runtime.ToString(object), key)
	case *runtime.ObjectValue:
		if val, ok := v.Get(key); ok {
			return val, nil
		}
		if key == "hasOwnProperty" {
			return runtime.NewNativeFunction("hasOwnProperty", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
				if len(args) == 0 {
					return runtime.BoolValue{}, nil
				}
				_, ok := v.Get(runtime.ToString(args[0]))
				return runtime.BoolValue{Val: ok}, nil
			}), nil
		}
		return runtime.UndefinedValue{}, nil
	case *runtime.ArrayValue:
		if key == "length" {
			return runtime.NumberValue{Val: float64(len(v.Elements))}, nil
		}
		if idx, ok := arrayIndex(key); ok {
			if idx < len(v.Elements) && v.Elements[idx] != nil {
				return v.Elements[idx], nil
			}
			return runtime.UndefinedValue{}, nil
		}
		if method, ok := i.arrayMethod(v, key); ok {
			return method, nil
		}
		return runtime.UndefinedValue{}, nil
	case runtime.StringValue:
		if key == "length" {
			return runtime.NumberValue{Val: float64(len([]rune(v.Val)))}, nil
		}
		if idx, ok := arrayIndex(key); ok {
			runes := []rune(v.Val)
			if idx < len(runes) {
				return runtime.StringValue{Val: string(runes[idx])}, nil
			}
			return runtime.UndefinedValue{}, nil
		}
		if method, ok := stringMethod(v.Val, key); ok {
			return method, nil
		}
		return runtime.UndefinedValue{}, nil
	case runtime.NumberValue:
		if method, ok := numberMethod(v.Val, key); ok {
			return method, nil
		}
		return runtime.UndefinedValue{}, nil
	case *runtime.GeneratorValue:
		if method, ok := i.generatorMember(v, key, node); ok {
			return method, nil
		}
		return runtime.UndefinedValue{}, nil
	case *runtime.FunctionValue:
		return i.functionMember(v, v.Name(), key), nil
	case *runtime.NativeFunctionValue:
		return i.functionMember(v, v.FuncName, key), nil
	case runtime.ErrorValue:
		switch key {
		case "name":
			kind := v.ErrKind
			if kind == "" {
				kind = "Error"
			}
			return runtime.StringValue{Val: kind}, nil
		case "message":
			return runtime.StringValue{Val: v.Message}, nil
		case "stack":
			return runtime.StringValue{Val: v.String()}, nil
		case "line":
			return runtime.NumberValue{Val: float64(v.Line)}, nil
		case "column":
			return runtime.NumberValue{Val: float64(v.Column)}, nil
		}
		return runtime.UndefinedValue{}, nil
	default:
		return runtime.UndefinedValue{}, nil
	}
}

func (i *Interpreter) setMember(object runtime.Value, key string, value runtime.Value, node ast.Node) error {
	switch v := object.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return i.typeError(node, "Cannot set properties of %s (setting '%s')", runtime.ToString(object), key)
	case *runtime.ObjectValue:
		v.Set(key, value)
		return nil
	case *runtime.ArrayValue:
		if key == "length" {
			return i.resizeArray(v, value, node)
		}
		idx, ok := arrayIndex(key)
		if !ok {
			return i.typeError(node, "Cannot create property '%s' on array", key)
		}
		for len(v.Elements) <= idx {
			v.Elements = append(v.Elements, runtime.UndefinedValue{})
		}
		v.Elements[idx] = value
		return nil
	default:
		return i.typeError(node, "Cannot create property '%s' on %s", key, runtime.TypeOf(object))
	}
}

func (i *Interpreter) resizeArray(arr *runtime.ArrayValue, value runtime.Value, node ast.Node) error {
	n := runtime.ToNumber(value)
	if math.IsNaN(n) || n < 0 || n != math.Trunc(n) {
		return i.rangeError(node, "Invalid array length")
	}
	size := int(n)
	for len(arr.Elements) < size {
		arr.Elements = append(arr.Elements, runtime.UndefinedValue{})
	}
	arr.Elements = arr.Elements[:size]
	return nil
}

func deleteMember(object runtime.Value, key string) bool {
	switch v := object.(type) {
	case *runtime.ObjectValue:
		v.Delete(key)
		return true
	case *runtime.ArrayValue:
		if idx, ok := arrayIndex(key); ok && idx < len(v.Elements) {
			v.Elements[idx] = runtime.UndefinedValue{}
		}
		return true
	default:
		return true
	}
}

// functionMember covers the few properties functions expose, including call
// and apply for explicit this binding.
func (i *Interpreter) functionMember(fn runtime.Value, name, key string) runtime.Value {
	switch key {
	case "name":
		return runtime.StringValue{Val: name}
	case "call":
		return runtime.NewNativeFunction("call", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var boundThis runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				boundThis = args[0]
			}
			rest := args
			if len(rest) > 0 {
				rest = rest[1:]
			}
			return ctx.Call(fn, boundThis, rest)
		})
	case "apply":
		return runtime.NewNativeFunction("apply", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var boundThis runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				boundThis = args[0]
			}
			var rest []runtime.Value
			if len(args) > 1 {
				if arr, ok := args[1].(*runtime.ArrayValue); ok {
					rest = arr.Elements
				}
			}
			return ctx.Call(fn, boundThis, rest)
		})
	case "bind":
		return runtime.NewNativeFunction("bind", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var boundThis runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				boundThis = args[0]
			}
			bound := args
			if len(bound) > 0 {
				bound = bound[1:]
			}
			return runtime.NewNativeFunction("bound", func(ctx *runtime.NativeCallContext, _ runtime.Value, callArgs []runtime.Value) (runtime.Value, error) {
				merged := append(append([]runtime.Value{}, bound...), callArgs...)
				return ctx.Call(fn, boundThis, merged)
			}), nil
		})
	default:
		return runtime.UndefinedValue{}
	}
}

func (i *Interpreter) arrayMethod(arr *runtime.ArrayValue, key string) (runtime.Value, bool) {
	switch key {
	case "push":
		return runtime.NewNativeFunction("push", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			arr.Elements = append(arr.Elements, args...)
			return runtime.NumberValue{Val: float64(len(arr.Elements))}, nil
		}), true
	case "pop":
		return runtime.NewNativeFunction("pop", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(arr.Elements) == 0 {
				return runtime.UndefinedValue{}, nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		}), true
	case "shift":
		return runtime.NewNativeFunction("shift", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(arr.Elements) == 0 {
				return runtime.UndefinedValue{}, nil
			}
			first := arr.Elements[0]
			arr.Elements = append([]runtime.Value{}, arr.Elements[1:]...)
			return first, nil
		}), true
	case "unshift":
		return runtime.NewNativeFunction("unshift", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			arr.Elements = append(append([]runtime.Value{}, args...), arr.Elements...)
			return runtime.NumberValue{Val: float64(len(arr.Elements))}, nil
		}), true
	case "slice":
		return runtime.NewNativeFunction("slice", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			start, end := sliceBounds(len(arr.Elements), args)
			if end < start {
				end = start
			}
			out := make([]runtime.Value, 0, end-start)
			for idx := start; idx < end; idx++ {
				out = append(out, arr.Elements[idx])
			}
			return runtime.NewArray(out...), nil
		}), true
	case "join":
		return runtime.NewNativeFunction("join", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			sep := ","
			if len(args) > 0 && args[0].Kind() != runtime.KindUndefined {
				sep = runtime.ToString(args[0])
			}
			parts := make([]string, len(arr.Elements))
			for idx, elem := range arr.Elements {
				if elem == nil || elem.Kind() == runtime.KindNull || elem.Kind() == runtime.KindUndefined {
					continue
				}
				parts[idx] = runtime.ToString(elem)
			}
			return runtime.StringValue{Val: strings.Join(parts, sep)}, nil
		}), true
	case "indexOf":
		return runtime.NewNativeFunction("indexOf", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var needle runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				needle = args[0]
			}
			for idx, elem := range arr.Elements {
				if elem != nil && runtime.StrictEquals(elem, needle) {
					return runtime.NumberValue{Val: float64(idx)}, nil
				}
			}
			return runtime.NumberValue{Val: -1}, nil
		}), true
	case "includes":
		return runtime.NewNativeFunction("includes", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var needle runtime.Value = runtime.UndefinedValue{}
			if len(args) > 0 {
				needle = args[0]
			}
			for _, elem := range arr.Elements {
				if elem != nil && runtime.StrictEquals(elem, needle) {
					return runtime.BoolValue{Val: true}, nil
				}
			}
			return runtime.BoolValue{Val: false}, nil
		}), true
	case "concat":
		return runtime.NewNativeFunction("concat", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			out := append([]runtime.Value{}, arr.Elements...)
			for _, arg := range args {
				if other, ok := arg.(*runtime.ArrayValue); ok {
					out = append(out, other.Elements...)
					continue
				}
				out = append(out, arg)
			}
			return runtime.NewArray(out...), nil
		}), true
	case "reverse":
		return runtime.NewNativeFunction("reverse", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			for a, b := 0, len(arr.Elements)-1; a < b; a, b = a+1, b-1 {
				arr.Elements[a], arr.Elements[b] = arr.Elements[b], arr.Elements[a]
			}
			return arr, nil
		}), true
	case "map":
		return i.arrayIterationMethod(arr, "map"), true
	case "filter":
		return i.arrayIterationMethod(arr, "filter"), true
	case "forEach":
		return i.arrayIterationMethod(arr, "forEach"), true
	case "find":
		return i.arrayIterationMethod(arr, "find"), true
	}
	return nil, false
}

// arrayIterationMethod implements the callback-driven methods. The callback
// receives (element, index, array) like the real ones.
func (i *Interpreter) arrayIterationMethod(arr *runtime.ArrayValue, mode string) *runtime.NativeFunctionValue {
	return runtime.NewNativeFunction(mode, func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 || !runtime.IsCallable(args[0]) {
			return nil, i.typeError(nil, "%s is not a function", describeValue(argOrUndefined(args, 0)))
		}
		callback := args[0]
		elements := make([]runtime.Value, len(arr.Elements))
		copy(elements, arr.Elements)
		var mapped []runtime.Value
		for idx, elem := range elements {
			if elem == nil {
				elem = runtime.UndefinedValue{}
			}
			res, err := ctx.Call(callback, runtime.UndefinedValue{}, []runtime.Value{elem, runtime.NumberValue{Val: float64(idx)}, arr})
			if err != nil {
				return nil, err
			}
			switch mode {
			case "map":
				mapped = append(mapped, res)
			case "filter":
				if runtime.ToBoolean(res) {
					mapped = append(mapped, elem)
				}
			case "find":
				if runtime.ToBoolean(res) {
					return elem, nil
				}
			}
		}
		switch mode {
		case "map", "filter":
			return runtime.NewArray(mapped...), nil
		case "find":
			return runtime.UndefinedValue{}, nil
		default:
			return runtime.UndefinedValue{}, nil
		}
	})
}

func argOrUndefined(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) && args[idx] != nil {
		return args[idx]
	}
	return runtime.UndefinedValue{}
}

func stringMethod(s, key string) (runtime.Value, bool) {
	runes := []rune(s)
	switch key {
	case "charAt":
		return runtime.NewNativeFunction("charAt", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			idx := 0
			if len(args) > 0 {
				if n := runtime.ToNumber(args[0]); !math.IsNaN(n) {
					idx = int(n)
				}
			}
			if idx < 0 || idx >= len(runes) {
				return runtime.StringValue{Val: ""}, nil
			}
			return runtime.StringValue{Val: string(runes[idx])}, nil
		}), true
	case "charCodeAt":
		return runtime.NewNativeFunction("charCodeAt", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			idx := 0
			if len(args) > 0 {
				idx = int(runtime.ToNumber(args[0]))
			}
			if idx < 0 || idx >= len(runes) {
				return runtime.NumberValue{Val: math.NaN()}, nil
			}
			return runtime.NumberValue{Val: float64(runes[idx])}, nil
		}), true
	case "indexOf":
		return runtime.NewNativeFunction("indexOf", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			needle := runtime.ToString(argOrUndefined(args, 0))
			return runtime.NumberValue{Val: float64(strings.Index(s, needle))}, nil
		}), true
	case "includes":
		return runtime.NewNativeFunction("includes", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			needle := runtime.ToString(argOrUndefined(args, 0))
			return runtime.BoolValue{Val: strings.Contains(s, needle)}, nil
		}), true
	case "startsWith":
		return runtime.NewNativeFunction("startsWith", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.BoolValue{Val: strings.HasPrefix(s, runtime.ToString(argOrUndefined(args, 0)))}, nil
		}), true
	case "endsWith":
		return runtime.NewNativeFunction("endsWith", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.BoolValue{Val: strings.HasSuffix(s, runtime.ToString(argOrUndefined(args, 0)))}, nil
		}), true
	case "slice", "substring":
		return runtime.NewNativeFunction(key, func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			start, end := sliceBounds(len(runes), args)
			if start > end {
				if key == "substring" {
					start, end = end, start
				} else {
					end = start
				}
			}
			return runtime.StringValue{Val: string(runes[start:end])}, nil
		}), true
	case "split":
		return runtime.NewNativeFunction("split", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 || args[0].Kind() == runtime.KindUndefined {
				return runtime.NewArray(runtime.StringValue{Val: s}), nil
			}
			sep := runtime.ToString(args[0])
			var parts []string
			if sep == "" {
				for _, r := range runes {
					parts = append(parts, string(r))
				}
			} else {
				parts = strings.Split(s, sep)
			}
			out := make([]runtime.Value, len(parts))
			for idx, part := range parts {
				out[idx] = runtime.StringValue{Val: part}
			}
			return runtime.NewArray(out...), nil
		}), true
	case "toUpperCase":
		return runtime.NewNativeFunction("toUpperCase", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: strings.ToUpper(s)}, nil
		}), true
	case "toLowerCase":
		return runtime.NewNativeFunction("toLowerCase", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: strings.ToLower(s)}, nil
		}), true
	case "trim":
		return runtime.NewNativeFunction("trim", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: strings.TrimSpace(s)}, nil
		}), true
	case "repeat":
		return runtime.NewNativeFunction("repeat", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			count := int(runtime.ToNumber(argOrUndefined(args, 0)))
			if count < 0 {
				count = 0
			}
			return runtime.StringValue{Val: strings.Repeat(s, count)}, nil
		}), true
	case "replace":
		return runtime.NewNativeFunction("replace", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			pattern := runtime.ToString(argOrUndefined(args, 0))
			replacement := runtime.ToString(argOrUndefined(args, 1))
			return runtime.StringValue{Val: strings.Replace(s, pattern, replacement, 1)}, nil
		}), true
	case "toString":
		return runtime.NewNativeFunction("toString", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: s}, nil
		}), true
	}
	return nil, false
}

func numberMethod(n float64, key string) (runtime.Value, bool) {
	switch key {
	case "toFixed":
		return runtime.NewNativeFunction("toFixed", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			digits := 0
			if len(args) > 0 {
				digits = int(runtime.ToNumber(args[0]))
			}
			return runtime.StringValue{Val: strconv.FormatFloat(n, 'f', digits, 64)}, nil
		}), true
	case "toString":
		return runtime.NewNativeFunction("toString", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(args) > 0 {
				radix := int(runtime.ToNumber(args[0]))
				if radix >= 2 && radix <= 36 && n == math.Trunc(n) && !math.IsInf(n, 0) {
					return runtime.StringValue{Val: strconv.FormatInt(int64(n), radix)}, nil
				}
			}
			return runtime.StringValue{Val: runtime.NumberToString(n)}, nil
		}), true
	}
	return nil, false
}

// sliceBounds normalizes optional start/end arguments, counting negatives
// from the end. Callers resolve a crossed range themselves: slice collapses
// it, substring swaps the endpoints.
func sliceBounds(length int, args []runtime.Value) (int, int) {
	normalize := func(val runtime.Value, fallback int) int {
		if val == nil || val.Kind() == runtime.KindUndefined {
			return fallback
		}
		n := runtime.ToNumber(val)
		if math.IsNaN(n) {
			return 0
		}
		idx := int(n)
		if idx < 0 {
			idx += length
		}
		if idx < 0 {
			idx = 0
		}
		if idx > length {
			idx = length
		}
		return idx
	}
	start := normalize(argOrUndefined(args, 0), 0)
	end := normalize(argOrUndefined(args, 1), length)
	return start, end
}
