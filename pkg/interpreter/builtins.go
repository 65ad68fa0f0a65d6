package interpreter

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"

	"tinyjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installGlobals() {
	global := i.global

	define := func(name string, val runtime.Value) {
		_ = global.Declare(runtime.DeclConst, name, val)
	}

	define("undefined", runtime.UndefinedValue{})
	define("NaN", runtime.NumberValue{Val: math.NaN()})
	define("Infinity", runtime.NumberValue{Val: math.Inf(1)})
	define("globalThis", runtime.NewObject())

	define("console", i.consoleObject())
	define("Math", mathObject())
	define("Object", objectNamespace())
	define("Array", arrayNamespace())
	define("JSON", i.jsonObject())
	define("Date", dateObject())

	define("String", runtime.NewNativeFunction("String", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.StringValue{Val: ""}, nil
		}
		return runtime.StringValue{Val: runtime.ToString(args[0])}, nil
	}))
	define("Number", runtime.NewNativeFunction("Number", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NumberValue{Val: 0}, nil
		}
		return runtime.NumberValue{Val: runtime.ToNumber(args[0])}, nil
	}))
	define("Boolean", runtime.NewNativeFunction("Boolean", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.BoolValue{Val: false}, nil
		}
		return runtime.BoolValue{Val: runtime.ToBoolean(args[0])}, nil
	}))

	define("parseInt", runtime.NewNativeFunction("parseInt", nativeParseInt))
	define("parseFloat", runtime.NewNativeFunction("parseFloat", nativeParseFloat))
	define("isNaN", runtime.NewNativeFunction("isNaN", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: math.IsNaN(runtime.ToNumber(argOrUndefined(args, 0)))}, nil
	}))
	define("isFinite", runtime.NewNativeFunction("isFinite", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n := runtime.ToNumber(argOrUndefined(args, 0))
		return runtime.BoolValue{Val: !math.IsNaN(n) && !math.IsInf(n, 0)}, nil
	}))

	for _, kind := range []string{"Error", "TypeError", "RangeError", "ReferenceError", "SyntaxError"} {
		k := kind
		define(k, runtime.NewNativeFunction(k, func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			msg := ""
			if len(args) > 0 && args[0].Kind() != runtime.KindUndefined {
				msg = runtime.ToString(args[0])
			}
			errKind := k
			if errKind == "Error" {
				errKind = ""
			}
			return runtime.ErrorValue{ErrKind: errKind, Message: msg}, nil
		}))
	}

	i.installTimers()
	i.installModuleSystem()
}

// consoleObject writes space-joined stringified arguments, log/info to
// stdout and warn/error to stderr.
func (i *Interpreter) consoleObject() *runtime.ObjectValue {
	console := runtime.NewObject()
	write := func(out func() io.Writer) runtime.NativeFunc {
		return func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			parts := make([]string, len(args))
			for idx, arg := range args {
				parts[idx] = consoleFormat(arg)
			}
			fmt.Fprintln(out(), strings.Join(parts, " "))
			return runtime.UndefinedValue{}, nil
		}
	}
	stdout := func() io.Writer { return i.stdout }
	stderr := func() io.Writer { return i.stderr }
	console.Set("log", runtime.NewNativeFunction("log", write(stdout)))
	console.Set("info", runtime.NewNativeFunction("info", write(stdout)))
	console.Set("warn", runtime.NewNativeFunction("warn", write(stderr)))
	console.Set("error", runtime.NewNativeFunction("error", write(stderr)))
	return console
}

// consoleFormat renders objects with visible structure instead of the
// bare [object Object] coercion.
func consoleFormat(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.StringValue:
		return v.Val
	case *runtime.ObjectValue:
		parts := make([]string, 0, v.Len())
		for _, key := range v.Keys() {
			member, _ := v.Get(key)
			parts = append(parts, key+": "+consoleFormatNested(member))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *runtime.ArrayValue:
		parts := make([]string, len(v.Elements))
		for idx, elem := range v.Elements {
			parts[idx] = consoleFormatNested(elem)
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case runtime.ErrorValue:
		return v.String()
	default:
		return runtime.ToString(val)
	}
}

func consoleFormatNested(val runtime.Value) string {
	if val == nil {
		return "undefined"
	}
	if s, ok := val.(runtime.StringValue); ok {
		return "'" + s.Val + "'"
	}
	return consoleFormat(val)
}

func mathObject() *runtime.ObjectValue {
	obj := runtime.NewObject()
	obj.Set("PI", runtime.NumberValue{Val: math.Pi})
	obj.Set("E", runtime.NumberValue{Val: math.E})

	unary := func(name string, fn func(float64) float64) {
		obj.Set(name, runtime.NewNativeFunction(name, func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.NumberValue{Val: fn(runtime.ToNumber(argOrUndefined(args, 0)))}, nil
		}))
	}
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", func(n float64) float64 { return math.Floor(n + 0.5) })
	unary("trunc", math.Trunc)
	unary("abs", math.Abs)
	unary("sqrt", math.Sqrt)
	unary("log", math.Log)
	unary("exp", math.Exp)
	unary("sin", math.Sin)
	unary("cos", math.Cos)

	obj.Set("pow", runtime.NewNativeFunction("pow", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		base := runtime.ToNumber(argOrUndefined(args, 0))
		exp := runtime.ToNumber(argOrUndefined(args, 1))
		return runtime.NumberValue{Val: math.Pow(base, exp)}, nil
	}))
	obj.Set("min", runtime.NewNativeFunction("min", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return mathExtreme(args, math.Inf(1), math.Min), nil
	}))
	obj.Set("max", runtime.NewNativeFunction("max", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return mathExtreme(args, math.Inf(-1), math.Max), nil
	}))
	obj.Set("random", runtime.NewNativeFunction("random", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: rand.Float64()}, nil
	}))
	return obj
}

func mathExtreme(args []runtime.Value, start float64, pick func(float64, float64) float64) runtime.Value {
	result := start
	for _, arg := range args {
		n := runtime.ToNumber(arg)
		if math.IsNaN(n) {
			return runtime.NumberValue{Val: math.NaN()}
		}
		result = pick(result, n)
	}
	return runtime.NumberValue{Val: result}
}

func objectNamespace() *runtime.ObjectValue {
	obj := runtime.NewObject()
	obj.Set("keys", runtime.NewNativeFunction("keys", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		keys := enumerableKeys(argOrUndefined(args, 0))
		out := make([]runtime.Value, len(keys))
		for idx, key := range keys {
			out[idx] = runtime.StringValue{Val: key}
		}
		return runtime.NewArray(out...), nil
	}))
	obj.Set("values", runtime.NewNativeFunction("values", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch v := argOrUndefined(args, 0).(type) {
		case *runtime.ObjectValue:
			out := make([]runtime.Value, 0, v.Len())
			for _, key := range v.Keys() {
				val, _ := v.Get(key)
				out = append(out, val)
			}
			return runtime.NewArray(out...), nil
		case *runtime.ArrayValue:
			return runtime.NewArray(append([]runtime.Value{}, v.Elements...)...), nil
		default:
			return runtime.NewArray(), nil
		}
	}))
	obj.Set("entries", runtime.NewNativeFunction("entries", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		source, ok := argOrUndefined(args, 0).(*runtime.ObjectValue)
		if !ok {
			return runtime.NewArray(), nil
		}
		out := make([]runtime.Value, 0, source.Len())
		for _, key := range source.Keys() {
			val, _ := source.Get(key)
			out = append(out, runtime.NewArray(runtime.StringValue{Val: key}, val))
		}
		return runtime.NewArray(out...), nil
	}))
	obj.Set("assign", runtime.NewNativeFunction("assign", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		target, ok := argOrUndefined(args, 0).(*runtime.ObjectValue)
		if !ok {
			return argOrUndefined(args, 0), nil
		}
		for _, arg := range args[1:] {
			source, ok := arg.(*runtime.ObjectValue)
			if !ok {
				continue
			}
			for _, key := range source.Keys() {
				val, _ := source.Get(key)
				target.Set(key, val)
			}
		}
		return target, nil
	}))
	return obj
}

func arrayNamespace() *runtime.ObjectValue {
	obj := runtime.NewObject()
	obj.Set("isArray", runtime.NewNativeFunction("isArray", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		_, ok := argOrUndefined(args, 0).(*runtime.ArrayValue)
		return runtime.BoolValue{Val: ok}, nil
	}))
	obj.Set("from", runtime.NewNativeFunction("from", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch v := argOrUndefined(args, 0).(type) {
		case *runtime.ArrayValue:
			return runtime.NewArray(append([]runtime.Value{}, v.Elements...)...), nil
		case runtime.StringValue:
			out := make([]runtime.Value, 0, len(v.Val))
			for _, r := range v.Val {
				out = append(out, runtime.StringValue{Val: string(r)})
			}
			return runtime.NewArray(out...), nil
		case *runtime.GeneratorValue:
			var out []runtime.Value
			for {
				res, err := v.Next(runtime.UndefinedValue{})
				if err != nil {
					return nil, err
				}
				if res.Done {
					return runtime.NewArray(out...), nil
				}
				out = append(out, res.Value)
			}
		default:
			return runtime.NewArray(), nil
		}
	}))
	return obj
}

func dateObject() *runtime.ObjectValue {
	obj := runtime.NewObject()
	obj.Set("now", runtime.NewNativeFunction("now", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: float64(time.Now().UnixMilli())}, nil
	}))
	return obj
}

func nativeParseInt(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	text := strings.TrimSpace(runtime.ToString(argOrUndefined(args, 0)))
	radix := 0
	if len(args) > 1 {
		if n := runtime.ToNumber(args[1]); !math.IsNaN(n) {
			radix = int(n)
		}
	}
	sign := 1.0
	if strings.HasPrefix(text, "-") {
		sign = -1
		text = text[1:]
	} else {
		text = strings.TrimPrefix(text, "+")
	}
	if radix == 0 {
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			radix = 16
			text = text[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 {
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			text = text[2:]
		}
	}
	if radix < 2 || radix > 36 {
		return runtime.NumberValue{Val: math.NaN()}, nil
	}
	result := math.NaN()
	acc := 0.0
	seen := false
	for _, r := range text {
		digit := digitValue(r)
		if digit < 0 || digit >= radix {
			break
		}
		acc = acc*float64(radix) + float64(digit)
		seen = true
	}
	if seen {
		result = sign * acc
	}
	return runtime.NumberValue{Val: result}, nil
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	default:
		return -1
	}
}

func nativeParseFloat(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	text := strings.TrimSpace(runtime.ToString(argOrUndefined(args, 0)))
	// longest numeric prefix wins, NaN when there is none
	end := 0
	seenDigit := false
	seenDot := false
	seenExp := false
	for idx, r := range text {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case (r == '+' || r == '-') && idx == 0:
		case r == '.' && !seenDot && !seenExp:
			seenDot = true
		case (r == 'e' || r == 'E') && seenDigit && !seenExp:
			seenExp = true
			seenDigit = false
		case (r == '+' || r == '-') && idx > 0 && (text[idx-1] == 'e' || text[idx-1] == 'E'):
		default:
			goto done
		}
		end = idx + 1
	}
done:
	if !seenDigit && !strings.ContainsAny(text[:end], "0123456789") {
		if strings.HasPrefix(text, "Infinity") || strings.HasPrefix(text, "+Infinity") {
			return runtime.NumberValue{Val: math.Inf(1)}, nil
		}
		if strings.HasPrefix(text, "-Infinity") {
			return runtime.NumberValue{Val: math.Inf(-1)}, nil
		}
		return runtime.NumberValue{Val: math.NaN()}, nil
	}
	return runtime.NumberValue{Val: runtime.StringToNumber(text[:end])}, nil
}
