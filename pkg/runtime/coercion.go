package runtime

import (
	"math"
	"strconv"
	"strings"
)

// The coercion engine: pure functions over values implementing the
// JavaScript conversion and equality tables.

// ToBoolean implements the truthiness table: undefined, null, false, 0,
// NaN, the empty string, and empty collections are false; everything else
// is true.
func ToBoolean(val Value) bool {
	switch v := val.(type) {
	case UndefinedValue, NullValue:
		return false
	case BoolValue:
		return v.Val
	case NumberValue:
		return v.Val != 0 && !math.IsNaN(v.Val)
	case StringValue:
		return v.Val != ""
	case *ArrayValue:
		return len(v.Elements) > 0
	case *ObjectValue:
		return v.Len() > 0
	default:
		return true
	}
}

// ToNumber implements numeric coercion: null is 0, booleans are 0/1,
// strings parse with JS numeric-literal rules, and anything object-like is
// NaN.
func ToNumber(val Value) float64 {
	switch v := val.(type) {
	case UndefinedValue:
		return math.NaN()
	case NullValue:
		return 0
	case BoolValue:
		if v.Val {
			return 1
		}
		return 0
	case NumberValue:
		return v.Val
	case StringValue:
		return StringToNumber(v.Val)
	default:
		return math.NaN()
	}
}

// StringToNumber parses a string with JS numeric-literal rules: surrounding
// whitespace is trimmed, the empty string is 0, signed Infinity forms are
// honored, 0x/0o/0b prefixes are integer literals, and anything unparsable
// is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if n, ok := parseRadixLiteral(s); ok {
		return n
	}
	// strconv accepts spellings like "inf" and "nan" that JS rejects.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.ContainsAny(s, "pP_") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func parseRadixLiteral(s string) (float64, bool) {
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if len(s) < 3 || s[0] != '0' {
		return 0, false
	}
	var base int
	switch s[1] {
	case 'x', 'X':
		base = 16
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	default:
		return 0, false
	}
	n, err := strconv.ParseUint(s[2:], base, 64)
	if err != nil {
		return math.NaN(), true
	}
	val := float64(n)
	if neg {
		val = -val
	}
	return val, true
}

// NumberToString renders a float the way JS does: NaN and the infinities by
// name, integral values without a decimal point, everything else in the
// shortest round-trip form.
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	out := strconv.FormatFloat(n, 'g', -1, 64)
	// strconv zero-pads single-digit exponents ("1e+07"); JS does not.
	if i := strings.IndexAny(out, "eE"); i >= 0 && i+2 < len(out) {
		mantissa, exp := out[:i+1], out[i+1:]
		sign := ""
		if exp[0] == '+' || exp[0] == '-' {
			sign, exp = string(exp[0]), exp[1:]
		}
		exp = strings.TrimLeft(exp, "0")
		if exp == "" {
			exp = "0"
		}
		out = mantissa + sign + exp
	}
	return out
}

// ToString renders any value as a string, mirroring ToNumber's special
// forms. Arrays render recursively as [e1,e2,...]; plain objects use the
// classic object tag.
func ToString(val Value) string {
	switch v := val.(type) {
	case UndefinedValue:
		return "undefined"
	case NullValue:
		return "null"
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case NumberValue:
		return NumberToString(v.Val)
	case StringValue:
		return v.Val
	case *ArrayValue:
		parts := make([]string, len(v.Elements))
		for i, elem := range v.Elements {
			parts[i] = ToString(elem)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case *ObjectValue:
		return "[object Object]"
	case *FunctionValue:
		name := v.Name()
		if v.Declaration != nil && v.Declaration.Generator {
			return "function* " + name + "() { ... }"
		}
		return "function " + name + "() { ... }"
	case *NativeFunctionValue:
		return "function " + v.FuncName + "() { [native code] }"
	case *GeneratorValue:
		return "[object Generator]"
	case ErrorValue:
		return v.String()
	default:
		if _, ok := val.(Callable); ok {
			return "function () { [native code] }"
		}
		return "[object Object]"
	}
}

// TypeOf implements the typeof table. Unresolved bindings are handled by
// the evaluator before this is consulted.
func TypeOf(val Value) string {
	switch val.(type) {
	case UndefinedValue:
		return "undefined"
	case NullValue:
		return "object"
	case BoolValue:
		return "boolean"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case *FunctionValue:
		return "function"
	case Callable:
		return "function"
	default:
		return "object"
	}
}

// StrictEquals never coerces: both sides must be non-null, non-undefined,
// share a runtime tag, and be value-equal. NaN is unequal to itself;
// objects, arrays, and functions compare by identity.
func StrictEquals(a, b Value) bool {
	switch a.(type) {
	case UndefinedValue, NullValue:
		return false
	}
	switch b.(type) {
	case UndefinedValue, NullValue:
		return false
	}
	switch av := a.(type) {
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val // NaN != NaN falls out of the float compare
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	default:
		return a == b
	}
}

// LooseEquals follows the abstract-equality coercion table. null and
// undefined are mutually equal and equal only to each other; a boolean
// operand coerces to number before recursing; and a string compared
// against a number coerces to number. The coercion order is observable, so
// the steps below are deliberate.
func LooseEquals(a, b Value) bool {
	aNullish := isNullish(a)
	bNullish := isNullish(b)
	if aNullish || bNullish {
		return aNullish && bNullish
	}
	if av, ok := a.(BoolValue); ok {
		return LooseEquals(NumberValue{Val: ToNumber(av)}, b)
	}
	if bv, ok := b.(BoolValue); ok {
		return LooseEquals(a, NumberValue{Val: ToNumber(bv)})
	}
	if av, ok := a.(StringValue); ok {
		if _, isNum := b.(NumberValue); isNum {
			return LooseEquals(NumberValue{Val: StringToNumber(av.Val)}, b)
		}
	}
	if bv, ok := b.(StringValue); ok {
		if _, isNum := a.(NumberValue); isNum {
			return LooseEquals(a, NumberValue{Val: StringToNumber(bv.Val)})
		}
	}
	switch av := a.(type) {
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	default:
		return a == b
	}
}

func isNullish(val Value) bool {
	switch val.(type) {
	case UndefinedValue, NullValue:
		return true
	}
	return false
}
