package runtime

import (
	"math"
	"testing"
)

func num(n float64) NumberValue { return NumberValue{Val: n} }
func str(s string) StringValue  { return StringValue{Val: s} }
func boolean(b bool) BoolValue  { return BoolValue{Val: b} }

func TestToBooleanTruthinessTable(t *testing.T) {
	falsy := []Value{
		UndefinedValue{},
		NullValue{},
		boolean(false),
		num(0),
		num(math.NaN()),
		str(""),
		NewArray(),
		NewObject(),
	}
	for _, val := range falsy {
		if ToBoolean(val) {
			t.Fatalf("expected %v to be falsy", ToString(val))
		}
	}

	full := NewObject()
	full.Set("a", num(1))
	truthy := []Value{
		boolean(true),
		num(-1),
		num(math.Inf(1)),
		str("0"),
		str("false"),
		NewArray(num(1)),
		full,
		NewNativeFunction("f", nil),
	}
	for _, val := range truthy {
		if !ToBoolean(val) {
			t.Fatalf("expected %v to be truthy", ToString(val))
		}
	}
}

func TestToNumberConversions(t *testing.T) {
	cases := []struct {
		in   Value
		want float64
	}{
		{NullValue{}, 0},
		{boolean(true), 1},
		{boolean(false), 0},
		{str(""), 0},
		{str("  42  "), 42},
		{str("3.5"), 3.5},
		{str("0x10"), 16},
		{str("0b101"), 5},
		{str("0o17"), 15},
		{str("-Infinity"), math.Inf(-1)},
	}
	for _, tc := range cases {
		if got := ToNumber(tc.in); got != tc.want {
			t.Fatalf("ToNumber(%v) = %v, want %v", ToString(tc.in), got, tc.want)
		}
	}

	nans := []Value{UndefinedValue{}, str("12abc"), str("inf"), str("nan"), NewObject()}
	for _, val := range nans {
		if got := ToNumber(val); !math.IsNaN(got) {
			t.Fatalf("ToNumber(%v) = %v, want NaN", ToString(val), got)
		}
	}
}

func TestNumberToStringRendering(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
		{3.14, "3.14"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
	}
	for _, tc := range cases {
		if got := NumberToString(tc.in); got != tc.want {
			t.Fatalf("NumberToString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToStringCompositeValues(t *testing.T) {
	arr := NewArray(num(1), str("two"), NullValue{})
	if got := ToString(arr); got != "[1,two,null]" {
		t.Fatalf("array rendering = %q", got)
	}
	if got := ToString(NewObject()); got != "[object Object]" {
		t.Fatalf("object rendering = %q", got)
	}
	if got := ToString(NewNativeFunction("keys", nil)); got != "function keys() { [native code] }" {
		t.Fatalf("native rendering = %q", got)
	}
}

func TestTypeOfTable(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{UndefinedValue{}, "undefined"},
		{NullValue{}, "object"},
		{boolean(true), "boolean"},
		{num(1), "number"},
		{str("x"), "string"},
		{NewArray(), "object"},
		{NewObject(), "object"},
		{NewNativeFunction("f", nil), "function"},
		{&FunctionValue{}, "function"},
	}
	for _, tc := range cases {
		if got := TypeOf(tc.in); got != tc.want {
			t.Fatalf("TypeOf(%v) = %q, want %q", ToString(tc.in), got, tc.want)
		}
	}
}

func TestStrictEqualsRejectsNullishOperands(t *testing.T) {
	if StrictEquals(NullValue{}, NullValue{}) {
		t.Fatalf("null === null should be false")
	}
	if StrictEquals(UndefinedValue{}, UndefinedValue{}) {
		t.Fatalf("undefined === undefined should be false")
	}
	if StrictEquals(NullValue{}, UndefinedValue{}) {
		t.Fatalf("null === undefined should be false")
	}
}

func TestStrictEqualsValueAndIdentity(t *testing.T) {
	if !StrictEquals(num(1), num(1)) {
		t.Fatalf("1 === 1")
	}
	if StrictEquals(num(1), str("1")) {
		t.Fatalf("1 === '1' must not coerce")
	}
	if StrictEquals(num(math.NaN()), num(math.NaN())) {
		t.Fatalf("NaN === NaN should be false")
	}
	if !StrictEquals(num(0), num(math.Copysign(0, -1))) {
		t.Fatalf("0 === -0 should be true")
	}

	a := NewArray(num(1))
	b := NewArray(num(1))
	if StrictEquals(a, b) {
		t.Fatalf("distinct arrays must compare by identity")
	}
	if !StrictEquals(a, a) {
		t.Fatalf("same array must equal itself")
	}
}

func TestLooseEqualsCoercionTable(t *testing.T) {
	equal := [][2]Value{
		{NullValue{}, UndefinedValue{}},
		{num(5), str("5")},
		{str("5"), num(5)},
		{boolean(true), num(1)},
		{boolean(false), str("")},
		{str("0"), boolean(false)},
	}
	for _, pair := range equal {
		if !LooseEquals(pair[0], pair[1]) {
			t.Fatalf("%v == %v should hold", ToString(pair[0]), ToString(pair[1]))
		}
	}

	unequal := [][2]Value{
		{NullValue{}, num(0)},
		{UndefinedValue{}, str("")},
		{num(math.NaN()), num(math.NaN())},
		{str("abc"), num(0)},
	}
	for _, pair := range unequal {
		if LooseEquals(pair[0], pair[1]) {
			t.Fatalf("%v == %v should not hold", ToString(pair[0]), ToString(pair[1]))
		}
	}
}
