package interpreter

import (
	"math"
	"strings"
	"testing"

	"tinyjs/interpreter-go/pkg/parser"
	"tinyjs/interpreter-go/pkg/runtime"
)

func evalSource(t *testing.T, source string) (runtime.Value, *Interpreter) {
	t.Helper()
	program, err := parser.ParseProgram([]byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	interp := New()
	val, _, err := interp.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	return val, interp
}

func evalError(t *testing.T, source string) error {
	t.Helper()
	program, err := parser.ParseProgram([]byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, _, err = New().EvaluateProgram(program)
	if err == nil {
		t.Fatalf("expected evaluation error")
	}
	return err
}

func expectNumber(t *testing.T, source string, want float64) {
	t.Helper()
	val, _ := evalSource(t, source)
	n, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("want number %v, got %#v", want, val)
	}
	if math.IsNaN(want) {
		if !math.IsNaN(n.Val) {
			t.Fatalf("want NaN, got %v", n.Val)
		}
		return
	}
	if n.Val != want {
		t.Fatalf("want %v, got %v", want, n.Val)
	}
}

func expectString(t *testing.T, source, want string) {
	t.Helper()
	val, _ := evalSource(t, source)
	s, ok := val.(runtime.StringValue)
	if !ok || s.Val != want {
		t.Fatalf("want %q, got %#v", want, val)
	}
}

func expectBool(t *testing.T, source string, want bool) {
	t.Helper()
	val, _ := evalSource(t, source)
	b, ok := val.(runtime.BoolValue)
	if !ok || b.Val != want {
		t.Fatalf("want %v, got %#v", want, val)
	}
}

func TestArithmeticAndCoercion(t *testing.T) {
	expectNumber(t, "1 + 2 * 3;", 7)
	expectNumber(t, "10 % 3;", 1)
	expectNumber(t, "2 ** 10;", 1024)
	expectNumber(t, "\"5\" - 2;", 3)
	expectNumber(t, "1 / 0;", math.Inf(1))
	expectNumber(t, "0 / 0;", math.NaN())
	expectString(t, "1 + \"2\";", "12")
	expectString(t, "\"sum: \" + (1 + 2);", "sum: 3")
	// only strings trigger concatenation, composites numify to NaN
	expectNumber(t, "[1] + 1;", math.NaN())
	expectNumber(t, "({}) + 1;", math.NaN())
	expectString(t, "\"x\" + [1, 2];", "x[1,2]")
	expectNumber(t, "+\"42\";", 42)
	expectNumber(t, "-true;", -1)
}

func TestComparisonOperators(t *testing.T) {
	expectBool(t, "1 < 2;", true)
	expectBool(t, "\"a\" < \"b\";", true)
	expectBool(t, "\"10\" < \"9\";", true) // both strings compare lexicographically
	expectBool(t, "\"10\" < 9;", false)
	expectBool(t, "5 == \"5\";", true)
	expectBool(t, "5 === \"5\";", false)
	expectBool(t, "null == undefined;", true)
	expectBool(t, "null === null;", false)
	expectBool(t, "NaN == NaN;", false)
}

func TestLogicalOperatorsReturnOperands(t *testing.T) {
	expectString(t, "\"\" || \"fallback\";", "fallback")
	expectNumber(t, "0 ?? 42;", 0)
	expectNumber(t, "null ?? 42;", 42)
	expectString(t, "\"left\" && \"right\";", "right")
	expectBool(t, "false && neverEvaluated();", false)
}

func TestShortCircuitSkipsRightSide(t *testing.T) {
	val, _ := evalSource(t, `
		let calls = 0;
		function bump() { calls++; return true; }
		false && bump();
		true || bump();
		1 ?? bump();
		calls;
	`)
	if n := val.(runtime.NumberValue); n.Val != 0 {
		t.Fatalf("short-circuited operand was evaluated %v times", n.Val)
	}
}

func TestBitwiseOperatorsUseInt32Semantics(t *testing.T) {
	expectNumber(t, "5 & 3;", 1)
	expectNumber(t, "5 | 3;", 7)
	expectNumber(t, "5 ^ 3;", 6)
	expectNumber(t, "~0;", -1)
	expectNumber(t, "1 << 33;", 2) // shift count masks to 5 bits
	expectNumber(t, "-8 >> 1;", -4)
	expectNumber(t, "-1 >>> 0;", 4294967295)
}

func TestTypeofTable(t *testing.T) {
	expectString(t, "typeof undefined;", "undefined")
	expectString(t, "typeof null;", "object")
	expectString(t, "typeof 1;", "number")
	expectString(t, "typeof \"s\";", "string")
	expectString(t, "typeof true;", "boolean")
	expectString(t, "typeof [];", "object")
	expectString(t, "typeof {};", "object")
	expectString(t, "typeof function() {};", "function")
	// typeof is the one operator that tolerates unresolved names
	expectString(t, "typeof neverDeclared;", "undefined")
}

func TestVariableSemantics(t *testing.T) {
	expectNumber(t, "let x = 1; x = 2; x;", 2)
	// strict equality rejects nullish operands, so probe with typeof
	expectNumber(t, "let y; typeof y === \"undefined\" ? 1 : 0;", 1)

	err := evalError(t, "const c = 1; c = 2;")
	if !strings.Contains(err.Error(), "constant") {
		t.Fatalf("const assignment error = %v", err)
	}

	err = evalError(t, "const broken;")
	if !strings.Contains(err.Error(), "Missing initializer") {
		t.Fatalf("const without init error = %v", err)
	}

	err = evalError(t, "ghost = 1;")
	if !strings.Contains(err.Error(), "not defined") {
		t.Fatalf("implicit global error = %v", err)
	}

	err = evalError(t, "let d = 1; let d = 2;")
	if !strings.Contains(err.Error(), "already been declared") {
		t.Fatalf("redeclaration error = %v", err)
	}
}

func TestBlockScoping(t *testing.T) {
	expectNumber(t, `
		let x = 1;
		{ let x = 2; }
		x;
	`, 1)

	err := evalError(t, "{ let inner = 1; } inner;")
	if !strings.Contains(err.Error(), "inner is not defined") {
		t.Fatalf("leaked block binding, err = %v", err)
	}
}

func TestClosureCounterSharesState(t *testing.T) {
	expectNumber(t, `
		function makeCounter() {
			let count = 0;
			return function() { count++; return count; };
		}
		let tick = makeCounter();
		tick();
		tick();
		tick();
	`, 3)
}

func TestSiblingClosuresAliasOneCell(t *testing.T) {
	expectNumber(t, `
		let value = 0;
		function write(n) { value = n; }
		function read() { return value; }
		write(42);
		read();
	`, 42)
}

func TestRecursionAndMutualRecursion(t *testing.T) {
	program, err := parser.ParseProgram([]byte(`
		function factorial(n) {
			if (n <= 1) { return 1; }
			return n * factorial(n - 1);
		}
		factorial(10);
	`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	interp := New()
	before := interp.GlobalEnvironment().Depth()
	val, env, err := interp.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if n, ok := val.(runtime.NumberValue); !ok || n.Val != 3628800 {
		t.Fatalf("factorial(10) = %#v, want 3628800", val)
	}
	// ten nested activations all unwound, leaving the chain where it started
	if env.Depth() != before {
		t.Fatalf("scope depth = %d after call chain, want %d", env.Depth(), before)
	}

	// declarations hoist, so isOdd is visible before its textual definition
	expectBool(t, `
		function isEven(n) { return n === 0 ? true : isOdd(n - 1); }
		function isOdd(n) { return n === 0 ? false : isEven(n - 1); }
		isEven(10);
	`, true)
}

func TestNamedFunctionExpressionSelfReference(t *testing.T) {
	expectNumber(t, `
		let fib = function self(n) {
			return n < 2 ? n : self(n - 1) + self(n - 2);
		};
		fib(10);
	`, 55)
}

func TestMissingArgumentsBindUndefined(t *testing.T) {
	expectBool(t, "function f(a, b) { return b == undefined; } f(1);", true)
	expectNumber(t, "function g(a) { return a; } g(1, 2, 3);", 1)
	expectNumber(t, "function h() { return arguments.length; } h(1, 2, 3);", 3)
}

func TestThisBinding(t *testing.T) {
	expectNumber(t, `
		let obj = {
			value: 7,
			read: function() { return this.value; }
		};
		obj.read();
	`, 7)

	// detached call loses the receiver
	expectBool(t, `
		let obj = { read: function() { return this; } };
		let f = obj.read;
		f() == undefined;
	`, true)
}

func TestArrowFunctionsResolveThisLexically(t *testing.T) {
	expectNumber(t, `
		let obj = {
			value: 9,
			make: function() { return () => this.value; }
		};
		obj.make()();
	`, 9)
}

func TestControlFlowStatements(t *testing.T) {
	expectNumber(t, "let x = 0; if (true) { x = 1; } else { x = 2; } x;", 1)
	expectNumber(t, "let n = 0; while (n < 5) { n++; } n;", 5)
	expectNumber(t, "let m = 10; do { m--; } while (false); m;", 9)
	expectNumber(t, `
		let sum = 0;
		for (let i = 1; i <= 4; i++) { sum += i; }
		sum;
	`, 10)
}

func TestBreakAndContinue(t *testing.T) {
	expectNumber(t, `
		let sum = 0;
		for (let i = 0; i < 10; i++) {
			if (i === 3) { continue; }
			if (i === 6) { break; }
			sum += i;
		}
		sum;
	`, 12)
}

func TestLabeledBreakAndContinue(t *testing.T) {
	expectNumber(t, `
		let count = 0;
		outer: for (let i = 0; i < 3; i++) {
			for (let j = 0; j < 3; j++) {
				if (j === 1) { continue outer; }
				if (i === 2) { break outer; }
				count++;
			}
		}
		count;
	`, 2)
}

func TestLetPerIterationCapture(t *testing.T) {
	expectString(t, `
		let fns = [];
		for (let i = 0; i < 3; i++) {
			fns.push(function() { return i; });
		}
		"" + fns[0]() + fns[1]() + fns[2]();
	`, "012")
}

func TestForOfIteratesValues(t *testing.T) {
	expectNumber(t, `
		let total = 0;
		for (const n of [10, 20, 30]) { total += n; }
		total;
	`, 60)
	expectString(t, `
		let out = "";
		for (const ch of "abc") { out = ch + out; }
		out;
	`, "cba")
}

func TestForInIteratesKeys(t *testing.T) {
	expectString(t, `
		let keys = "";
		for (let k in { a: 1, b: 2, c: 3 }) { keys += k; }
		keys;
	`, "abc")
	expectString(t, `
		let idx = "";
		for (let k in ["x", "y"]) { idx += k; }
		idx;
	`, "01")
}

func TestForOfRejectsNonIterables(t *testing.T) {
	err := evalError(t, "for (const x of 42) {}")
	if !strings.Contains(err.Error(), "not iterable") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSwitchMatchingAndFallthrough(t *testing.T) {
	expectString(t, `
		function pick(x) {
			let out = "";
			switch (x) {
			case 1:
				out += "one ";
			case 2:
				out += "two";
				break;
			default:
				out = "other";
			}
			return out;
		}
		pick(1) + "|" + pick(2) + "|" + pick(9);
	`, "one two|two|other")

	// switch matching is stricter than ===: nullish discriminants still
	// find their own case
	expectString(t, `
		function tag(x) {
			switch (x) {
			case null: return "null";
			case undefined: return "undefined";
			default: return "other";
			}
		}
		tag(null) + "," + tag(undefined) + "," + tag(0);
	`, "null,undefined,other")
}

func TestThrowAndCatch(t *testing.T) {
	expectString(t, `
		let seen = "";
		try {
			throw "payload";
		} catch (e) {
			seen = e;
		}
		seen;
	`, "payload")

	expectString(t, `
		let name = "";
		try {
			null.field;
		} catch (e) {
			name = e.name;
		}
		name;
	`, "TypeError")
}

func TestFinallyAlwaysRuns(t *testing.T) {
	expectString(t, `
		let log = "";
		function run() {
			try {
				log += "try ";
				return "from-try";
			} finally {
				log += "finally";
			}
		}
		run() + ": " + log;
	`, "from-try: try finally")

	// an abrupt finally wins over the try outcome
	expectString(t, `
		function run() {
			try {
				throw "lost";
			} finally {
				return "kept";
			}
		}
		run();
	`, "kept")
}

func TestCallerStateSurvivesThrow(t *testing.T) {
	expectNumber(t, `
		let x = 1;
		function boom() { let x = 99; throw "up"; }
		try { boom(); } catch (e) {}
		x;
	`, 1)
}

func TestUncaughtThrowReachesBoundary(t *testing.T) {
	err := evalError(t, "throw \"unhandled\";")
	if !strings.Contains(err.Error(), "unhandled") {
		t.Fatalf("boundary error = %v", err)
	}
	uncaught, ok := err.(*UncaughtError)
	if !ok {
		t.Fatalf("expected UncaughtError, got %T", err)
	}
	if uncaught.Value == nil {
		t.Fatalf("uncaught error lost its payload")
	}
}

func TestReferenceErrorsArePositioned(t *testing.T) {
	err := evalError(t, "let a = 1;\nmissing();")
	msg := err.Error()
	if !strings.Contains(msg, "missing is not defined") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(msg, "line 2") {
		t.Fatalf("missing position, message = %q", msg)
	}
}

func TestCallingNonFunctions(t *testing.T) {
	err := evalError(t, "let x = 5; x();")
	if !strings.Contains(err.Error(), "is not a function") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestIllegalReturnAtTopLevel(t *testing.T) {
	err := evalError(t, "return 1;")
	if !strings.Contains(err.Error(), "Illegal return") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMemberAccessAndMutation(t *testing.T) {
	expectNumber(t, "let o = { a: 1 }; o.b = 2; o.a + o.b;", 3)
	expectNumber(t, "let o = {}; o[\"k\" + 1] = 5; o.k1;", 5)
	expectBool(t, "let o = { a: 1 }; delete o.a; o.a == undefined;", true)
	expectBool(t, "\"a\" in { a: 1 };", true)
	expectBool(t, "0 in [10];", true)
	expectBool(t, "5 in [10];", false)
}

func TestArrayIndexingAndLength(t *testing.T) {
	expectNumber(t, "[10, 20, 30][1];", 20)
	expectNumber(t, "[1, 2, 3].length;", 3)
	expectBool(t, "[1][5] == undefined;", true)
	expectNumber(t, "let a = [1]; a[3] = 9; a.length;", 4)
	expectNumber(t, "let a = [1, 2, 3]; a.length = 1; a.length;", 1)
}

func TestUpdateExpressions(t *testing.T) {
	expectNumber(t, "let i = 5; i++;", 5)
	expectNumber(t, "let i = 5; ++i;", 6)
	expectNumber(t, "let i = 5; i--; i;", 4)
	expectNumber(t, "let o = { n: 1 }; o.n++; o.n;", 2)
}

func TestSequenceAndConditional(t *testing.T) {
	expectNumber(t, "(1, 2, 3);", 3)
	expectString(t, "true ? \"yes\" : \"no\";", "yes")
	expectString(t, "0 ? \"yes\" : \"no\";", "no")
}

func TestStringProduction(t *testing.T) {
	expectString(t, "String(42);", "42")
	expectString(t, "String(null);", "null")
	expectString(t, "String([1, 2]);", "[1,2]")
	expectNumber(t, "Number(\"3.5\");", 3.5)
	expectBool(t, "Boolean(\"\");", false)
	expectBool(t, "Boolean([]);", false)
}
