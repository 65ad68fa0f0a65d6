package interpreter

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"tinyjs/interpreter-go/pkg/parser"
	"tinyjs/interpreter-go/pkg/runtime"
)

func evalWithOutput(t *testing.T, source string) (string, string) {
	t.Helper()
	program, err := parser.ParseProgram([]byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	interp := New()
	var stdout, stderr bytes.Buffer
	interp.SetOutput(&stdout, &stderr)
	if _, _, err := interp.EvaluateProgram(program); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	return stdout.String(), stderr.String()
}

func TestConsoleRouting(t *testing.T) {
	stdout, stderr := evalWithOutput(t, `
		console.log("hello", 42);
		console.info("fyi");
		console.warn("careful");
		console.error("broken");
	`)
	if stdout != "hello 42\nfyi\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if stderr != "careful\nbroken\n" {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestConsoleRendersComposites(t *testing.T) {
	stdout, _ := evalWithOutput(t, `console.log({ a: 1, b: "x" }, [1, "two"]);`)
	if !strings.Contains(stdout, "{ a: 1, b: \"x\" }") {
		t.Fatalf("object rendering, stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "[ 1, \"two\" ]") {
		t.Fatalf("array rendering, stdout = %q", stdout)
	}
}

func TestMathNamespace(t *testing.T) {
	expectNumber(t, "Math.floor(3.9);", 3)
	expectNumber(t, "Math.ceil(3.1);", 4)
	expectNumber(t, "Math.round(2.5);", 3)
	expectNumber(t, "Math.trunc(-3.9);", -3)
	expectNumber(t, "Math.abs(-7);", 7)
	expectNumber(t, "Math.sqrt(81);", 9)
	expectNumber(t, "Math.pow(2, 8);", 256)
	expectNumber(t, "Math.max(1, 9, 4);", 9)
	expectNumber(t, "Math.min(1, 9, -4);", -4)
	expectNumber(t, "Math.max(1, NaN, 3);", math.NaN())
	expectBool(t, "Math.PI > 3.14 && Math.PI < 3.15;", true)
	expectBool(t, "Math.random() >= 0 && Math.random() < 1;", true)
}

func TestGlobalNumberParsers(t *testing.T) {
	expectNumber(t, "parseInt(\"42px\");", 42)
	expectNumber(t, "parseInt(\"ff\", 16);", 255)
	expectNumber(t, "parseInt(\"0x1A\");", 26)
	expectNumber(t, "parseInt(\"-7\");", -7)
	expectNumber(t, "parseInt(\"junk\");", math.NaN())
	expectNumber(t, "parseFloat(\"3.5kg\");", 3.5)
	expectNumber(t, "parseFloat(\"1e3\");", 1000)
	expectBool(t, "isNaN(\"abc\");", true)
	expectBool(t, "isFinite(1 / 0);", false)
	expectBool(t, "isFinite(42);", true)
}

func TestObjectNamespace(t *testing.T) {
	expectString(t, "Object.keys({ b: 1, a: 2 }).join(\",\");", "b,a")
	expectString(t, "Object.values({ x: 1, y: 2 }).join(\"-\");", "1-2")
	expectNumber(t, `
		let target = { a: 1 };
		Object.assign(target, { b: 2 }, { a: 10 });
		target.a + target.b;
	`, 12)
	expectString(t, `
		let pairs = Object.entries({ k: "v" });
		pairs[0][0] + "=" + pairs[0][1];
	`, "k=v")
}

func TestArrayNamespace(t *testing.T) {
	expectBool(t, "Array.isArray([]);", true)
	expectBool(t, "Array.isArray(\"nope\");", false)
	expectString(t, "Array.from(\"abc\").join(\"|\");", "a|b|c")
	expectNumber(t, `
		function* three() { yield 1; yield 2; yield 3; }
		Array.from(three()).length;
	`, 3)
}

func TestArrayMutators(t *testing.T) {
	expectNumber(t, "let a = [1]; a.push(2, 3); a.length;", 3)
	expectNumber(t, "[1, 2, 3].pop();", 3)
	expectNumber(t, "[1, 2, 3].shift();", 1)
	expectNumber(t, "let a = [2]; a.unshift(1); a[0];", 1)
	expectString(t, "[1, 2, 3].reverse().join(\"\");", "321")
}

func TestArrayAccessors(t *testing.T) {
	expectString(t, "[1, 2, 3, 4].slice(1, 3).join(\",\");", "2,3")
	expectString(t, "[1, 2, 3].slice(-2).join(\",\");", "2,3")
	expectString(t, "[1, 2, 3].slice(2, 1).join(\",\");", "")
	expectNumber(t, "[5, 6, 7].indexOf(6);", 1)
	expectNumber(t, "[5, 6].indexOf(9);", -1)
	expectBool(t, "[1, 2].includes(2);", true)
	expectString(t, "[1, 2].concat([3, 4], 5).join(\",\");", "1,2,3,4,5")
	expectString(t, "[1, null, 2, undefined].join(\"-\");", "1--2-")
}

func TestArrayIterationMethods(t *testing.T) {
	expectString(t, "[1, 2, 3].map(function(x) { return x * 2; }).join(\",\");", "2,4,6")
	expectString(t, "[1, 2, 3, 4].filter(x => x % 2 === 0).join(\",\");", "2,4")
	expectNumber(t, "[10, 20, 30].find(x => x > 15);", 20)
	expectNumber(t, `
		let sum = 0;
		[1, 2, 3].forEach(function(x, idx) { sum += x * idx; });
		sum;
	`, 8)
	err := evalError(t, "[1].map(42);")
	if !strings.Contains(err.Error(), "not a function") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestStringMethods(t *testing.T) {
	expectString(t, "\"hello\".charAt(1);", "e")
	expectNumber(t, "\"A\".charCodeAt(0);", 65)
	expectNumber(t, "\"banana\".indexOf(\"na\");", 2)
	expectBool(t, "\"banana\".includes(\"nan\");", true)
	expectBool(t, "\"file.js\".endsWith(\".js\");", true)
	expectString(t, "\"hello\".slice(1, 3);", "el")
	expectString(t, "\"hello\".slice(-3);", "llo")
	expectString(t, "\"hello\".substring(3, 1);", "el")
	expectString(t, "\"hello\".slice(3, 1);", "")
	expectString(t, "\"a,b,c\".split(\",\").join(\"|\");", "a|b|c")
	expectString(t, "\"abc\".split(\"\").join(\"-\");", "a-b-c")
	expectString(t, "\"  pad  \".trim();", "pad")
	expectString(t, "\"ab\".repeat(3);", "ababab")
	expectString(t, "\"aaa\".replace(\"a\", \"b\");", "baa")
	expectString(t, "\"MiXeD\".toUpperCase() + \"-\" + \"MiXeD\".toLowerCase();", "MIXED-mixed")
	expectNumber(t, "\"héllo\".length;", 5) // rune count, not bytes
}

func TestNumberMethods(t *testing.T) {
	expectString(t, "(3.14159).toFixed(2);", "3.14")
	expectString(t, "(255).toString(16);", "ff")
	expectString(t, "(5).toString(2);", "101")
	expectString(t, "(42).toString();", "42")
}

func TestErrorConstructors(t *testing.T) {
	expectString(t, `
		let e = new TypeError("bad kind");
		e.name + ": " + e.message;
	`, "TypeError: bad kind")
	expectString(t, "new Error(\"plain\").name;", "Error")
	expectString(t, `
		let seen = "";
		try { throw new RangeError("too big"); } catch (e) { seen = e.name; }
		seen;
	`, "RangeError")
}

func TestFunctionMembers(t *testing.T) {
	expectString(t, "function named() {} named.name;", "named")
	expectNumber(t, `
		function add(a, b) { return a + b; }
		add.call(undefined, 1, 2) + add.apply(undefined, [10, 20]);
	`, 33)
	expectNumber(t, `
		let obj = { base: 100, add: function(n) { return this.base + n; } };
		let bound = obj.add.bind(obj);
		bound(5);
	`, 105)
}

func TestDateNow(t *testing.T) {
	val, _ := evalSource(t, "Date.now();")
	n, ok := val.(runtime.NumberValue)
	if !ok || n.Val <= 0 {
		t.Fatalf("Date.now() = %#v", val)
	}
}

func TestGlobalThisAndConstants(t *testing.T) {
	expectBool(t, "typeof globalThis === \"object\";", true)
	expectBool(t, "isNaN(NaN);", true)
	expectBool(t, "Infinity > 1e308;", true)
}

func TestRequireQuerystring(t *testing.T) {
	expectString(t, `
		const qs = require("querystring");
		qs.stringify({ a: "1", b: "x y" });
	`, "a=1&b=x+y")
	expectString(t, `
		const qs = require("querystring");
		const parsed = qs.parse("a=1&b=two");
		parsed.a + "," + parsed.b;
	`, "1,two")

	err := evalError(t, "require(\"no-such-module\");")
	if !strings.Contains(err.Error(), "Cannot find module") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestProcessGlobal(t *testing.T) {
	expectBool(t, "typeof process.platform === \"string\";", true)
	expectBool(t, "Array.isArray(process.argv);", true)
}
