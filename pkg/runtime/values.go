package runtime

import (
	"fmt"

	"tinyjs/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindFunction
	KindGeneratorFunction
	KindNativeFunction
	KindGenerator
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindGeneratorFunction:
		return "generator_function"
	case KindNativeFunction:
		return "native_function"
	case KindGenerator:
		return "generator"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// NumberValue is always an IEEE-754 double; there is no integer subtype.
// NaN and the infinities are ordinary inhabitants.
type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ObjectValue is an insertion-ordered property map. Two object references
// are equal only when they point at the same ObjectValue.
type ObjectValue struct {
	keys  []string
	props map[string]Value
}

func NewObject() *ObjectValue {
	return &ObjectValue{props: make(map[string]Value)}
}

func (v *ObjectValue) Kind() Kind { return KindObject }

func (v *ObjectValue) Get(key string) (Value, bool) {
	val, ok := v.props[key]
	return val, ok
}

func (v *ObjectValue) Set(key string, val Value) {
	if _, ok := v.props[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.props[key] = val
}

func (v *ObjectValue) Delete(key string) bool {
	if _, ok := v.props[key]; !ok {
		return false
	}
	delete(v.props, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns property names in insertion order.
func (v *ObjectValue) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *ObjectValue) Len() int { return len(v.keys) }

type ArrayValue struct {
	Elements []Value
}

func NewArray(elements ...Value) *ArrayValue {
	return &ArrayValue{Elements: elements}
}

func (v *ArrayValue) Kind() Kind { return KindArray }

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// FunctionValue is a user-defined function or generator function: the
// declaration plus the closure captured when the literal was evaluated.
// Invoking a generator function builds a GeneratorValue instead of running
// the body (see the interpreter's dispatcher).
type FunctionValue struct {
	Declaration *ast.FunctionLiteral
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind {
	if v.Declaration != nil && v.Declaration.Generator {
		return KindGeneratorFunction
	}
	return KindFunction
}

func (v *FunctionValue) Name() string {
	if v.Declaration != nil && v.Declaration.Name != nil {
		return v.Declaration.Name.Name
	}
	return ""
}

// CallFunc re-enters the evaluator: natives use it to invoke callback
// arguments (array map/filter, timer callbacks) through the normal
// dispatch path.
type CallFunc func(callee Value, this Value, args []Value) (Value, error)

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env  *Environment
	Call CallFunc
}

type NativeFunc func(ctx *NativeCallContext, this Value, args []Value) (Value, error)

// NativeFunctionValue adapts a Go function behind the uniform call
// contract. Every built-in library function is one of these. Always used
// through a pointer so identity comparisons stay well-defined.
type NativeFunctionValue struct {
	FuncName string
	Impl     NativeFunc
}

func NewNativeFunction(name string, impl NativeFunc) *NativeFunctionValue {
	return &NativeFunctionValue{FuncName: name, Impl: impl}
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Invoke(ctx *NativeCallContext, this Value, args []Value) (Value, error) {
	if v.Impl == nil {
		return UndefinedValue{}, nil
	}
	return v.Impl(ctx, this, args)
}

// Callable is the single seam through which the evaluator reaches any
// invocable value it does not interpret itself. Library authors extend the
// runtime by registering values that implement it; the evaluator never
// enumerates concrete adapter types.
type Callable interface {
	Value
	Invoke(ctx *NativeCallContext, this Value, args []Value) (Value, error)
}

var _ Callable = (*NativeFunctionValue)(nil)

// IsCallable reports whether the value can be invoked: user functions,
// generator functions, and anything implementing Callable.
func IsCallable(val Value) bool {
	switch val.(type) {
	case *FunctionValue:
		return true
	case Callable:
		return true
	}
	return false
}

//-----------------------------------------------------------------------------
// Errors
//-----------------------------------------------------------------------------

// ErrorValue is the payload carried by a thrown error: a message, the kind
// tag from the error taxonomy, and a best-effort source position. It is an
// ordinary value to user code (typeof yields "object").
type ErrorValue struct {
	ErrKind string // ReferenceError, TypeError, RangeError, SyntaxError, RuntimeError
	Message string
	Line    int
	Column  int
	Snippet string
	Payload Value // the thrown value when user code threw a non-error
}

func (v ErrorValue) Kind() Kind { return KindError }

func (v ErrorValue) String() string {
	kind := v.ErrKind
	if kind == "" {
		kind = "RuntimeError"
	}
	return fmt.Sprintf("%s: %s", kind, v.Message)
}
