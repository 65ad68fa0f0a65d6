package interpreter

import (
	"fmt"
	"strings"

	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/runtime"
)

// UncaughtError is returned when a thrown value escapes the whole program.
type UncaughtError struct {
	Value runtime.Value
}

func (e *UncaughtError) Error() string {
	if errVal, ok := e.Value.(runtime.ErrorValue); ok {
		msg := errVal.String()
		if errVal.Line > 0 {
			msg = fmt.Sprintf("%s (line %d, column %d)", msg, errVal.Line, errVal.Column)
		}
		if errVal.Snippet != "" {
			msg = msg + "\n  " + strings.TrimSpace(errVal.Snippet)
		}
		return msg
	}
	return "Uncaught " + runtime.ToString(e.Value)
}

func (i *Interpreter) raise(kind string, node ast.Node, format string, args ...any) error {
	errVal := runtime.ErrorValue{
		ErrKind: kind,
		Message: fmt.Sprintf(format, args...),
	}
	if node != nil {
		span := node.Span()
		errVal.Line = span.Line
		errVal.Column = span.Column
		errVal.Snippet = i.snippetAt(span.Line)
	}
	return throwSignal{value: errVal}
}

func (i *Interpreter) typeError(node ast.Node, format string, args ...any) error {
	return i.raise("TypeError", node, format, args...)
}

func (i *Interpreter) referenceError(node ast.Node, format string, args ...any) error {
	return i.raise("ReferenceError", node, format, args...)
}

func (i *Interpreter) rangeError(node ast.Node, format string, args ...any) error {
	return i.raise("RangeError", node, format, args...)
}

func (i *Interpreter) syntaxError(node ast.Node, format string, args ...any) error {
	return i.raise("SyntaxError", node, format, args...)
}

func (i *Interpreter) snippetAt(line int) string {
	if line < 1 || line > len(i.sourceLines) {
		return ""
	}
	return i.sourceLines[line-1]
}
