// Package interpreter evaluates the JavaScript AST: a tree walker over
// pkg/ast nodes with an environment chain from pkg/runtime and deferred
// callbacks scheduled on a pkg/eventloop.Loop.
package interpreter

import (
	"io"
	"os"
	"strings"

	"tinyjs/interpreter-go/pkg/ast"
	"tinyjs/interpreter-go/pkg/eventloop"
	"tinyjs/interpreter-go/pkg/runtime"
)

// Interpreter drives evaluation of program nodes against a global scope.
type Interpreter struct {
	global      *runtime.Environment
	loop        *eventloop.Loop
	stdout      io.Writer
	stderr      io.Writer
	sourceLines []string
	modules     map[string]runtime.Value
}

// New returns an interpreter with builtins installed in a fresh global
// environment and an idle event loop.
func New() *Interpreter {
	i := &Interpreter{
		global:  runtime.NewEnvironment(nil),
		loop:    eventloop.New(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		modules: make(map[string]runtime.Value),
	}
	i.installGlobals()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Loop returns the scheduler used by setTimeout and friends. Callers run it
// after program evaluation to drain pending callbacks.
func (i *Interpreter) Loop() *eventloop.Loop {
	return i.loop
}

// SetOutput redirects console output, stdout for log/info and stderr for
// warn/error.
func (i *Interpreter) SetOutput(stdout, stderr io.Writer) {
	if stdout != nil {
		i.stdout = stdout
	}
	if stderr != nil {
		i.stderr = stderr
	}
	i.loop.SetErrorLog(i.stderr)
}

// EvaluateProgram executes a program in the global environment and returns
// the value of the last expression statement.
func (i *Interpreter) EvaluateProgram(program *ast.Program) (runtime.Value, *runtime.Environment, error) {
	if program.Source != "" {
		i.sourceLines = strings.Split(program.Source, "\n")
	}
	val, err := i.executeStatements(program.Body, i.global)
	if err != nil {
		return nil, i.global, i.escapedSignal(err)
	}
	return val, i.global, nil
}

// escapedSignal translates a control-flow signal that reached the program
// boundary into a user-facing error.
func (i *Interpreter) escapedSignal(err error) error {
	switch sig := err.(type) {
	case throwSignal:
		return &UncaughtError{Value: sig.value}
	case returnSignal:
		return i.syntaxError(nil, "Illegal return statement")
	case breakSignal:
		return i.syntaxError(nil, "Illegal break statement")
	case continueSignal:
		return i.syntaxError(nil, "Illegal continue statement")
	default:
		return err
	}
}

// executeStatements runs a statement list with function declarations hoisted
// to the top of the scope, so mutually recursive functions resolve no matter
// their textual order.
func (i *Interpreter) executeStatements(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	if err := i.hoistFunctions(stmts, env); err != nil {
		return nil, err
	}
	var last runtime.Value = runtime.UndefinedValue{}
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			continue
		}
		val, err := i.evaluateStatement(stmt, env)
		if err != nil {
			return nil, err
		}
		if val != nil {
			last = val
		}
	}
	return last, nil
}

// hoistFunctions declares every function name first and only then builds the
// function values. Captured scopes share cells, so each closure sees its
// siblings once the second pass assigns them.
func (i *Interpreter) hoistFunctions(stmts []ast.Statement, env *runtime.Environment) error {
	var decls []*ast.FunctionDeclaration
	for _, stmt := range stmts {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok {
			decls = append(decls, fn)
		}
	}
	for _, decl := range decls {
		name := decl.Function.Name.Name
		if err := env.Declare(runtime.DeclFunction, name, runtime.UndefinedValue{}); err != nil {
			return i.syntaxError(decl, "%s", err.Error())
		}
	}
	for _, decl := range decls {
		fn := i.makeFunction(decl.Function, env)
		if err := env.Assign(decl.Function.Name.Name, fn); err != nil {
			return i.syntaxError(decl, "%s", err.Error())
		}
	}
	return nil
}

// makeFunction captures the visible scope chain into a flat environment of
// shared cells and pairs it with the function literal.
func (i *Interpreter) makeFunction(lit *ast.FunctionLiteral, env *runtime.Environment) *runtime.FunctionValue {
	closure := env.Capture()
	fn := &runtime.FunctionValue{Declaration: lit, Closure: closure}
	if lit.Name != nil && !closure.HasInCurrentScope(lit.Name.Name) {
		// named function expressions can call themselves by name
		_ = closure.Declare(runtime.DeclConst, lit.Name.Name, fn)
	}
	return fn
}
