package interpreter

import (
	"fmt"

	"tinyjs/interpreter-go/pkg/runtime"
)

// Control-flow signals travel through the normal error return path and are
// intercepted by the construct that owns them. Anything that escapes to the
// program boundary is a bug in the script (break outside a loop, return at
// top level) or an uncaught throw.

type breakSignal struct {
	label string
}

func (b breakSignal) Error() string {
	if b.label != "" {
		return fmt.Sprintf("break %s", b.label)
	}
	return "break"
}

type continueSignal struct {
	label string
}

func (c continueSignal) Error() string {
	if c.label != "" {
		return fmt.Sprintf("continue %s", c.label)
	}
	return "continue"
}

type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}

type throwSignal struct {
	value runtime.Value
}

func (t throwSignal) Error() string {
	if errVal, ok := t.value.(runtime.ErrorValue); ok {
		return errVal.String()
	}
	return "Uncaught " + runtime.ToString(t.value)
}
