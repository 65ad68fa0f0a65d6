package interpreter

import (
	"tinyjs/interpreter-go/pkg/eventloop"
	"tinyjs/interpreter-go/pkg/runtime"
)

// installTimers wires the scheduling builtins to the event loop. Callbacks
// run after program evaluation, once the host drains the loop.
func (i *Interpreter) installTimers() {
	define := func(name string, fn runtime.NativeFunc) {
		_ = i.global.Declare(runtime.DeclConst, name, runtime.NewNativeFunction(name, fn))
	}

	schedule := func(args []runtime.Value, repeating bool) (runtime.Value, error) {
		callback := argOrUndefined(args, 0)
		if !runtime.IsCallable(callback) {
			return nil, i.typeError(nil, "%s is not a function", describeValue(callback))
		}
		delay := runtime.ToNumber(argOrUndefined(args, 1))
		if delay < 0 || delay != delay {
			delay = 0
		}
		extra := make([]runtime.Value, 0)
		if len(args) > 2 {
			extra = append(extra, args[2:]...)
		}
		task := func() error {
			_, err := i.callValue(callback, runtime.UndefinedValue{}, extra)
			return i.callbackError(err)
		}
		var id eventloop.TimerID
		if repeating {
			id = i.loop.EnqueueRepeating(task, delay)
		} else {
			id = i.loop.Enqueue(task, delay)
		}
		return runtime.NumberValue{Val: float64(id)}, nil
	}

	define("setTimeout", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return schedule(args, false)
	})
	define("setInterval", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return schedule(args, true)
	})

	cancel := func(args []runtime.Value) {
		id := runtime.ToNumber(argOrUndefined(args, 0))
		if id == id {
			i.loop.Cancel(eventloop.TimerID(id))
		}
	}
	define("clearTimeout", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		cancel(args)
		return runtime.UndefinedValue{}, nil
	})
	define("clearInterval", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		cancel(args)
		return runtime.UndefinedValue{}, nil
	})

	define("queueMicrotask", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		callback := argOrUndefined(args, 0)
		if !runtime.IsCallable(callback) {
			return nil, i.typeError(nil, "%s is not a function", describeValue(callback))
		}
		i.loop.EnqueueMicrotask(func() error {
			_, err := i.callValue(callback, runtime.UndefinedValue{}, nil)
			return i.callbackError(err)
		})
		return runtime.UndefinedValue{}, nil
	})
}

// callbackError unwraps a throw escaping a scheduled callback so the loop
// logs it as an uncaught error without aborting.
func (i *Interpreter) callbackError(err error) error {
	if err == nil {
		return nil
	}
	return i.escapedSignal(err)
}
