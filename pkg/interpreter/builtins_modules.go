package interpreter

import (
	"net/url"
	"os"
	gort "runtime"
	"sort"
	"strings"

	"tinyjs/interpreter-go/pkg/runtime"
)

// installModuleSystem provides require() for the small builtin module set
// and the process global. Filesystem modules are resolved by the driver
// layer, not here.
func (i *Interpreter) installModuleSystem() {
	process := i.processObject()
	_ = i.global.Declare(runtime.DeclConst, "process", process)
	i.modules["process"] = process

	_ = i.global.Declare(runtime.DeclConst, "require", runtime.NewNativeFunction("require", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		name := runtime.ToString(argOrUndefined(args, 0))
		if cached, ok := i.modules[name]; ok {
			return cached, nil
		}
		var module runtime.Value
		switch name {
		case "querystring":
			module = querystringModule()
		default:
			return nil, i.raise("Error", nil, "Cannot find module '%s'", name)
		}
		i.modules[name] = module
		return module, nil
	}))
}

func (i *Interpreter) processObject() *runtime.ObjectValue {
	process := runtime.NewObject()

	argv := runtime.NewArray()
	for _, arg := range os.Args {
		argv.Elements = append(argv.Elements, runtime.StringValue{Val: arg})
	}
	process.Set("argv", argv)

	env := runtime.NewObject()
	entries := os.Environ()
	sort.Strings(entries)
	for _, entry := range entries {
		if eq := strings.IndexByte(entry, '='); eq > 0 {
			env.Set(entry[:eq], runtime.StringValue{Val: entry[eq+1:]})
		}
	}
	process.Set("env", env)
	process.Set("platform", runtime.StringValue{Val: gort.GOOS})

	process.Set("nextTick", runtime.NewNativeFunction("nextTick", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		callback := argOrUndefined(args, 0)
		if !runtime.IsCallable(callback) {
			return nil, i.typeError(nil, "%s is not a function", describeValue(callback))
		}
		extra := make([]runtime.Value, 0)
		if len(args) > 1 {
			extra = append(extra, args[1:]...)
		}
		i.loop.EnqueueMicrotask(func() error {
			_, err := i.callValue(callback, runtime.UndefinedValue{}, extra)
			return i.callbackError(err)
		})
		return runtime.UndefinedValue{}, nil
	}))

	process.Set("exit", runtime.NewNativeFunction("exit", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		code := 0
		if len(args) > 0 {
			code = int(runtime.ToNumber(args[0]))
		}
		os.Exit(code)
		return runtime.UndefinedValue{}, nil
	}))

	return process
}

func querystringModule() *runtime.ObjectValue {
	module := runtime.NewObject()

	module.Set("parse", runtime.NewNativeFunction("parse", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text := runtime.ToString(argOrUndefined(args, 0))
		obj := runtime.NewObject()
		for _, pair := range strings.Split(text, "&") {
			if pair == "" {
				continue
			}
			key := pair
			value := ""
			if eq := strings.IndexByte(pair, '='); eq >= 0 {
				key = pair[:eq]
				value = pair[eq+1:]
			}
			decodedKey, err := url.QueryUnescape(key)
			if err != nil {
				decodedKey = key
			}
			decodedValue, err := url.QueryUnescape(value)
			if err != nil {
				decodedValue = value
			}
			if existing, ok := obj.Get(decodedKey); ok {
				if arr, ok := existing.(*runtime.ArrayValue); ok {
					arr.Elements = append(arr.Elements, runtime.StringValue{Val: decodedValue})
				} else {
					obj.Set(decodedKey, runtime.NewArray(existing, runtime.StringValue{Val: decodedValue}))
				}
				continue
			}
			obj.Set(decodedKey, runtime.StringValue{Val: decodedValue})
		}
		return obj, nil
	}))

	module.Set("stringify", runtime.NewNativeFunction("stringify", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := argOrUndefined(args, 0).(*runtime.ObjectValue)
		if !ok {
			return runtime.StringValue{Val: ""}, nil
		}
		var parts []string
		for _, key := range obj.Keys() {
			val, _ := obj.Get(key)
			if arr, ok := val.(*runtime.ArrayValue); ok {
				for _, elem := range arr.Elements {
					parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(runtime.ToString(elem)))
				}
				continue
			}
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(runtime.ToString(val)))
		}
		return runtime.StringValue{Val: strings.Join(parts, "&")}, nil
	}))

	return module
}
