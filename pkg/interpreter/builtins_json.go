package interpreter

import (
	"bytes"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"tinyjs/interpreter-go/pkg/runtime"
)

func (i *Interpreter) jsonObject() *runtime.ObjectValue {
	obj := runtime.NewObject()

	obj.Set("stringify", runtime.NewNativeFunction("stringify", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		value := argOrUndefined(args, 0)
		if !jsonSerializable(value) {
			return runtime.UndefinedValue{}, nil
		}
		indent := jsonIndent(argOrUndefined(args, 2))

		var buf bytes.Buffer
		stream := jsoniter.ConfigDefault.BorrowStream(&buf)
		defer jsoniter.ConfigDefault.ReturnStream(stream)
		seen := make(map[runtime.Value]bool)
		if err := i.writeJSON(stream, value, seen); err != nil {
			return nil, err
		}
		if err := stream.Flush(); err != nil {
			return nil, i.typeError(nil, "%s", err.Error())
		}
		text := buf.String()
		if indent != "" {
			text = reindentJSON(text, indent)
		}
		return runtime.StringValue{Val: text}, nil
	}))

	obj.Set("parse", runtime.NewNativeFunction("parse", func(ctx *runtime.NativeCallContext, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text := runtime.ToString(argOrUndefined(args, 0))
		if !jsoniter.Valid([]byte(text)) {
			return nil, i.raise("SyntaxError", nil, "Unexpected token in JSON input")
		}
		iter := jsoniter.ConfigDefault.BorrowIterator([]byte(text))
		defer jsoniter.ConfigDefault.ReturnIterator(iter)
		value := i.readJSON(iter)
		if iter.Error != nil {
			return nil, i.raise("SyntaxError", nil, "Unexpected token in JSON: %s", iter.Error.Error())
		}
		return value, nil
	}))

	return obj
}

func jsonSerializable(val runtime.Value) bool {
	switch val.Kind() {
	case runtime.KindUndefined, runtime.KindFunction, runtime.KindNativeFunction,
		runtime.KindGeneratorFunction, runtime.KindGenerator:
		return false
	default:
		return true
	}
}

func jsonIndent(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.NumberValue:
		n := int(v.Val)
		if n > 10 {
			n = 10
		}
		if n <= 0 {
			return ""
		}
		return strings.Repeat(" ", n)
	case runtime.StringValue:
		if len(v.Val) > 10 {
			return v.Val[:10]
		}
		return v.Val
	default:
		return ""
	}
}

// writeJSON walks the value graph in insertion order, tracking visited
// containers to reject cycles.
func (i *Interpreter) writeJSON(stream *jsoniter.Stream, val runtime.Value, seen map[runtime.Value]bool) error {
	switch v := val.(type) {
	case runtime.NullValue:
		stream.WriteNil()
	case runtime.BoolValue:
		stream.WriteBool(v.Val)
	case runtime.NumberValue:
		if math.IsNaN(v.Val) || math.IsInf(v.Val, 0) {
			stream.WriteNil()
			return nil
		}
		stream.WriteFloat64Lossy(v.Val)
	case runtime.StringValue:
		stream.WriteString(v.Val)
	case runtime.ErrorValue:
		stream.WriteObjectStart()
		stream.WriteObjectEnd()
	case *runtime.ArrayValue:
		if seen[val] {
			return i.typeError(nil, "Converting circular structure to JSON")
		}
		seen[val] = true
		defer delete(seen, val)
		stream.WriteArrayStart()
		for idx, elem := range v.Elements {
			if idx > 0 {
				stream.WriteMore()
			}
			if elem == nil || !jsonSerializable(elem) {
				stream.WriteNil()
				continue
			}
			if err := i.writeJSON(stream, elem, seen); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	case *runtime.ObjectValue:
		if seen[val] {
			return i.typeError(nil, "Converting circular structure to JSON")
		}
		seen[val] = true
		defer delete(seen, val)
		stream.WriteObjectStart()
		first := true
		for _, key := range v.Keys() {
			member, _ := v.Get(key)
			if member == nil || !jsonSerializable(member) {
				continue
			}
			if !first {
				stream.WriteMore()
			}
			first = false
			stream.WriteObjectField(key)
			if err := i.writeJSON(stream, member, seen); err != nil {
				return err
			}
		}
		stream.WriteObjectEnd()
	default:
		stream.WriteNil()
	}
	return nil
}

// readJSON rebuilds runtime values with object keys kept in document order.
func (i *Interpreter) readJSON(iter *jsoniter.Iterator) runtime.Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return runtime.NullValue{}
	case jsoniter.BoolValue:
		return runtime.BoolValue{Val: iter.ReadBool()}
	case jsoniter.NumberValue:
		return runtime.NumberValue{Val: iter.ReadFloat64()}
	case jsoniter.StringValue:
		return runtime.StringValue{Val: iter.ReadString()}
	case jsoniter.ArrayValue:
		arr := runtime.NewArray()
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			arr.Elements = append(arr.Elements, i.readJSON(iter))
			return iter.Error == nil
		})
		return arr
	case jsoniter.ObjectValue:
		obj := runtime.NewObject()
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
			obj.Set(key, i.readJSON(iter))
			return iter.Error == nil
		})
		return obj
	default:
		iter.ReportError("parse", "unexpected token")
		return runtime.NullValue{}
	}
}

// reindentJSON pretty-prints compact JSON output. Strings were already
// escaped by the stream writer, so a quote-aware scan is enough.
func reindentJSON(compact, indent string) string {
	var sb strings.Builder
	depth := 0
	inString := false
	escaped := false
	for _, r := range compact {
		if inString {
			sb.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			sb.WriteRune(r)
		case '{', '[':
			sb.WriteRune(r)
			depth++
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(indent, depth))
		case '}', ']':
			depth--
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(indent, depth))
			sb.WriteRune(r)
		case ',':
			sb.WriteRune(r)
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(indent, depth))
		case ':':
			sb.WriteString(": ")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
