package hostapi

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// invoker calls a Go function with loosely typed positional arguments.
type invoker struct {
	fn reflect.Value
}

func newInvoker(callback any) (*invoker, error) {
	v := reflect.ValueOf(callback)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidCallback, callback)
	}
	return &invoker{fn: v}, nil
}

// call invokes the function. Parameters of type context.Context receive ctx
// and consume no argument; missing arguments become zero values and surplus
// arguments are dropped unless the function is variadic. A trailing error
// result is returned as is; a panic is converted to an error.
func (iv *invoker) call(ctx context.Context, args []any) (result any, err error) {
	ft := iv.fn.Type()
	in, err := buildArgs(ctx, ft, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("callback panicked: %v", r)
		}
	}()

	return collectResults(ft, iv.fn.Call(in))
}

func buildArgs(ctx context.Context, ft reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	fixed := numIn
	if ft.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, numIn+len(args))
	next := 0
	for i := 0; i < fixed; i++ {
		pt := ft.In(i)
		if pt == contextType {
			if ctx == nil {
				ctx = context.Background()
			}
			in = append(in, reflect.ValueOf(&ctx).Elem())
			continue
		}
		if next >= len(args) {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v, err := convertArg(args[next], pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", next, err)
		}
		in = append(in, v)
		next++
	}

	if ft.IsVariadic() {
		et := ft.In(numIn - 1).Elem()
		for ; next < len(args); next++ {
			v, err := convertArg(args[next], et)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", next, err)
			}
			in = append(in, v)
		}
	}
	return in, nil
}

// convertArg adapts arg to t: direct assignment, numeric conversion, or a
// JSON round trip for structured values.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}
	if isNumeric(av.Kind()) && isNumeric(t.Kind()) {
		return av.Convert(t), nil
	}

	data, err := json.Marshal(arg)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
	}
	return ptr.Elem(), nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func collectResults(ft reflect.Type, out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1].Interface(); e != nil {
			err = e.(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, err
	}
}
