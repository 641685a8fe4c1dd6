// File: internal/concurrency/work.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unit-of-work packaging: a callable plus argument copies taken at bind time.

package concurrency

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/momentics/hiothread/api"
)

// boundWork runs a reflected callable with its captured arguments once.
type boundWork struct {
	fn   reflect.Value
	args []reflect.Value
	done atomic.Bool
}

// Bind packages fn and args into a run-once api.Work. Arguments are copied
// shallowly at bind time: reassigning the caller's variables is not observed,
// but data reached through a slice, map or pointer argument is shared.
// fn must be a func whose parameters accept args; results are discarded.
func Bind(fn any, args ...any) (api.Work, error) {
	if fn == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "callable is nil")
	}
	if w, ok := fn.(api.Work); ok && len(args) == 0 {
		return once(w.Run), nil
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "callable is not a func").
			WithContext("type", t.String())
	}
	if v.IsNil() {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "callable is nil")
	}

	n := t.NumIn()
	if (!t.IsVariadic() && len(args) != n) || (t.IsVariadic() && len(args) < n-1) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "argument count mismatch").
			WithContext("want", n).WithContext("got", len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := paramType(t, i)
		if a == nil {
			switch pt.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
				in[i] = reflect.Zero(pt)
				continue
			}
			return nil, api.NewError(api.ErrCodeInvalidArgument, fmt.Sprintf("argument %d: nil for %s", i, pt))
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			if !convertible(av.Type(), pt) {
				return nil, api.NewError(api.ErrCodeInvalidArgument,
					fmt.Sprintf("argument %d: %s not assignable to %s", i, av.Type(), pt))
			}
			av = av.Convert(pt)
		}
		in[i] = av
	}
	return &boundWork{fn: v, args: in}, nil
}

// convertible allows conversions between named types of one kind and between
// numeric kinds, so an untyped constant can feed an int32 or float parameter.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	return from.Kind() == to.Kind() || (isNumeric(from.Kind()) && isNumeric(to.Kind()))
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

// Run implements api.Work.
func (w *boundWork) Run() {
	if !w.done.CompareAndSwap(false, true) {
		return
	}
	fn, args := w.fn, w.args
	w.args = nil
	fn.Call(args)
}

type onceWork struct {
	fn   func()
	done atomic.Bool
}

func (w *onceWork) Run() {
	if w.done.CompareAndSwap(false, true) {
		w.fn()
	}
}

func once(fn func()) api.Work { return &onceWork{fn: fn} }

// Bind0 packages a niladic function.
func Bind0(fn func()) api.Work { return once(fn) }

// Bind1 packages fn with a shallow copy of a.
func Bind1[A any](fn func(A), a A) api.Work {
	return once(func() { fn(a) })
}

// Bind2 packages fn with copies of a and b.
func Bind2[A, B any](fn func(A, B), a A, b B) api.Work {
	return once(func() { fn(a, b) })
}

// Bind3 packages fn with copies of a, b and c.
func Bind3[A, B, C any](fn func(A, B, C), a A, b B, c C) api.Work {
	return once(func() { fn(a, b, c) })
}
