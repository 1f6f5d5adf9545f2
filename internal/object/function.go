package object

import "arevel/internal/value"

// NativeFn is a builtin with a fixed arity. Call checks the argument count
// before touching args, so a bad call yields ErrArityMismatch instead of an
// out of range read.
type NativeFn interface {
	Arity() int
	Call(env *Environment, args []value.Value) value.Value
}

type NativeFn1 struct {
	Fn func(env *Environment, a value.Value) value.Value
}

func (f NativeFn1) Arity() int { return 1 }
func (f NativeFn1) Call(env *Environment, args []value.Value) value.Value {
	if len(args) != 1 {
		return value.ErrArityMismatch
	}
	return f.Fn(env, args[0])
}

type NativeFn2 struct {
	Fn func(env *Environment, a, b value.Value) value.Value
}

func (f NativeFn2) Arity() int { return 2 }
func (f NativeFn2) Call(env *Environment, args []value.Value) value.Value {
	if len(args) != 2 {
		return value.ErrArityMismatch
	}
	return f.Fn(env, args[0], args[1])
}

type NativeFn3 struct {
	Fn func(env *Environment, a, b, c value.Value) value.Value
}

func (f NativeFn3) Arity() int { return 3 }
func (f NativeFn3) Call(env *Environment, args []value.Value) value.Value {
	if len(args) != 3 {
		return value.ErrArityMismatch
	}
	return f.Fn(env, args[0], args[1], args[2])
}

func NewFunction1(name string, fn func(env *Environment, a value.Value) value.Value) *Function {
	return &Function{Name: name, Fn: NativeFn1{Fn: fn}}
}

func NewFunction2(name string, fn func(env *Environment, a, b value.Value) value.Value) *Function {
	return &Function{Name: name, Fn: NativeFn2{Fn: fn}}
}

func NewFunction3(name string, fn func(env *Environment, a, b, c value.Value) value.Value) *Function {
	return &Function{Name: name, Fn: NativeFn3{Fn: fn}}
}
