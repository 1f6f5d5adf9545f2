package evaluator

import (
	"arevel/internal/object"
	"arevel/internal/symbol"
	"arevel/internal/value"
)

// The functions below are the surface a host or compiled code uses to touch
// runtime state. They work on raw words and an environment only.

// Save binds the result word v to sym and returns v.
func Save(env *object.Environment, sym value.Value, v value.Value) value.Value {
	env.BindResult(sym, v)
	return v
}

// TypeOf classifies v, looking through pointers to the bound atom.
func TypeOf(env *object.Environment, v value.Value) value.Type {
	if !v.IsPointer() || v.IsError() {
		return value.Classify(v)
	}
	switch env.ResolveAtom(v).(type) {
	case *object.Numeric:
		return value.NumericType
	case *object.String:
		return value.StringType
	case *object.Symbol:
		return value.SymbolType
	default:
		return value.ObjectType
	}
}

// AsBool returns the canonical True or False word for v. Errors pass through.
func AsBool(env *object.Environment, v value.Value) value.Value {
	if v.IsError() {
		return v
	}
	atom := env.ResolveAtom(v)
	if sym, ok := atom.(*object.Symbol); ok && sym.Value.IsError() {
		return sym.Value
	}
	return value.Bool(object.Truthy(atom))
}

// Apply runs the reserved operator op. Unary operators ignore b.
func Apply(env *object.Environment, op value.Value, a, b value.Value) value.Value {
	kw, ok := symbol.ByID(op)
	switch {
	case !ok:
		return value.ErrUnknownFunction
	case kw.Binary != nil:
		return kw.Binary(env, a, b)
	case kw.Unary != nil:
		return kw.Unary(env, a)
	default:
		return value.ErrExpectedFunction
	}
}

// Call invokes fn with args. fn may be a builtin module symbol or a pointer to
// a bound Function.
func Call(env *object.Environment, fn value.Value, args ...value.Value) value.Value {
	if fn.IsError() {
		return fn
	}
	if m, ok := symbol.ModuleBySymbol(fn); ok {
		return m.Value.Fn.Call(env, args)
	}
	switch atom := env.ResolveAtom(fn).(type) {
	case *object.Function:
		return atom.Fn.Call(env, args)
	case *object.Symbol:
		if atom.Value.IsError() {
			return atom.Value
		}
		if m, ok := symbol.ModuleBySymbol(atom.Value); ok {
			return m.Value.Fn.Call(env, args)
		}
		if atom.Value.IsPointer() {
			return value.ErrUnknownFunction
		}
	}
	return value.ErrExpectedFunction
}
