// Package ops holds the operators and native functions. They are pure
// functions of resolved atoms: every operand goes through
// Environment.ResolveAtom, and failures come back as error words.
package ops

import (
	"math"
	"strings"

	"arevel/internal/object"
	"arevel/internal/value"
)

type BinaryOp func(env *object.Environment, a, b value.Value) value.Value

type UnaryOp func(env *object.Environment, a value.Value) value.Value

// resolve returns the atom for v, or the error word carried by v or by the
// binding it points at.
func resolve(env *object.Environment, v value.Value) (object.Atom, value.Value) {
	if v.IsError() {
		return nil, v
	}
	atom := env.ResolveAtom(v)
	if sym, ok := atom.(*object.Symbol); ok && sym.Value.IsError() {
		return nil, sym.Value
	}
	return atom, 0
}

// number resolves v to a usable double. NaN and non-numeric operands are
// rejected with ErrExpectedNumber.
func number(env *object.Environment, v value.Value) (float64, value.Value) {
	atom, errWord := resolve(env, v)
	if errWord != 0 {
		return 0, errWord
	}
	n, ok := atom.(*object.Numeric)
	if !ok || math.IsNaN(n.Value) {
		return 0, value.ErrExpectedNumber
	}
	return n.Value, 0
}

func numbers(env *object.Environment, a, b value.Value) (float64, float64, value.Value) {
	fa, errWord := number(env, a)
	if errWord != 0 {
		return 0, 0, errWord
	}
	fb, errWord := number(env, b)
	if errWord != 0 {
		return 0, 0, errWord
	}
	return fa, fb, 0
}

// Add is overloaded: numbers add, strings concatenate into a new heap string.
// When either side is text the mismatch is reported as ErrExpectedString,
// otherwise as ErrExpectedNumber.
func Add(env *object.Environment, a, b value.Value) value.Value {
	atomA, errWord := resolve(env, a)
	if errWord != 0 {
		return errWord
	}
	atomB, errWord := resolve(env, b)
	if errWord != 0 {
		return errWord
	}

	switch x := atomA.(type) {
	case *object.Numeric:
		switch y := atomB.(type) {
		case *object.Numeric:
			if math.IsNaN(x.Value) || math.IsNaN(y.Value) {
				return value.ErrExpectedNumber
			}
			return value.FromFloat(x.Value + y.Value)
		case *object.String:
			return value.ErrExpectedString
		}
		return value.ErrExpectedNumber
	case *object.String:
		y, ok := atomB.(*object.String)
		if !ok {
			return value.ErrExpectedString
		}
		var sb strings.Builder
		sb.Grow(len(x.Value) + len(y.Value))
		sb.WriteString(x.Value)
		sb.WriteString(y.Value)
		return env.InitValue(&object.String{Value: sb.String()})
	}
	return value.ErrExpectedNumber
}

func Sub(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.FromFloat(fa - fb)
}

func Mul(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.FromFloat(fa * fb)
}

func Div(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	if fb == 0.0 {
		return value.ErrDivideByZero
	}
	return value.FromFloat(fa / fb)
}

// Mod follows math.Mod: the result takes the sign of the dividend.
func Mod(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	if fb == 0.0 {
		return value.ErrDivideByZero
	}
	return value.FromFloat(math.Mod(fa, fb))
}

// And does not short-circuit: both operands are always resolved.
func And(env *object.Environment, a, b value.Value) value.Value {
	atomA, errWord := resolve(env, a)
	if errWord != 0 {
		return errWord
	}
	atomB, errWord := resolve(env, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(object.Truthy(atomA) && object.Truthy(atomB))
}

// Or does not short-circuit: both operands are always resolved.
func Or(env *object.Environment, a, b value.Value) value.Value {
	atomA, errWord := resolve(env, a)
	if errWord != 0 {
		return errWord
	}
	atomB, errWord := resolve(env, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(object.Truthy(atomA) || object.Truthy(atomB))
}

func Not(env *object.Environment, a value.Value) value.Value {
	atom, errWord := resolve(env, a)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(!object.Truthy(atom))
}

func Lt(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(fa < fb)
}

func Lte(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(fa <= fb)
}

func Gt(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(fa > fb)
}

func Gte(env *object.Environment, a, b value.Value) value.Value {
	fa, fb, errWord := numbers(env, a, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(fa >= fb)
}

// Eq compares numbers by value, strings by content and everything else by
// identity of the underlying word or object. Mixed kinds are never equal.
func Eq(env *object.Environment, a, b value.Value) value.Value {
	atomA, errWord := resolve(env, a)
	if errWord != 0 {
		return errWord
	}
	atomB, errWord := resolve(env, b)
	if errWord != 0 {
		return errWord
	}
	return value.Bool(equal(atomA, atomB))
}

func Ne(env *object.Environment, a, b value.Value) value.Value {
	result := Eq(env, a, b)
	if result.IsError() {
		return result
	}
	return value.Bool(result == value.False)
}

func equal(a, b object.Atom) bool {
	switch x := a.(type) {
	case *object.Numeric:
		y, ok := b.(*object.Numeric)
		return ok && x.Value == y.Value
	case *object.String:
		y, ok := b.(*object.String)
		return ok && x.Value == y.Value
	case *object.Symbol:
		y, ok := b.(*object.Symbol)
		return ok && x.Value == y.Value
	default:
		return a == b
	}
}
