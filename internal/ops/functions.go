package ops

import (
	"math"

	"arevel/internal/object"
	"arevel/internal/value"
)

func unary(f func(float64) float64) func(env *object.Environment, a value.Value) value.Value {
	return func(env *object.Environment, a value.Value) value.Value {
		fa, errWord := number(env, a)
		if errWord != 0 {
			return errWord
		}
		return value.FromFloat(f(fa))
	}
}

func binary(f func(float64, float64) float64) func(env *object.Environment, a, b value.Value) value.Value {
	return func(env *object.Environment, a, b value.Value) value.Value {
		fa, fb, errWord := numbers(env, a, b)
		if errWord != 0 {
			return errWord
		}
		return value.FromFloat(f(fa, fb))
	}
}

// The native functions wrap the float primitives exactly. Sqrt of a negative
// number yields NaN, which later operators reject as ErrExpectedNumber.
var (
	Min   = binary(math.Min)
	Max   = binary(math.Max)
	Abs   = unary(math.Abs)
	Ceil  = unary(math.Ceil)
	Floor = unary(math.Floor)
	Trunc = unary(math.Trunc)
	Round = unary(math.Round)
	Sqrt  = unary(math.Sqrt)
)
