package evaluator

import (
	"log/slog"
	"math"

	"arevel/internal/object"
	"arevel/internal/symbol"
	"arevel/internal/value"
)

// Reduce evaluates a parsed cell body. The body is in postfix order: operands
// are pushed, reserved operators pop their operands and push the result.
// A call is encoded as the arguments, the argument count, the callee and
// finally __call__. An empty body yields None.
func Reduce(env *object.Environment, parsed []object.Atom) value.Value {
	if len(parsed) == 0 {
		return value.None
	}
	stack := make([]value.Value, 0, len(parsed))

	pop := func() (value.Value, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for _, atom := range parsed {
		sym, isSymbol := atom.(*object.Symbol)
		if !isSymbol {
			stack = append(stack, push(env, atom))
			continue
		}

		if sym.Value == value.SymCallFn {
			result, ok := call(env, pop, func() int { return len(stack) })
			if !ok {
				return value.ErrUnexpectedToken
			}
			stack = append(stack, result)
			continue
		}

		kw, ok := symbol.ByID(sym.Value)
		switch {
		case ok && kw.Binary != nil:
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return value.ErrUnexpectedToken
			}
			stack = append(stack, kw.Binary(env, a, b))
		case ok && kw.Unary != nil:
			a, okA := pop()
			if !okA {
				return value.ErrUnexpectedToken
			}
			stack = append(stack, kw.Unary(env, a))
		case ok && kw.Precedence > 0:
			// Punctuation never reaches the reducer from a well formed body.
			return value.ErrUnexpectedToken
		default:
			stack = append(stack, sym.Value)
		}
	}

	if len(stack) != 1 {
		slog.Debug("malformed cell body", slog.Int("stack", len(stack)))
		return value.ErrUnexpectedToken
	}
	return settle(env, stack[0])
}

func push(env *object.Environment, atom object.Atom) value.Value {
	switch a := atom.(type) {
	case *object.Numeric:
		return value.FromFloat(a.Value)
	case *object.String:
		if v, ok := value.MakeSmallString(a.Value); ok {
			return v
		}
		return env.InitValue(a)
	default:
		return env.InitValue(a)
	}
}

// call pops the callee, the argument count and the arguments. It reports false
// when the stack does not hold a well formed call, including a count larger
// than the operands left on the stack.
func call(env *object.Environment, pop func() (value.Value, bool), depth func() int) (value.Value, bool) {
	callee, ok := pop()
	if !ok {
		return 0, false
	}
	count, ok := pop()
	if !ok || !count.IsNumber() {
		return 0, false
	}
	n := count.Float()
	if n < 0 || n != math.Trunc(n) || n > float64(depth()) {
		return 0, false
	}
	args := make([]value.Value, int(n))
	for i := len(args) - 1; i >= 0; i-- {
		if args[i], ok = pop(); !ok {
			return 0, false
		}
	}
	return Call(env, callee, args...), true
}

// settle turns a reference into the value it points at where that value fits
// in a word, so a cell that only reads another cell yields its number or error
// rather than a pointer.
func settle(env *object.Environment, v value.Value) value.Value {
	if !v.IsPointer() || v.IsError() {
		return v
	}
	switch a := env.ResolveAtom(v).(type) {
	case *object.Numeric:
		return value.FromFloat(a.Value)
	case *object.Symbol:
		if a.Value.IsError() || !a.Value.IsPointer() {
			return a.Value
		}
	}
	return v
}
