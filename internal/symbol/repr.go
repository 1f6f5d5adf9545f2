package symbol

import (
	"fmt"

	"arevel/internal/object"
	"arevel/internal/value"
)

// Repr formats an atom for people: integral numbers without a fraction,
// strings raw, reserved symbols by name and anything else by hex id.
func Repr(atom object.Atom) string {
	switch a := atom.(type) {
	case nil:
		return ""
	case *object.Numeric:
		return object.FormatFloat(a.Value)
	case *object.String:
		return a.Value
	case *object.Symbol:
		return reprSymbol(a.Value)
	default:
		return a.Inspect()
	}
}

func reprSymbol(symbol value.Value) string {
	if name, ok := Name(symbol); ok {
		return name
	}
	if symbol.IsError() {
		return value.Message(symbol)
	}
	return fmt.Sprintf("%X", uint64(symbol))
}

// ReprValue resolves v through env and formats the result.
func ReprValue(env *object.Environment, v value.Value) string {
	if v.IsError() {
		return value.Message(v)
	}
	return Repr(env.ResolveAtom(v))
}
