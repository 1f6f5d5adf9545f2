package ops

import (
	"math"
	"testing"

	"arevel/internal/object"
	"arevel/internal/value"
)

func num(f float64) value.Value { return value.FromFloat(f) }

func str(t *testing.T, env *object.Environment, s string) value.Value {
	t.Helper()
	if v, ok := value.MakeSmallString(s); ok {
		return v
	}
	return env.InitValue(&object.String{Value: s})
}

func TestArithmetic(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	cases := []struct {
		name     string
		op       BinaryOp
		a, b     value.Value
		expected value.Value
	}{
		{"1 + 2", Add, num(1), num(2), num(3)},
		{"5 - 7", Sub, num(5), num(7), num(-2)},
		{"3 * 4", Mul, num(3), num(4), num(12)},
		{"9 / 2", Div, num(9), num(2), num(4.5)},
		{"5 / 0", Div, num(5), num(0), value.ErrDivideByZero},
		{"5 / -0", Div, num(5), num(math.Copysign(0, -1)), value.ErrDivideByZero},
		{"7 % 3", Mod, num(7), num(3), num(1)},
		{"-7 % 3", Mod, num(-7), num(3), num(-1)},
		{"7 % 0", Mod, num(7), num(0), value.ErrDivideByZero},
		{"True - 1", Sub, value.True, num(1), value.ErrExpectedNumber},
		{"NaN * 2", Mul, num(math.NaN()), num(2), value.ErrExpectedNumber},
		{"error propagates", Mul, value.ErrUnknownValue, num(2), value.ErrUnknownValue},
		{"second error propagates", Sub, num(1), value.ErrTypeIsNaN, value.ErrTypeIsNaN},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.op(env, c.a, c.b); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestAddOverloads(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)

	result := Add(env, str(t, env, "foo"), str(t, env, "bar"))
	if !result.IsPointer() || result.IsError() {
		t.Fatalf("expected a fresh pointer symbol, got %X", uint64(result))
	}
	s, ok := env.ResolveAtom(result).(*object.String)
	if !ok || s.Value != "foobar" {
		t.Errorf("expected foobar, got %v", env.ResolveAtom(result))
	}

	long := Add(env, str(t, env, "a longer string "), str(t, env, "and more"))
	if s, ok := env.ResolveAtom(long).(*object.String); !ok || s.Value != "a longer string and more" {
		t.Errorf("expected heap strings to concatenate")
	}

	cases := []struct {
		name     string
		a, b     value.Value
		expected value.Value
	}{
		{"5 + bar", num(5), str(t, env, "bar"), value.ErrExpectedString},
		{"bar + 5", str(t, env, "bar"), num(5), value.ErrExpectedString},
		{"5 + True", num(5), value.True, value.ErrExpectedNumber},
		{"None + 5", value.None, num(5), value.ErrExpectedNumber},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Add(env, c.a, c.b); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestOperandsResolveThroughEnvironment(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	a := env.InitValue(&object.Numeric{Value: 10})
	b := env.DefineIdentifier()
	env.BindValue(b, &object.Symbol{Value: a})
	failed := env.DefineIdentifier()
	env.BindResult(failed, value.ErrDivideByZero)

	if got := Mul(env, b, num(2)); got != num(20) {
		t.Errorf("expected 20, got %v", got)
	}
	if got := Add(env, failed, num(1)); got != value.ErrDivideByZero {
		t.Errorf("expected the original error to propagate, got %v", got)
	}
	unbound := env.DefineIdentifier()
	if got := Add(env, unbound, num(1)); got != value.ErrExpectedNumber {
		t.Errorf("expected unresolved operand to be rejected, got %v", got)
	}
}

func TestComparisons(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	cases := []struct {
		name     string
		op       BinaryOp
		a, b     value.Value
		expected value.Value
	}{
		{"1 < 2", Lt, num(1), num(2), value.True},
		{"2 < 2", Lt, num(2), num(2), value.False},
		{"2 <= 2", Lte, num(2), num(2), value.True},
		{"3 > 2", Gt, num(3), num(2), value.True},
		{"1 >= 2", Gte, num(1), num(2), value.False},
		{"foo < 2", Lt, str(t, env, "foo"), num(2), value.ErrExpectedNumber},
		{"2 == 2", Eq, num(2), num(2), value.True},
		{"foo == foo", Eq, str(t, env, "foo"), env.InitValue(&object.String{Value: "foo"}), value.True},
		{"foo == 2", Eq, str(t, env, "foo"), num(2), value.False},
		{"True == True", Eq, value.True, value.True, value.True},
		{"1 != 2", Ne, num(1), num(2), value.True},
		{"None != None", Ne, value.None, value.None, value.False},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.op(env, c.a, c.b); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestLogic(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	cases := []struct {
		name     string
		op       BinaryOp
		a, b     value.Value
		expected value.Value
	}{
		{"True and True", And, value.True, value.True, value.True},
		{"True and 0", And, value.True, num(0), value.False},
		{"1 and -2", And, num(1), num(-2), value.True},
		{"False or None", Or, value.False, value.None, value.False},
		{"0 or text", Or, num(0), str(t, env, "x"), value.True},
		{"empty or 0", Or, value.EmptyString, num(0), value.False},
		{"error and True", And, value.ErrExpectedBool, value.True, value.ErrExpectedBool},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.op(env, c.a, c.b); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}

	if Not(env, num(0)) != value.True || Not(env, value.True) != value.False {
		t.Errorf("unexpected not results")
	}
	zero := env.InitValue(&object.Numeric{Value: 0})
	if Not(env, zero) != value.True {
		t.Errorf("expected not to look through symbols")
	}
}

func TestNativeFunctions(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)

	if got := Min(env, num(3), num(7)); got != num(3) {
		t.Errorf("min(3, 7): expected 3, got %v", got)
	}
	if got := Max(env, num(3), num(7)); got != num(7) {
		t.Errorf("max(3, 7): expected 7, got %v", got)
	}

	cases := []struct {
		name     string
		fn       UnaryOp
		in       value.Value
		expected value.Value
	}{
		{"abs", Abs, num(-2.5), num(2.5)},
		{"ceil", Ceil, num(1.2), num(2)},
		{"floor", Floor, num(-1.2), num(-2)},
		{"trunc", Trunc, num(-1.7), num(-1)},
		{"round half away from zero", Round, num(2.5), num(3)},
		{"round negative", Round, num(-2.5), num(-3)},
		{"sqrt", Sqrt, num(16), num(4)},
		{"abs of text", Abs, str(t, env, "x"), value.ErrExpectedNumber},
		{"floor of NaN", Floor, num(math.NaN()), value.ErrExpectedNumber},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.fn(env, c.in); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}

	root := Sqrt(env, num(-1))
	if !math.IsNaN(root.Float()) {
		t.Errorf("expected sqrt(-1) to be NaN")
	}
	if root.IsPointer() || root.IsString() || root.IsValidHeader() {
		t.Errorf("NaN result %X carries a tagged header", uint64(root))
	}
	if _, ok := env.ResolveAtom(root).(*object.Numeric); !ok {
		t.Errorf("NaN result should resolve to a number, got %T", env.ResolveAtom(root))
	}
	if got := Eq(env, root, Sqrt(env, num(-1))); got == value.True {
		t.Errorf("sqrt(-1) == sqrt(-1) should not be True")
	}
	inf := num(math.Inf(1))
	if got := Sub(env, inf, inf); uint64(got) != value.CANONICAL_NAN {
		t.Errorf("expected Inf - Inf to be the canonical NaN, got %X", uint64(got))
	}
	downstream := []struct {
		name string
		got  value.Value
	}{
		{"NaN + 1", Add(env, root, num(1))},
		{"1 + NaN", Add(env, num(1), root)},
		{"NaN * 2", Mul(env, root, num(2))},
		{"abs(NaN)", Abs(env, root)},
	}
	for _, d := range downstream {
		if d.got != value.ErrExpectedNumber {
			t.Errorf("%s: expected NaN to be rejected downstream, got %v", d.name, d.got)
		}
	}
}
