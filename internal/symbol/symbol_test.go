package symbol

import (
	"math"
	"testing"

	"arevel/internal/object"
	"arevel/internal/value"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("registry failed validation: %v", err)
	}
	if len(Keywords()) != 29 {
		t.Errorf("expected 29 reserved keywords, got %d", len(Keywords()))
	}
}

func TestLookups(t *testing.T) {
	cases := []struct {
		name       string
		symbol     value.Value
		precedence int
		operator   bool
	}{
		{",", value.SymComma, 1, false},
		{"or", value.SymOr, 3, true},
		{"AND", value.SymAnd, 4, true},
		{"not", value.SymNot, 5, true},
		{"==", value.SymDblEquals, 10, true},
		{"<=", value.SymLte, 15, true},
		{"+", value.SymPlus, 20, true},
		{"%", value.SymModulo, 21, true},
		{".", value.SymDot, 25, false},
		{"(", value.SymOpenParen, 30, false},
		{"[", value.SymOpenSqBr, 0, false},
		{"true", value.True, 0, false},
		{"None", value.None, 0, false},
		{"__call__", value.SymCallFn, 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			kw, ok := ByName(c.name)
			if !ok {
				t.Fatalf("expected %q to be reserved", c.name)
			}
			if kw.Symbol != c.symbol {
				t.Errorf("expected symbol %X, got %X", uint64(c.symbol), uint64(kw.Symbol))
			}
			if byID, ok := ByID(c.symbol); !ok || byID != kw {
				t.Errorf("id and name views disagree for %q", c.name)
			}
			if got := Precedence(c.symbol); got != c.precedence {
				t.Errorf("expected precedence %d, got %d", c.precedence, got)
			}
			if kw.IsOperator() != c.operator {
				t.Errorf("expected operator=%v", c.operator)
			}
		})
	}

	if _, ok := ByName("foo"); ok {
		t.Errorf("expected foo to be unreserved")
	}
	if Precedence(value.FromFloat(1)) != 0 {
		t.Errorf("expected numbers to have no precedence")
	}
}

func TestModules(t *testing.T) {
	names := []string{"min", "max", "abs", "ceil", "floor", "truncate", "round", "sqrt"}
	mods := Modules()
	if len(mods) != len(names) {
		t.Fatalf("expected %d modules, got %d", len(names), len(mods))
	}
	for i, name := range names {
		m, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("expected module %s", name)
		}
		if m.Symbol != value.Value(0xFFFD_0000_0000_0100+uint64(i)) {
			t.Errorf("%s: unexpected symbol %X", name, uint64(m.Symbol))
		}
		if mods[i] != m {
			t.Errorf("%s: expected module %d in symbol order", name, i)
		}
		if bySym, ok := ModuleBySymbol(m.Symbol); !ok || bySym != m {
			t.Errorf("%s: symbol lookup failed", name)
		}
	}

	trunc, ok := ModuleByName("trunc")
	if !ok || trunc.Name != "truncate" {
		t.Errorf("expected trunc to alias truncate")
	}

	env := object.NewEnvironment(value.APP_SYMBOL_START)
	m, _ := ModuleByName("MIN")
	got := m.Value.Fn.Call(env, []value.Value{value.FromFloat(3), value.FromFloat(7)})
	if got != value.FromFloat(3) {
		t.Errorf("expected min(3, 7) == 3, got %v", got)
	}
	if got := m.Value.Fn.Call(env, []value.Value{value.FromFloat(3)}); got != value.ErrArityMismatch {
		t.Errorf("expected arity mismatch, got %v", got)
	}
}

func TestRepr(t *testing.T) {
	env := object.NewEnvironment(value.APP_SYMBOL_START)
	heap := env.InitValue(&object.String{Value: "hello world"})
	unbound := env.DefineIdentifier()
	obj := env.InitValue(object.NewAvObject(42, uint64(value.Truncate(value.ClassObject))))
	small, _ := value.MakeSmallString("hi")

	cases := []struct {
		name     string
		in       value.Value
		expected string
	}{
		{"integral", value.FromFloat(3), "3"},
		{"negative integral", value.FromFloat(-12), "-12"},
		{"fraction", value.FromFloat(2.5), "2.5"},
		{"small string", small, "hi"},
		{"empty string", value.EmptyString, ""},
		{"heap string", heap, "hello world"},
		{"keyword", value.True, "True"},
		{"falsey keyword", value.None, "None"},
		{"module", value.Value(0xFFFD_0000_0000_0107), "sqrt"},
		{"unbound symbol", unbound, "FFFD000000010001"},
		{"object", obj, "42"},
		{"error", value.ErrDivideByZero, value.Message(value.ErrDivideByZero)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ReprValue(env, c.in); got != c.expected {
				t.Errorf("expected %q, got %q", c.expected, got)
			}
		})
	}

	if got := Repr(&object.Numeric{Value: math.Inf(1)}); got != "+Inf" {
		t.Errorf("expected +Inf, got %q", got)
	}
	if got := Repr(object.NewFunction1("abs", nil)); got != "<Function>" {
		t.Errorf("expected <Function>, got %q", got)
	}
}
