package value

import (
	"math"
	"testing"
)

func TestHeaderPredicates(t *testing.T) {
	type row struct {
		number, truthy, object, str, symbol, pointer, err bool
	}
	cases := []struct {
		name   string
		header uint64
		want   row
	}{
		{"F_PTR_OBJ", VALUE_F_PTR_OBJ, row{false, false, true, false, false, true, true}},
		{"F_SYM_STR", VALUE_F_SYM_STR, row{false, false, false, true, true, false, false}},
		{"F_SYM_OBJ", VALUE_F_SYM_OBJ, row{false, false, true, false, true, false, false}},
		{"T_PTR_STR", VALUE_T_PTR_STR, row{false, true, false, true, false, true, false}},
		{"T_PTR_OBJ", VALUE_T_PTR_OBJ, row{false, true, true, false, false, true, false}},
		{"T_SYM_STR", VALUE_T_SYM_STR, row{false, true, false, true, true, false, false}},
		{"T_SYM_OBJ", VALUE_T_SYM_OBJ, row{false, true, true, false, true, false, false}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, payload := range []uint64{0, 1, 0x1234, PAYLOAD_MASK} {
				v := Value(c.header | payload)
				got := row{v.IsNumber(), v.IsTruthy(), v.IsObject(), v.IsString(), v.IsSymbol(), v.IsPointer(), v.IsError()}
				if got != c.want {
					t.Errorf("payload %X: expected %+v, got %+v", payload, c.want, got)
				}
				if !v.IsValidHeader() {
					t.Errorf("payload %X: header reported invalid", payload)
				}
			}
		})
	}
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name     string
		v        Value
		expected bool
	}{
		{"True", True, true},
		{"False", False, false},
		{"None", None, false},
		{"error", ErrValue, false},
		{"0.0", FromFloat(0.0), false},
		{"-0.0", FromFloat(math.Copysign(0, -1)), false},
		{"1.0", FromFloat(1.0), true},
		{"-3.0", FromFloat(-3.0), true},
		{"NaN", FromFloat(math.NaN()), false},
		{"+Inf", FromFloat(math.Inf(1)), true},
		{"empty string", EmptyString, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.IsTruthy(); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestFloatRoundTrip(t *testing.T) {
	cases := []float64{
		0, math.Copysign(0, -1), 1, -1, 3.14159, 1e300, -1e-300,
		math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1), math.Inf(-1),
	}
	for _, f := range cases {
		v := FromFloat(f)
		if !v.IsNumber() {
			t.Errorf("%v: expected a number", f)
		}
		if math.Float64bits(v.Float()) != math.Float64bits(f) {
			t.Errorf("%v: round trip changed bits", f)
		}
		if Classify(v) != NumericType {
			t.Errorf("%v: expected NumericType, got %v", f, Classify(v))
		}
	}
}

func TestFromFloatCanonicalNaN(t *testing.T) {
	cases := []struct {
		name string
		f    float64
	}{
		{"math.NaN", math.NaN()},
		{"negative NaN", math.Float64frombits(0xFFF8_0000_0000_0000)},
		{"NaN with payload", math.Float64frombits(0xFFFD_0000_0000_0042)},
		{"inf minus inf", math.Inf(1) - math.Inf(1)},
		{"sqrt of negative", math.Sqrt(-1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := FromFloat(c.f)
			if uint64(v) != CANONICAL_NAN {
				t.Fatalf("expected %X, got %X", CANONICAL_NAN, uint64(v))
			}
			if v.IsValidHeader() || v.IsPointer() || v.IsString() || v.IsSymbol() || v.IsError() {
				t.Errorf("NaN word %X reads as a tagged value", uint64(v))
			}
			if v.IsNumber() || v.IsTruthy() {
				t.Errorf("NaN word should be neither a number nor truthy")
			}
			if Classify(v) != NumericType {
				t.Errorf("expected NumericType, got %v", Classify(v))
			}
		})
	}
}

func TestTruncatePointerSymbol(t *testing.T) {
	cases := []uint64{0, 1, APP_SYMBOL_START, 0xDEAD_BEEF, 0x1234_5678_9ABC, PAYLOAD_MASK}
	for _, p := range cases {
		sym := MakePointerSymbol(p)
		if got := Truncate(sym); got != uint32(p) {
			t.Errorf("payload %X: expected %X, got %X", p, uint32(p), got)
		}
		if sym.Header() != VALUE_T_PTR_OBJ {
			t.Errorf("payload %X: wrong header %X", p, sym.Header())
		}
	}

	// high bits above the payload are dropped, not carried into the header
	if got := MakePointerSymbol(0xFFFF_0000_0000_0001); got != Value(VALUE_T_PTR_OBJ|1) {
		t.Errorf("expected overflow bits to be masked, got %X", uint64(got))
	}
}

func TestMakeSymbols(t *testing.T) {
	if v := MakeValueSymbol(7); v.Header() != VALUE_T_SYM_OBJ || v.Payload() != 7 {
		t.Errorf("unexpected value symbol %X", uint64(v))
	}
	if v := MakeStringPointer(7); v.Header() != VALUE_T_PTR_STR || !v.IsString() || !v.IsPointer() {
		t.Errorf("unexpected string pointer %X", uint64(v))
	}
	v := MakeSizedStringPointer(42, 11)
	if Truncate(v) != 42 || StringLength(v) != 11 {
		t.Errorf("unexpected sized pointer %X", uint64(v))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		v        Value
		expected Type
	}{
		{"number", FromFloat(2.5), NumericType},
		{"nan", FromFloat(math.NaN()), NumericType},
		{"negative nan", Value(SIGNALING_NAN), NumericType},
		{"invalid header", Value(0xFFF3_0000_0000_0001), NumericType},
		{"small string", Value(VALUE_T_SYM_STR | 0x41), StringType},
		{"empty string", EmptyString, StringType},
		{"string pointer", MakeStringPointer(1), StringType},
		{"true", True, SymbolType},
		{"none", None, SymbolType},
		{"object", MakePointerSymbol(APP_SYMBOL_START), ObjectType},
		{"error", ErrDivideByZero, ObjectType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.v); got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestSmallString(t *testing.T) {
	for _, s := range []string{"", "a", "foo", "sixsix"} {
		v, ok := MakeSmallString(s)
		if !ok {
			t.Fatalf("%q: expected to fit", s)
		}
		if !v.IsString() {
			t.Errorf("%q: expected a string word", s)
		}
		got, ok := SmallString(v)
		if !ok || got != s {
			t.Errorf("%q: round trip gave %q", s, got)
		}
	}

	if _, ok := MakeSmallString("seven!!"); ok {
		t.Errorf("expected 7 bytes not to fit")
	}
	if _, ok := SmallString(True); ok {
		t.Errorf("expected keyword not to decode as a string")
	}
}

func TestErrors(t *testing.T) {
	withMeta := WithDetail(ErrDivideByZero, 99)
	if !withMeta.IsError() {
		t.Fatalf("expected an error word")
	}
	if ErrorCode(withMeta) != ErrDivideByZero {
		t.Errorf("expected code to survive metadata, got %X", uint64(ErrorCode(withMeta)))
	}
	if Detail(withMeta) != 99 {
		t.Errorf("expected detail 99, got %d", Detail(withMeta))
	}
	if Message(withMeta) != Message(ErrDivideByZero) {
		t.Errorf("expected metadata not to change the message")
	}

	stages := []struct {
		v     Value
		stage Stage
	}{
		{ErrUnterminatedString, ParseStage},
		{ErrUnknownSymbol, ParseStage},
		{ErrInterpreter, InterpreterStage},
		{ErrExpectedNumber, RuntimeStage},
		{ErrExpectedFunction, RuntimeStage},
	}
	for _, s := range stages {
		if got := ErrorStage(s.v); got != s.stage {
			t.Errorf("%X: expected %v, got %v", uint64(s.v), s.stage, got)
		}
	}

	if Message(Value(VALUE_F_PTR_OBJ|0x0000_00EE_0000_0000)) == "" {
		t.Errorf("expected a fallback message for unknown codes")
	}
}
