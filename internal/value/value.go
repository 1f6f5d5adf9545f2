package value

// Values are 64-bit words. Anything that is not one of the tagged NaN headers
// below is read as an IEEE 754 double so arithmetic stays on the fast path.
//
// Boxed values live in the NaN space under the signaling NaN mask. The top 16
// bits carry the header, the low 48 bits the payload:
//
//	1 11111111111 1TRO ........ payload (48 bits)
//	              |||
//	              ||+- 0 = string, 1 = object
//	              |+-- 0 = pointer, 1 = symbol
//	              +--- 0 = falsey, 1 = truthy
//
// Headers 0xFFF0-0xFFF8 are invalid and never produced. External consumers
// (compiled code) rely on these constants, so they must not change.

import (
	"fmt"
	"math"
)

type Value uint64

const (
	SIGNALING_NAN uint64 = 0xFFF8_0000_0000_0000
	QUIET_NAN     uint64 = 0xFFF0_0000_0000_0000

	LOW32_MASK  uint64 = 0x0000_0000_FFFF_FFFF
	HIGH32_MASK uint64 = 0xFFFF_FFFF_0000_0000

	// CANONICAL_NAN is the only NaN word FromFloat produces. Hardware NaNs can
	// carry the sign bit, which would land them in the tagged header space.
	CANONICAL_NAN uint64 = 0x7FF8_0000_0000_0000

	// PAYLOAD_MASK clears the header and keeps the value bits.
	PAYLOAD_MASK uint64 = 0x0000_FFFF_FFFF_FFFF

	VALHEAD_MASK         uint64 = 0xFFFF_0000_0000_0000
	VALHEAD_TRUTHY_MASK  uint64 = 0xFFF4_0000_0000_0000
	VALHEAD_REFTYPE_MASK uint64 = 0xFFF2_0000_0000_0000
	VALHEAD_OBJTYPE_MASK uint64 = 0xFFF1_0000_0000_0000
)

// The seven valid headers.
const (
	VALUE_F_PTR_OBJ uint64 = 0xFFF9_0000_0000_0000 // error values
	VALUE_F_SYM_STR uint64 = 0xFFFA_0000_0000_0000 // empty string sentinel
	VALUE_F_SYM_OBJ uint64 = 0xFFFB_0000_0000_0000 // falsey keywords
	VALUE_T_PTR_STR uint64 = 0xFFFC_0000_0000_0000 // heap string, 16 bit length payload
	VALUE_T_PTR_OBJ uint64 = 0xFFFD_0000_0000_0000 // heap objects and functions
	VALUE_T_SYM_STR uint64 = 0xFFFE_0000_0000_0000 // inline strings up to 6 bytes
	VALUE_T_SYM_OBJ uint64 = 0xFFFF_0000_0000_0000 // truthy keywords and user symbols
)

// Headers lists the valid headers in ascending order.
var Headers = [...]uint64{
	VALUE_F_PTR_OBJ,
	VALUE_F_SYM_STR,
	VALUE_F_SYM_OBJ,
	VALUE_T_PTR_STR,
	VALUE_T_PTR_OBJ,
	VALUE_T_SYM_STR,
	VALUE_T_SYM_OBJ,
}

// APP_SYMBOL_START is the first payload available to user symbols. Everything
// below it is reserved for keywords, builtin classes and modules.
const APP_SYMBOL_START uint64 = 0x0000_0000_0001_0000

// Type is the coarse classification returned by Classify.
type Type int

const (
	NumericType Type = iota
	StringType
	ObjectType
	SymbolType
)

func (t Type) String() string {
	switch t {
	case NumericType:
		return "NUMERIC"
	case StringType:
		return "STRING"
	case ObjectType:
		return "OBJECT"
	case SymbolType:
		return "SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// FromFloat boxes a double. Every double except NaN is its own encoding; all
// NaNs collapse to CANONICAL_NAN.
func FromFloat(f float64) Value {
	if f != f {
		return Value(CANONICAL_NAN)
	}
	return Value(math.Float64bits(f))
}

// Float reinterprets the word as a double without any checks.
func (v Value) Float() float64 {
	return math.Float64frombits(uint64(v))
}

func (v Value) Header() uint64 {
	return uint64(v) & VALHEAD_MASK
}

func (v Value) Payload() uint64 {
	return uint64(v) & PAYLOAD_MASK
}

// IsNumber reports whether the word is a non-NaN double. NaN words, boxed or
// not, are not numbers.
func (v Value) IsNumber() bool {
	f := v.Float()
	return f == f
}

// IsTruthy uses the truthy header bit for boxed values. Plain doubles are
// truthy when their magnitude is nonzero; 0, -0 and NaN are falsey.
func (v Value) IsTruthy() bool {
	if uint64(v)&VALHEAD_TRUTHY_MASK == VALHEAD_TRUTHY_MASK {
		return true
	}
	f := v.Float()
	return f > 0.0 || f < 0.0
}

func (v Value) IsObject() bool {
	return uint64(v)&VALHEAD_OBJTYPE_MASK == VALHEAD_OBJTYPE_MASK
}

func (v Value) IsString() bool {
	return uint64(v)&SIGNALING_NAN == SIGNALING_NAN && uint64(v)&VALHEAD_OBJTYPE_MASK != VALHEAD_OBJTYPE_MASK
}

func (v Value) IsSymbol() bool {
	return uint64(v)&VALHEAD_REFTYPE_MASK == VALHEAD_REFTYPE_MASK
}

func (v Value) IsPointer() bool {
	return uint64(v)&SIGNALING_NAN == SIGNALING_NAN && uint64(v)&VALHEAD_REFTYPE_MASK != VALHEAD_REFTYPE_MASK
}

// IsError reports a falsey pointer. Errors are regular words so they flow
// through the same slots as any other value.
func (v Value) IsError() bool {
	return uint64(v)&VALHEAD_MASK == VALUE_F_PTR_OBJ
}

// IsValidHeader reports whether the word carries one of the seven headers.
func (v Value) IsValidHeader() bool {
	switch v.Header() {
	case VALUE_F_PTR_OBJ, VALUE_F_SYM_STR, VALUE_F_SYM_OBJ,
		VALUE_T_PTR_STR, VALUE_T_PTR_OBJ, VALUE_T_SYM_STR, VALUE_T_SYM_OBJ:
		return true
	}
	return false
}

// Classify is the slow path used where the predicates are not enough, such as
// formatting. Unknown NaN headers come back as NumericType: decoding garbage
// must never panic, it may only misclassify.
func Classify(v Value) Type {
	switch v.Header() {
	case VALUE_F_SYM_STR, VALUE_T_PTR_STR, VALUE_T_SYM_STR:
		return StringType
	case VALUE_T_SYM_OBJ, VALUE_F_SYM_OBJ:
		return SymbolType
	case VALUE_T_PTR_OBJ, VALUE_F_PTR_OBJ:
		return ObjectType
	default:
		return NumericType
	}
}

// Truncate returns the low 32 bits of a pointer symbol, used as a relative
// offset into a contiguous store.
func Truncate(symbol Value) uint32 {
	return uint32(uint64(symbol) & LOW32_MASK)
}

// MakeValueSymbol tags raw as a truthy keyword symbol. Value symbols resolve
// to themselves. Bits of raw above the payload mask are lost; callers must
// validate first.
func MakeValueSymbol(raw uint64) Value {
	return Value((raw & PAYLOAD_MASK) | VALUE_T_SYM_OBJ)
}

// MakePointerSymbol tags raw as a pointer to a heap value. Same payload
// contract as MakeValueSymbol.
func MakePointerSymbol(raw uint64) Value {
	return Value((raw & PAYLOAD_MASK) | VALUE_T_PTR_OBJ)
}

// MakeStringPointer tags raw as a pointer to a heap string.
func MakeStringPointer(raw uint64) Value {
	return Value((raw & PAYLOAD_MASK) | VALUE_T_PTR_STR)
}

// MakeSizedStringPointer packs a string length (up to 65535) into the top
// payload bits of a string pointer so lengths can be compared without a
// dereference.
func MakeSizedStringPointer(index uint32, length int) Value {
	if length > math.MaxUint16 {
		length = math.MaxUint16
	}
	return MakeStringPointer(uint64(length)<<32 | uint64(index))
}

// StringLength reads the length stored by MakeSizedStringPointer.
func StringLength(v Value) int {
	return int((v.Payload() >> 32) & 0xFFFF)
}

func (v Value) String() string {
	if Classify(v) == NumericType {
		return fmt.Sprintf("%g", v.Float())
	}
	return fmt.Sprintf("%X", uint64(v))
}
