package value

// Reserved symbol words. Payloads 0x00-0xFF index the precedence table and are
// unique across the truthy and falsey spaces.
const (
	SymComma      Value = 0xFFFF_0000_0000_0000
	SymEquals     Value = 0xFFFF_0000_0000_0001
	SymOr         Value = 0xFFFF_0000_0000_0002
	SymAnd        Value = 0xFFFF_0000_0000_0003
	SymNot        Value = 0xFFFF_0000_0000_0004
	SymDblEquals  Value = 0xFFFF_0000_0000_0005
	SymNotEquals  Value = 0xFFFF_0000_0000_0006
	SymLt         Value = 0xFFFF_0000_0000_0007
	SymLte        Value = 0xFFFF_0000_0000_0008
	SymGt         Value = 0xFFFF_0000_0000_0009
	SymGte        Value = 0xFFFF_0000_0000_000A
	SymPlus       Value = 0xFFFF_0000_0000_000B
	SymMinus      Value = 0xFFFF_0000_0000_000C
	SymMultiply   Value = 0xFFFF_0000_0000_000D
	SymDivide     Value = 0xFFFF_0000_0000_000E
	SymModulo     Value = 0xFFFF_0000_0000_000F
	SymDot        Value = 0xFFFF_0000_0000_0010
	SymOpenParen  Value = 0xFFFF_0000_0000_0011
	SymCloseParen Value = 0xFFFF_0000_0000_0012
	SymOpenSqBr   Value = 0xFFFF_0000_0000_0013
	SymCloseSqBr  Value = 0xFFFF_0000_0000_0014
	SymOpenBrace  Value = 0xFFFF_0000_0000_0015
	SymCloseBrace Value = 0xFFFF_0000_0000_0016
	SymColon      Value = 0xFFFF_0000_0000_0017
	SymSemiColon  Value = 0xFFFF_0000_0000_0018
	True          Value = 0xFFFF_0000_0000_0019
	False         Value = 0xFFFB_0000_0000_001A
	None          Value = 0xFFFB_0000_0000_001B
	SymCallFn     Value = 0xFFFF_0000_0000_001C
)

const (
	EmptyArray Value = 0xFFFB_0000_0000_0042

	// EmptyString sits outside the precedence range and uses the string header
	// so string checks need no special case.
	EmptyString Value = 0xFFFA_0000_0000_FFFF

	SentinelEmpty    Value = 0xFFFB_0000_0000_004A
	SentinelDeleted  Value = 0xFFFB_0000_0000_004B
	SentinelSentinel Value = 0xFFFB_0000_0000_004C
)

// Builtin classes.
const (
	ClassObject      Value = 0xFFFF_0000_0000_1025
	ClassClass       Value = 0xFFFF_0000_0000_1026
	ClassFunction    Value = 0xFFFF_0000_0000_1027
	ClassEnvironment Value = 0xFFFF_0000_0000_1028
	ClassString      Value = 0xFFFF_0000_0000_1029
)

// Bool returns the canonical True or False word.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}
