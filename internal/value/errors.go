package value

// Error words use the VALUE_F_PTR_OBJ header. The top 16 bits of the payload
// hold the error code, the low 32 bits index optional metadata. Earlier stages
// use higher bits: parse codes live in bits 40-47, runtime codes in 32-39.
// Codes are never reused across stages.
const (
	ErrValue Value = 0xFFF9_0000_0000_0000

	ErrParse       Value = 0xFFF9_0100_0000_0000
	ErrInterpreter Value = 0xFFF9_0010_0000_0000

	ErrUnterminatedString Value = 0xFFF9_0200_0000_0000
	ErrInvalidFloat       Value = 0xFFF9_0300_0000_0000
	ErrUnknownToken       Value = 0xFFF9_0400_0000_0000
	ErrUnexpectedToken    Value = 0xFFF9_0500_0000_0000
	ErrUnmatchedParens    Value = 0xFFF9_0600_0000_0000
	ErrNameAlreadyUsed    Value = 0xFFF9_0700_0000_0000
	ErrUnknownSymbol      Value = 0xFFF9_0800_0000_0000

	ErrInvalidType        Value = 0xFFF9_0001_0000_0000
	ErrTypeIsNaN          Value = 0xFFF9_0002_0000_0000
	ErrExpectedNumber     Value = 0xFFF9_0003_0000_0000
	ErrExpectedBool       Value = 0xFFF9_0004_0000_0000
	ErrUnknownValue       Value = 0xFFF9_0005_0000_0000
	ErrCircularDependency Value = 0xFFF9_0006_0000_0000
	ErrMemoryAccess       Value = 0xFFF9_0007_0000_0000
	ErrExpectedString     Value = 0xFFF9_0008_0000_0000
	ErrDivideByZero       Value = 0xFFF9_0009_0000_0000
	ErrUnknownFunction    Value = 0xFFF9_000A_0000_0000
	ErrArityMismatch      Value = 0xFFF9_000B_0000_0000
	ErrExpectedFunction   Value = 0xFFF9_000C_0000_0000

	// ErrRuntime shares its code with ErrInvalidType.
	ErrRuntime = ErrInvalidType
)

const (
	parseStageMask       uint64 = 0x0000_FF00_0000_0000
	interpreterStageMask uint64 = 0x0000_00F0_0000_0000
)

type Stage int

const (
	RuntimeStage Stage = iota
	InterpreterStage
	ParseStage
)

func (s Stage) String() string {
	switch s {
	case ParseStage:
		return "parse"
	case InterpreterStage:
		return "interpreter"
	default:
		return "runtime"
	}
}

// Messages are written for people: no codes, no blame, and a hint at the fix
// where there is one.
var errorMessages = map[Value]string{
	ErrParse:              "Arevel couldn't understand this expression.",
	ErrInterpreter:        "There was an unknown error while interpreting this code.",
	ErrUnterminatedString: "Arevel couldn't find where this string ends. Make sure the text has matching quotation marks.",
	ErrInvalidFloat:       "This decimal number is in a weird format.",
	ErrUnknownToken:       "There's an unknown token in this expression.",
	ErrUnexpectedToken:    "There's a token in an unexpected location in this expression.",
	ErrUnmatchedParens:    "Arevel couldn't find where the brackets end. Check whether all opened brackets are closed.",
	ErrNameAlreadyUsed:    "This name is already used by another cell. Pick a different name for one of them.",
	ErrUnknownSymbol:      "Arevel didn't recognize the symbol.",
	ErrInvalidType:        "That data type doesn't work with this operation.",
	ErrTypeIsNaN:          "This operation doesn't work with not-a-number (NaN) values.",
	ErrExpectedNumber:     "Arevel expects a number here.",
	ErrExpectedBool:       "Arevel expects a true/false boolean here.",
	ErrUnknownValue:       "The code tried to read from an unknown value.",
	ErrCircularDependency: "There's a circular reference between these cells.",
	ErrMemoryAccess:       "The code tried to read outside of an object's fields.",
	ErrExpectedString:     "Arevel expects some text value here.",
	ErrDivideByZero:       "Dividing by zero is undefined. Make sure the denominator is not a zero before dividing.",
	ErrUnknownFunction:    "Arevel doesn't know a function by this name.",
	ErrArityMismatch:      "Unexpected number of parameters. Check how many values this function takes.",
	ErrExpectedFunction:   "Arevel expects a valid function here.",
}

var stageMessages = map[Stage]string{
	ParseStage:       errorMessages[ErrParse],
	InterpreterStage: errorMessages[ErrInterpreter],
	RuntimeStage:     "There was a mysterious error while running this code.",
}

// ErrorCode strips the metadata index from an error word.
func ErrorCode(v Value) Value {
	return Value(uint64(v) & HIGH32_MASK)
}

// WithDetail attaches a metadata index to an error code.
func WithDetail(code Value, index uint32) Value {
	return Value(uint64(ErrorCode(code)) | uint64(index))
}

// Detail returns the metadata index of an error word.
func Detail(v Value) uint32 {
	return Truncate(v)
}

func ErrorStage(v Value) Stage {
	switch {
	case uint64(v)&parseStageMask != 0:
		return ParseStage
	case uint64(v)&interpreterStageMask != 0:
		return InterpreterStage
	default:
		return RuntimeStage
	}
}

// Message returns the human readable message for an error word, falling back
// to the message of its stage for unknown codes.
func Message(v Value) string {
	if msg, ok := errorMessages[ErrorCode(v)]; ok {
		return msg
	}
	return stageMessages[ErrorStage(v)]
}
