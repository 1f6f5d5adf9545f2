package object

import (
	"bytes"
	"fmt"
	"strings"

	"arevel/internal/value"
)

// Expression is one cell: raw input, its parsed token stream, its dependency
// edges and a write-once result.
type Expression struct {
	CellID uint64
	Symbol value.Value
	Name   string
	Input  string
	Parsed []Atom

	DependsOn []uint64
	UsedBy    []uint64

	// UnmetDependCount is scheduler bookkeeping: dependencies not yet evaluated.
	UnmetDependCount int32

	result    value.Value
	hasResult bool
}

func NewExpression(cellID uint64, input string) *Expression {
	return &Expression{
		CellID: cellID,
		Input:  input,
	}
}

// SetResult records the first result only so an earlier error is never
// clobbered by a later write.
func (x *Expression) SetResult(result value.Value) {
	if x.hasResult {
		return
	}
	x.result = result
	x.hasResult = true
}

func (x *Expression) Result() (value.Value, bool) {
	return x.result, x.hasResult
}

func (x *Expression) HasResult() bool {
	return x.hasResult
}

// ResetResult clears the result so the cell runs again on the next pass.
func (x *Expression) ResetResult() {
	x.result = 0
	x.hasResult = false
}

func (x *Expression) Inspect() string {
	var out bytes.Buffer
	out.WriteString("expression {\n")
	out.WriteString(fmt.Sprintf("  id: %d\n", x.CellID))
	out.WriteString(fmt.Sprintf("  input: %q\n", x.Input))
	out.WriteString(fmt.Sprintf("  symbol: %X\n", uint64(x.Symbol)))

	parsed := make([]string, 0, len(x.Parsed))
	for _, atom := range x.Parsed {
		parsed = append(parsed, atom.Inspect())
	}
	out.WriteString(fmt.Sprintf("  parsed: [%s]\n", strings.Join(parsed, " ")))
	out.WriteString(fmt.Sprintf("  depends_on: %v\n", x.DependsOn))
	out.WriteString(fmt.Sprintf("  used_by: %v\n", x.UsedBy))
	out.WriteString(fmt.Sprintf("  unmet_depend_count: %d\n", x.UnmetDependCount))
	if x.hasResult {
		out.WriteString(fmt.Sprintf("  result: %X\n", uint64(x.result)))
	}
	out.WriteString("}")
	return out.String()
}
