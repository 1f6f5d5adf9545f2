// Package symbol is the process-wide registry of reserved keywords and builtin
// modules. The tables are built once at startup and never mutated.
package symbol

import (
	"fmt"
	"sort"

	"arevel/internal/object"
	"arevel/internal/ops"
	"arevel/internal/value"
)

// Keyword is a reserved symbol with a fixed id. Precedence 0 means the keyword
// takes no part in operator precedence.
type Keyword struct {
	Symbol     value.Value
	Name       string
	Precedence int
	Binary     ops.BinaryOp
	Unary      ops.UnaryOp
}

func (k *Keyword) IsOperator() bool {
	return k.Binary != nil || k.Unary != nil
}

// Module binds a builtin function name to a callable.
type Module struct {
	Symbol value.Value
	Name   string
	Value  *object.Function
}

// Reserved ids are indexes into the precedence table and must stay contiguous
// in table order.
var reserved = []*Keyword{
	{Symbol: value.SymComma, Name: ",", Precedence: 1},
	{Symbol: value.SymEquals, Name: "=", Precedence: 2},
	{Symbol: value.SymOr, Name: "or", Precedence: 3, Binary: ops.Or},
	{Symbol: value.SymAnd, Name: "and", Precedence: 4, Binary: ops.And},
	{Symbol: value.SymNot, Name: "not", Precedence: 5, Unary: ops.Not},
	{Symbol: value.SymDblEquals, Name: "==", Precedence: 10, Binary: ops.Eq},
	{Symbol: value.SymNotEquals, Name: "!=", Precedence: 10, Binary: ops.Ne},
	{Symbol: value.SymLt, Name: "<", Precedence: 15, Binary: ops.Lt},
	{Symbol: value.SymLte, Name: "<=", Precedence: 15, Binary: ops.Lte},
	{Symbol: value.SymGt, Name: ">", Precedence: 15, Binary: ops.Gt},
	{Symbol: value.SymGte, Name: ">=", Precedence: 15, Binary: ops.Gte},
	{Symbol: value.SymPlus, Name: "+", Precedence: 20, Binary: ops.Add},
	{Symbol: value.SymMinus, Name: "-", Precedence: 20, Binary: ops.Sub},
	{Symbol: value.SymMultiply, Name: "*", Precedence: 21, Binary: ops.Mul},
	{Symbol: value.SymDivide, Name: "/", Precedence: 21, Binary: ops.Div},
	{Symbol: value.SymModulo, Name: "%", Precedence: 21, Binary: ops.Mod},
	{Symbol: value.SymDot, Name: ".", Precedence: 25},
	{Symbol: value.SymOpenParen, Name: "(", Precedence: 30},
	{Symbol: value.SymCloseParen, Name: ")", Precedence: 30},
	{Symbol: value.SymOpenSqBr, Name: "["},
	{Symbol: value.SymCloseSqBr, Name: "]"},
	{Symbol: value.SymOpenBrace, Name: "{"},
	{Symbol: value.SymCloseBrace, Name: "}"},
	{Symbol: value.SymColon, Name: ":"},
	{Symbol: value.SymSemiColon, Name: ";"},
	{Symbol: value.True, Name: "True"},
	{Symbol: value.False, Name: "False"},
	{Symbol: value.None, Name: "None"},
	{Symbol: value.SymCallFn, Name: "__call__"},
}

const moduleStart = 0xFFFD_0000_0000_0100

var modules = []*Module{
	{Name: "min", Value: object.NewFunction2("min", ops.Min)},
	{Name: "max", Value: object.NewFunction2("max", ops.Max)},
	{Name: "abs", Value: object.NewFunction1("abs", ops.Abs)},
	{Name: "ceil", Value: object.NewFunction1("ceil", ops.Ceil)},
	{Name: "floor", Value: object.NewFunction1("floor", ops.Floor)},
	{Name: "truncate", Value: object.NewFunction1("truncate", ops.Trunc)},
	{Name: "round", Value: object.NewFunction1("round", ops.Round)},
	{Name: "sqrt", Value: object.NewFunction1("sqrt", ops.Sqrt)},
}

// moduleAliases are extra lookup names for builtin modules.
var moduleAliases = map[string]string{
	"TRUNC": "TRUNCATE",
}

var (
	precedences    [256]int
	keywordsByID   = make(map[value.Value]*Keyword, len(reserved))
	keywordsByName = make(map[string]*Keyword, len(reserved))
	modulesByID    = make(map[value.Value]*Module, len(modules))
	modulesByName  = make(map[string]*Module, len(modules))
)

func init() {
	for _, kw := range reserved {
		keywordsByID[kw.Symbol] = kw
		keywordsByName[object.NormalizeName(kw.Name)] = kw
		if id := kw.Symbol.Payload(); id < uint64(len(precedences)) {
			precedences[id] = kw.Precedence
		}
	}
	for i, m := range modules {
		m.Symbol = value.Value(moduleStart + uint64(i))
		modulesByID[m.Symbol] = m
		modulesByName[object.NormalizeName(m.Name)] = m
	}
	for alias, name := range moduleAliases {
		modulesByName[alias] = modulesByName[name]
	}
}

// Validate checks that reserved ids start at zero and increase by one in table
// order.
func Validate() error {
	for i, kw := range reserved {
		if id := kw.Symbol.Payload(); id != uint64(i) {
			return fmt.Errorf("keyword %q has id %#x, expected %#x", kw.Name, id, i)
		}
		if !kw.Symbol.IsSymbol() {
			return fmt.Errorf("keyword %q is not tagged as a symbol: %X", kw.Name, uint64(kw.Symbol))
		}
	}
	for i, m := range modules {
		if m.Symbol != value.Value(moduleStart+uint64(i)) {
			return fmt.Errorf("module %q has symbol %X", m.Name, uint64(m.Symbol))
		}
	}
	return nil
}

func ByID(symbol value.Value) (*Keyword, bool) {
	kw, ok := keywordsByID[symbol]
	return kw, ok
}

// ByName looks a keyword up by its normalized name, so "AND" and "and" match.
func ByName(name string) (*Keyword, bool) {
	kw, ok := keywordsByName[object.NormalizeName(name)]
	return kw, ok
}

// Precedence returns the precedence of a reserved symbol, or 0 for anything
// that is not an operator.
func Precedence(symbol value.Value) int {
	if _, ok := keywordsByID[symbol]; !ok {
		return 0
	}
	return precedences[symbol.Payload()]
}

func ModuleByName(name string) (*Module, bool) {
	m, ok := modulesByName[object.NormalizeName(name)]
	return m, ok
}

func ModuleBySymbol(symbol value.Value) (*Module, bool) {
	m, ok := modulesByID[symbol]
	return m, ok
}

// Keywords returns the reserved table in id order.
func Keywords() []*Keyword {
	out := make([]*Keyword, len(reserved))
	copy(out, reserved)
	return out
}

// Modules returns the builtin modules in symbol order.
func Modules() []*Module {
	out := make([]*Module, len(modules))
	copy(out, modules)
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Name returns the registered name of a reserved symbol or builtin module.
func Name(symbol value.Value) (string, bool) {
	if kw, ok := keywordsByID[symbol]; ok {
		return kw.Name, true
	}
	if m, ok := modulesByID[symbol]; ok {
		return m.Name, true
	}
	return "", false
}
