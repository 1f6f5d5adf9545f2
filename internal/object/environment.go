package object

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"arevel/internal/value"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMaxDepth bounds DeepResolve against pathological chains.
const DefaultMaxDepth = 1000

var nextID atomic.Uint64

func nextEnvID() uint64 {
	return nextID.Add(1)
}

// Identifier is the binding of a symbol inside one scope. It is created on the
// first name or value bind and mutated in place after that.
type Identifier struct {
	Symbol value.Value
	Name   string
	Value  Atom
}

// Environment is a single scope. It is not safe for concurrent use: exactly
// one evaluation unit writes to it, and child scopes only read their outers.
type Environment struct {
	ID    uint64
	Outer *Environment
	Body  []*Expression

	// NextSymbolID is the payload of the next symbol minted by this scope.
	NextSymbolID uint64
	MaxDepth     int

	depth   uint64
	base    uint64
	names   map[string]value.Value
	heap    []*Identifier
	foreign map[value.Value]*Identifier
}

// NewEnvironment creates a root scope minting symbols from nextSymbolID.
func NewEnvironment(nextSymbolID uint64) *Environment {
	return &Environment{
		ID:           nextEnvID(),
		NextSymbolID: nextSymbolID,
		MaxDepth:     DefaultMaxDepth,
		base:         nextSymbolID,
		names:        make(map[string]value.Value),
		foreign:      make(map[value.Value]*Identifier),
	}
}

// NewEnclosedEnvironment creates a child scope. The scope depth is stored in
// the upper payload bits of minted symbols, so symbols stay unique along the
// chain while Truncate still yields a scope-relative offset.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	depth := outer.depth + 1
	env := NewEnvironment(depth<<32 | value.APP_SYMBOL_START)
	env.Outer = outer
	env.depth = depth
	env.MaxDepth = outer.MaxDepth
	slog.Debug("new enclosed environment",
		slog.Any("id", env.ID),
		slog.Any("outer", outer.ID),
		slog.Any("depth", depth))
	return env
}

// NormalizeName is the key used by the name index: trimmed and uppercased.
func NormalizeName(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}

// DefineIdentifier mints a fresh pointer symbol and advances the counter.
func (e *Environment) DefineIdentifier() value.Value {
	symbol := value.MakePointerSymbol(e.NextSymbolID)
	e.NextSymbolID++
	return symbol
}

// heapIndex maps a symbol minted by this scope to its slot in the heap.
func (e *Environment) heapIndex(symbol value.Value) (int, bool) {
	if symbol.Header() != value.VALUE_T_PTR_OBJ {
		return 0, false
	}
	payload := symbol.Payload()
	if payload < e.base || payload >= e.NextSymbolID {
		return 0, false
	}
	if payload>>32 != e.base>>32 {
		return 0, false
	}
	return int(value.Truncate(symbol) - value.Truncate(value.Value(e.base))), true
}

func (e *Environment) local(symbol value.Value) (*Identifier, bool) {
	if idx, ok := e.heapIndex(symbol); ok {
		if idx < len(e.heap) && e.heap[idx] != nil {
			return e.heap[idx], true
		}
		return nil, false
	}
	ident, ok := e.foreign[symbol]
	return ident, ok
}

func (e *Environment) identifier(symbol value.Value) *Identifier {
	if ident, ok := e.local(symbol); ok {
		return ident
	}
	ident := &Identifier{Symbol: symbol}
	if idx, ok := e.heapIndex(symbol); ok {
		if idx >= len(e.heap) {
			grown := make([]*Identifier, idx+1, max(idx+1, 2*len(e.heap)))
			copy(grown, e.heap)
			e.heap = grown
		}
		e.heap[idx] = ident
	} else {
		e.foreign[symbol] = ident
	}
	return ident
}

// BindName binds a display name to symbol. The first symbol bound to a
// normalized name keeps it; later binds of the same name are ignored. The
// display name on the symbol itself is always updated.
func (e *Environment) BindName(symbol value.Value, name string) {
	uname := NormalizeName(name)
	if _, exists := e.names[uname]; !exists {
		e.names[uname] = symbol
	} else if e.names[uname] != symbol {
		slog.Debug("name already bound, keeping first binding",
			slog.String("name", name),
			slog.Any("symbol", e.names[uname]))
	}
	e.identifier(symbol).Name = name
}

// BindValue attaches or replaces the atom for symbol.
func (e *Environment) BindValue(symbol value.Value, atom Atom) {
	e.identifier(symbol).Value = atom
}

// BindResult resolves a raw result word and binds the atom to symbol.
func (e *Environment) BindResult(symbol value.Value, result value.Value) {
	e.BindValue(symbol, e.ResolveAtom(result))
}

// InitValue mints a symbol holding atom.
func (e *Environment) InitValue(atom Atom) value.Value {
	symbol := e.DefineIdentifier()
	e.BindValue(symbol, atom)
	return symbol
}

// IsValidName reports whether name is still free in this scope. Outer scopes
// are not checked.
func (e *Environment) IsValidName(name string) bool {
	uname := NormalizeName(name)
	if uname == "" {
		return false
	}
	_, exists := e.names[uname]
	return !exists
}

// LookupByName searches this scope, then each outer scope in turn.
func (e *Environment) LookupByName(name string) (value.Value, bool) {
	uname := NormalizeName(name)
	for env := e; env != nil; env = env.Outer {
		if symbol, ok := env.names[uname]; ok {
			return symbol, true
		}
	}
	return 0, false
}

// LookupLocalByName only checks this scope.
func (e *Environment) LookupLocalByName(name string) (value.Value, bool) {
	symbol, ok := e.names[NormalizeName(name)]
	return symbol, ok
}

// Lookup searches this scope, then each outer scope in turn. Child and sibling
// scopes are never visited.
func (e *Environment) Lookup(symbol value.Value) (*Identifier, bool) {
	for env := e; env != nil; env = env.Outer {
		if ident, ok := env.local(symbol); ok {
			return ident, true
		}
	}
	return nil, false
}

// LookupLocal only checks this scope.
func (e *Environment) LookupLocal(symbol value.Value) (*Identifier, bool) {
	return e.local(symbol)
}

func (e *Environment) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

// DeepResolve follows Symbol-valued identifiers until it reaches a terminal
// value. A symbol that is not a pointer (a keyword, an error) is terminal and
// the identifier holding it is returned. Unbound links, cycles and chains
// longer than MaxDepth yield nil.
func (e *Environment) DeepResolve(symbol value.Value) *Identifier {
	visited := map[value.Value]struct{}{symbol: {}}
	current := symbol

	for hops := 0; hops < e.maxDepth(); hops++ {
		ident, ok := e.Lookup(current)
		if !ok || ident.Value == nil {
			return nil
		}
		next, ok := ident.Value.(*Symbol)
		if !ok {
			return ident
		}
		if !next.Value.IsPointer() || next.Value.IsError() {
			return ident
		}
		if _, seen := visited[next.Value]; seen {
			slog.Warn("circular symbol reference",
				slog.String("symbol", fmt.Sprintf("%X", uint64(symbol))),
				slog.String("at", fmt.Sprintf("%X", uint64(next.Value))))
			return nil
		}
		visited[next.Value] = struct{}{}
		current = next.Value
	}

	slog.Warn("symbol resolution exceeded max depth",
		slog.String("symbol", fmt.Sprintf("%X", uint64(symbol))),
		slog.Int("max-depth", e.maxDepth()))
	return nil
}

// ResolveAtom turns a word into an atom. Every operator goes through here.
// Numbers and inline strings decode directly, pointers are chased through the
// scope chain, and anything that cannot be resolved comes back as an
// unresolved Symbol. Keywords resolve to themselves. The returned atom is
// shared with the binding and must not be mutated.
func (e *Environment) ResolveAtom(v value.Value) Atom {
	if v.IsNumber() {
		return &Numeric{Value: v.Float()}
	}
	if s, ok := value.SmallString(v); ok {
		return &String{Value: s}
	}
	if v.IsPointer() {
		if ident := e.DeepResolve(v); ident != nil && ident.Value != nil {
			return ident.Value
		}
		return &Symbol{Value: v}
	}
	if v.IsValidHeader() {
		return &Symbol{Value: v}
	}
	return &Numeric{Value: v.Float()}
}

// Len returns the number of identifiers bound in this scope.
func (e *Environment) Len() int {
	n := len(e.foreign)
	for _, ident := range e.heap {
		if ident != nil {
			n++
		}
	}
	return n
}

func (e *Environment) Inspect() string {
	var out bytes.Buffer
	out.WriteString("environment {\n")

	idents := make([]*Identifier, 0, e.Len())
	for _, ident := range e.heap {
		if ident != nil {
			idents = append(idents, ident)
		}
	}
	for _, ident := range e.foreign {
		idents = append(idents, ident)
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].Symbol < idents[j].Symbol })

	for _, ident := range idents {
		val := "<unbound>"
		if ident.Value != nil {
			val = ident.Value.Inspect()
		}
		out.WriteString(fmt.Sprintf("  %X %s: %s\n", uint64(ident.Symbol), ident.Name, val))
	}
	out.WriteString(fmt.Sprintf("  body: %d expressions\n}", len(e.Body)))
	return out.String()
}
