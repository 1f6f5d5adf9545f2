package object

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"arevel/internal/value"
)

const (
	NUMERIC_ATOM  = "NUMERIC"
	STRING_ATOM   = "STRING"
	SYMBOL_ATOM   = "SYMBOL"
	OBJECT_ATOM   = "OBJECT"
	HASHMAP_ATOM  = "HASHMAP"
	FUNCTION_ATOM = "FUNCTION"
)

type AtomType string

// Atom is the materialized form of a tagged value. Resolving a word through an
// Environment yields an Atom that needs no further indirection.
type Atom interface {
	Type() AtomType
	Inspect() string
}

type Numeric struct {
	Value float64
}

func (n *Numeric) Type() AtomType  { return NUMERIC_ATOM }
func (n *Numeric) Inspect() string { return FormatFloat(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() AtomType  { return STRING_ATOM }
func (s *String) Inspect() string { return s.Value }

// Symbol is an unresolved reference. Unresolved symbols are valid intermediate
// values, e.g. forward references to cells that have not run yet.
type Symbol struct {
	Value value.Value
}

func (s *Symbol) Type() AtomType  { return SYMBOL_ATOM }
func (s *Symbol) Inspect() string { return fmt.Sprintf("%X", uint64(s.Value)) }

// AvObject is a generic record with index-addressed fields. Id and class are
// truncated symbol ids.
type AvObject struct {
	ID     uint64
	Class  uint64
	Values []value.Value
}

func NewAvObject(id, class uint64) *AvObject {
	return &AvObject{ID: id, Class: class}
}

func (o *AvObject) Type() AtomType  { return OBJECT_ATOM }
func (o *AvObject) Inspect() string { return strconv.FormatUint(o.ID, 10) }

// ResizeValues pre-sizes the field store. Results are often saved out of
// order, so callers reserve space up front.
func (o *AvObject) ResizeValues(n int) {
	if n <= len(o.Values) {
		o.Values = o.Values[:n]
		return
	}
	grown := make([]value.Value, n)
	copy(grown, o.Values)
	o.Values = grown
}

// SaveValue writes a field, returning ErrMemoryAccess when index is outside the
// reserved range.
func (o *AvObject) SaveValue(index int, v value.Value) value.Value {
	if index < 0 || index >= len(o.Values) {
		return value.ErrMemoryAccess
	}
	o.Values[index] = v
	return v
}

// GetValue reads a field, returning ErrMemoryAccess when index is outside the
// reserved range.
func (o *AvObject) GetValue(index int) value.Value {
	if index < 0 || index >= len(o.Values) {
		return value.ErrMemoryAccess
	}
	return o.Values[index]
}

type HashMap struct {
	Pairs map[uint64]Atom
}

func (h *HashMap) Type() AtomType { return HASHMAP_ATOM }
func (h *HashMap) Inspect() string {
	var out bytes.Buffer

	keys := make([]uint64, 0, len(h.Pairs))
	for k := range h.Pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	pairs := []string{}
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%X: %s", k, h.Pairs[k].Inspect()))
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

type Function struct {
	Name string
	Fn   NativeFn
}

func (f *Function) Type() AtomType  { return FUNCTION_ATOM }
func (f *Function) Inspect() string { return "<Function>" }

// FormatFloat prints integral values without a fractional part.
func FormatFloat(f float64) string {
	if math.Abs(f) < 1<<53 && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy applies the truthiness rule to a resolved atom: nonzero numbers,
// non-empty strings, truthy symbols and every object are true.
func Truthy(a Atom) bool {
	switch a := a.(type) {
	case *Numeric:
		return value.FromFloat(a.Value).IsTruthy()
	case *String:
		return a.Value != ""
	case *Symbol:
		return a.Value.IsTruthy()
	case nil:
		return false
	default:
		return true
	}
}
