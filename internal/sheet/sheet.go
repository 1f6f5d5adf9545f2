// Package sheet builds an evaluation graph out of a document of named cells.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"arevel/internal/evaluator"
	"arevel/internal/object"
	"arevel/internal/parser"
	"arevel/internal/symbol"
	"arevel/internal/value"
)

// CellResult is the outcome of one cell after a run.
type CellResult struct {
	ID    uint64
	Name  string
	Input string
	Value value.Value
	Repr  string
	// Error is the human readable message when Value is an error word.
	Error string
	// Position is the input offset of a parse error, or -1.
	Position int
}

type Sheet struct {
	Name  string
	Env   *object.Environment
	Graph *evaluator.Graph
	// Cycle holds the cycle found by the last run, if any.
	Cycle *evaluator.CycleError

	bySymbol map[value.Value]uint64
	errPos   map[uint64]int
	nextID   uint64
}

// Build creates a sheet from doc. Cells get ids 1..n in document order. A nil
// env gets a fresh root environment.
func Build(doc *Document, env *object.Environment) (*Sheet, error) {
	if env == nil {
		env = object.NewEnvironment(value.APP_SYMBOL_START)
	}
	s := &Sheet{
		Name:     doc.Name,
		Env:      env,
		Graph:    evaluator.NewGraph(env),
		bySymbol: make(map[value.Value]uint64),
		errPos:   make(map[uint64]int),
		nextID:   1,
	}

	var cells []*object.Expression
	for _, c := range doc.Cells {
		x, err := s.define(c.Name, c.Input)
		if err != nil {
			return nil, err
		}
		cells = append(cells, x)
	}
	for _, x := range cells {
		if err := s.link(x); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// define registers a cell and its name without parsing it.
func (s *Sheet) define(name, input string) (*object.Expression, error) {
	x := object.NewExpression(s.nextID, input)
	s.nextID++

	taken := false
	if name != "" {
		_, reserved := symbol.ByName(name)
		_, builtin := symbol.ModuleByName(name)
		taken = reserved || builtin || !s.Env.IsValidName(name)
		if !taken {
			x.Name = name
		}
	}
	if err := s.Graph.AddCell(x); err != nil {
		return nil, err
	}
	s.bySymbol[x.Symbol] = x.CellID
	if taken {
		slog.Debug("cell name already used", slog.String("name", name), slog.Any("cell", x.CellID))
		// display only, the name stays bound to its first owner
		x.Name = name
		x.SetResult(value.ErrNameAlreadyUsed)
	}
	return x, nil
}

func (s *Sheet) resolve(name string) (value.Value, bool) {
	sym, ok := s.Env.LookupByName(name)
	if !ok {
		return 0, false
	}
	if _, isCell := s.bySymbol[sym]; !isCell {
		return 0, false
	}
	return sym, true
}

// link parses a cell and records the cells it reads. A parse error becomes
// the cell's result.
func (s *Sheet) link(x *object.Expression) error {
	parsed, deps, perr := s.parse(x.Input)
	delete(s.errPos, x.CellID)
	if perr != nil {
		s.errPos[x.CellID] = perr.Position
		x.SetResult(perr.Word())
		return nil
	}
	x.Parsed = parsed
	for _, dep := range deps {
		if err := s.Graph.AddDependency(x.CellID, dep); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sheet) parse(input string) ([]object.Atom, []uint64, *parser.Error) {
	result, err := parser.Parse(input, s.resolve)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			return nil, nil, perr
		}
		return nil, nil, &parser.Error{Code: value.ErrParse, Position: 0}
	}
	deps := make([]uint64, 0, len(result.Refs))
	for _, ref := range result.Refs {
		deps = append(deps, s.bySymbol[ref])
	}
	return result.Parsed, deps, nil
}

// SetInput replaces the input of a cell. The cell and everything that reads
// it will be evaluated again on the next run.
func (s *Sheet) SetInput(id uint64, input string) error {
	if _, ok := s.Graph.Cell(id); !ok {
		return fmt.Errorf("unknown cell %d", id)
	}
	parsed, deps, perr := s.parse(input)
	delete(s.errPos, id)
	if perr != nil {
		if err := s.Graph.UpdateInput(id, input, nil, nil); err != nil {
			return err
		}
		x, _ := s.Graph.Cell(id)
		s.errPos[id] = perr.Position
		x.SetResult(perr.Word())
		return nil
	}
	return s.Graph.UpdateInput(id, input, parsed, deps)
}

// AddCell appends a cell. Cells that failed to parse because they referenced
// a name that did not exist yet are parsed again.
func (s *Sheet) AddCell(name, input string) (*object.Expression, error) {
	x, err := s.define(name, input)
	if err != nil {
		return nil, err
	}
	if err := s.link(x); err != nil {
		return nil, err
	}
	for _, other := range s.Graph.Cells() {
		if other == x {
			continue
		}
		if result, ok := other.Result(); ok && value.ErrorCode(result) == value.ErrUnknownSymbol {
			if err := s.SetInput(other.CellID, other.Input); err != nil {
				return nil, err
			}
		}
	}
	return x, nil
}

// CellByName looks a cell up by its name, case insensitively.
func (s *Sheet) CellByName(name string) (*object.Expression, bool) {
	sym, ok := s.Env.LookupByName(name)
	if !ok {
		return nil, false
	}
	id, ok := s.bySymbol[sym]
	if !ok {
		return nil, false
	}
	return s.Graph.Cell(id)
}

// Run evaluates the sheet and returns one result per cell in id order. A cycle
// does not fail the run: the cells involved report CircularDependency and the
// cycle is kept in s.Cycle.
func (s *Sheet) Run(ctx context.Context) ([]CellResult, error) {
	report, err := s.Graph.Evaluate(ctx)
	s.Cycle = nil
	var cycle *evaluator.CycleError
	switch {
	case errors.As(err, &cycle):
		s.Cycle = cycle
	case err != nil:
		return nil, err
	}

	results := make([]CellResult, 0, s.Graph.Len())
	for _, x := range s.Graph.Cells() {
		v, ok := report.Result(x.CellID)
		if !ok {
			v, _ = x.Result()
		}
		r := CellResult{
			ID:       x.CellID,
			Name:     x.Name,
			Input:    x.Input,
			Value:    v,
			Repr:     symbol.ReprValue(s.Env, v),
			Position: -1,
		}
		if v.IsError() {
			r.Error = value.Message(v)
			if pos, ok := s.errPos[x.CellID]; ok {
				r.Position = pos
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Document returns the current cells as a document.
func (s *Sheet) Document() *Document {
	doc := &Document{Name: s.Name}
	for _, x := range s.Graph.Cells() {
		doc.Cells = append(doc.Cells, Cell{Name: x.Name, Input: x.Input})
	}
	return doc
}
