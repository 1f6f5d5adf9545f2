package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"arevel/internal/object"
	"arevel/internal/value"
)

// Graph is the dependency graph of the cells in one environment. It is not
// safe for concurrent use.
type Graph struct {
	Env *object.Environment

	cells map[uint64]*object.Expression
	ids   []uint64
	order []uint64
	index map[uint64]int
}

func NewGraph(env *object.Environment) *Graph {
	return &Graph{
		Env:   env,
		cells: make(map[uint64]*object.Expression),
		index: make(map[uint64]int),
	}
}

// AddCell registers x. A cell without a symbol gets a fresh one from the
// environment so its result can be bound and read by dependents.
func (g *Graph) AddCell(x *object.Expression) error {
	if _, exists := g.cells[x.CellID]; exists {
		return fmt.Errorf("cell %d already exists", x.CellID)
	}
	if x.Symbol == 0 {
		x.Symbol = g.Env.DefineIdentifier()
	}
	if x.Name != "" {
		g.Env.BindName(x.Symbol, x.Name)
	}
	g.cells[x.CellID] = x
	g.ids = append(g.ids, x.CellID)
	g.Env.Body = append(g.Env.Body, x)
	return nil
}

// AddDependency records that cellID reads the result of depID, keeping the
// reverse edge in sync. Repeated edges are ignored.
func (g *Graph) AddDependency(cellID, depID uint64) error {
	cell, ok := g.cells[cellID]
	if !ok {
		return fmt.Errorf("unknown cell %d", cellID)
	}
	dep, ok := g.cells[depID]
	if !ok {
		return fmt.Errorf("cell %d depends on unknown cell %d", cellID, depID)
	}
	if !slices.Contains(cell.DependsOn, depID) {
		cell.DependsOn = append(cell.DependsOn, depID)
	}
	if !slices.Contains(dep.UsedBy, cellID) {
		dep.UsedBy = append(dep.UsedBy, cellID)
	}
	return nil
}

func (g *Graph) removeDependencies(x *object.Expression) {
	for _, depID := range x.DependsOn {
		if dep, ok := g.cells[depID]; ok {
			dep.UsedBy = slices.DeleteFunc(dep.UsedBy, func(id uint64) bool { return id == x.CellID })
		}
	}
	x.DependsOn = nil
}

func (g *Graph) Cell(id uint64) (*object.Expression, bool) {
	x, ok := g.cells[id]
	return x, ok
}

// Cells returns the cells in insertion order.
func (g *Graph) Cells() []*object.Expression {
	out := make([]*object.Expression, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.cells[id])
	}
	return out
}

func (g *Graph) Len() int {
	return len(g.ids)
}

// Order returns the cell ids in the order of the last evaluation pass.
func (g *Graph) Order() []uint64 {
	return slices.Clone(g.order)
}

// EvalIndex returns the position of a cell in the last evaluation pass, or -1
// when the cell was not evaluated.
func (g *Graph) EvalIndex(id uint64) int {
	if idx, ok := g.index[id]; ok {
		return idx
	}
	return -1
}

// Invalidate clears the result of a cell and of every cell that transitively
// reads it, returning the affected ids in visit order.
func (g *Graph) Invalidate(id uint64) []uint64 {
	if _, ok := g.cells[id]; !ok {
		return nil
	}
	seen := map[uint64]struct{}{id: {}}
	queue := []uint64{id}
	var out []uint64
	for len(queue) > 0 {
		current := g.cells[queue[0]]
		queue = queue[1:]
		current.ResetResult()
		g.Env.BindValue(current.Symbol, nil)
		out = append(out, current.CellID)
		for _, dep := range current.UsedBy {
			if _, ok := seen[dep]; !ok {
				seen[dep] = struct{}{}
				queue = append(queue, dep)
			}
		}
	}
	slog.Debug("invalidated cells", slog.Any("cells", out))
	return out
}

// UpdateInput replaces the input of a cell, rewires its dependencies and
// invalidates it along with its dependents.
func (g *Graph) UpdateInput(id uint64, input string, parsed []object.Atom, deps []uint64) error {
	x, ok := g.cells[id]
	if !ok {
		return fmt.Errorf("unknown cell %d", id)
	}
	for _, depID := range deps {
		if _, ok := g.cells[depID]; !ok {
			return fmt.Errorf("cell %d depends on unknown cell %d", id, depID)
		}
	}
	g.removeDependencies(x)
	x.Input = input
	x.Parsed = parsed
	for _, depID := range deps {
		if err := g.AddDependency(id, depID); err != nil {
			return err
		}
	}
	g.Invalidate(id)
	return nil
}

// Report is the outcome of one evaluation pass.
type Report struct {
	Order   []uint64
	Results map[uint64]value.Value
}

func (r *Report) Result(id uint64) (value.Value, bool) {
	v, ok := r.Results[id]
	return v, ok
}

// Evaluate runs every cell once in dependency order. Ready cells are taken
// first in first out, seeded by insertion order. Cells that already hold a
// result are not reduced again but still release their dependents. Cells left
// waiting when the queue drains are part of, or behind, a cycle: their results
// stay unset and a *CycleError is returned. The context is checked between
// cells.
func (g *Graph) Evaluate(ctx context.Context) (*Report, error) {
	report := &Report{Results: make(map[uint64]value.Value, len(g.ids))}
	g.order = g.order[:0]
	clear(g.index)

	var ready []uint64
	pending := make(map[uint64]struct{})
	for _, id := range g.ids {
		x := g.cells[id]
		x.UnmetDependCount = int32(len(x.DependsOn))
		if x.UnmetDependCount == 0 {
			ready = append(ready, id)
		} else {
			pending[id] = struct{}{}
		}
	}

	for len(ready) > 0 {
		if err := ctx.Err(); err != nil {
			report.Order = g.Order()
			return report, fmt.Errorf("evaluation stopped after %d cells: %w", len(g.order), err)
		}
		x := g.cells[ready[0]]
		ready = ready[1:]

		result, cached := x.Result()
		if !cached {
			result = Reduce(g.Env, x.Parsed)
			x.SetResult(result)
		}
		g.Env.BindResult(x.Symbol, result)
		report.Results[x.CellID] = result
		g.index[x.CellID] = len(g.order)
		g.order = append(g.order, x.CellID)

		slog.Debug("evaluated cell",
			slog.Any("cell", x.CellID),
			slog.String("name", x.Name),
			slog.Bool("cached", cached),
			slog.String("result", fmt.Sprintf("%X", uint64(result))))

		for _, depID := range x.UsedBy {
			dependent := g.cells[depID]
			dependent.UnmetDependCount--
			if dependent.UnmetDependCount == 0 {
				ready = append(ready, depID)
				delete(pending, depID)
			}
		}
	}
	report.Order = g.Order()

	if len(pending) == 0 {
		return report, nil
	}

	cycle := newCycleError(g, pending)
	for _, id := range cycle.Cells {
		report.Results[id] = value.ErrCircularDependency
	}
	slog.Warn("circular dependency between cells",
		slog.Any("cells", cycle.Cells))
	return report, cycle
}
