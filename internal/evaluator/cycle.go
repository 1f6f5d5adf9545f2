package evaluator

import (
	"fmt"
	"slices"
	"strings"

	"arevel/internal/value"
)

// CycleError reports the cells that could not be ordered. Deps holds, for
// each of them, the dependencies that are also in the cyclic set.
type CycleError struct {
	Cells []uint64
	Deps  map[uint64][]uint64
}

func newCycleError(g *Graph, pending map[uint64]struct{}) *CycleError {
	err := &CycleError{Deps: make(map[uint64][]uint64, len(pending))}
	for id := range pending {
		err.Cells = append(err.Cells, id)
	}
	slices.Sort(err.Cells)
	for _, id := range err.Cells {
		var deps []uint64
		for _, depID := range g.cells[id].DependsOn {
			if _, ok := pending[depID]; ok {
				deps = append(deps, depID)
			}
		}
		slices.Sort(deps)
		err.Deps[id] = deps
	}
	return err
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Cells))
	for i, id := range e.Cells {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("circular dependency between cells %s", strings.Join(ids, ", "))
}

// Code returns the error word recorded for each cell in the cycle.
func (e *CycleError) Code() value.Value {
	return value.ErrCircularDependency
}
