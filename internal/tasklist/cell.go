package tasklist

import (
	"context"

	"github.com/nibzard/rxtodo-go/internal/reactor"
	"github.com/nibzard/rxtodo-go/internal/task"
)

// CellAction is an action on a single row.
type CellAction interface{ isCellAction() }

// CellUpdate sets the row's done flag.
type CellUpdate struct{ IsDone bool }

func (CellUpdate) isCellAction() {}

// CellMutation is a change to a row.
type CellMutation interface{ isCellMutation() }

type cellSetDone struct{ isDone bool }

func (cellSetDone) isCellMutation() {}

// CellStore is a running row. Its state is the task snapshot it shows.
type CellStore = reactor.Store[CellAction, CellMutation, task.Task]

// CellReactor wraps one task as row state.
type CellReactor struct {
	task task.Task
}

// NewCellReactor creates a row reactor for t.
func NewCellReactor(t task.Task) *CellReactor {
	return &CellReactor{task: t}
}

// InitialState implements reactor.Reactor.
func (r *CellReactor) InitialState() task.Task {
	return r.task
}

// Mutate implements reactor.Reactor.
func (r *CellReactor) Mutate(_ context.Context, _ task.Task, action CellAction) reactor.Stream[CellMutation] {
	switch a := action.(type) {
	case CellUpdate:
		return reactor.Just[CellMutation](cellSetDone{isDone: a.IsDone})
	}
	return reactor.Empty[CellMutation]()
}

// Reduce implements reactor.Reactor.
func (r *CellReactor) Reduce(state task.Task, m CellMutation) task.Task {
	switch m := m.(type) {
	case cellSetDone:
		return state.With(func(t *task.Task) { t.IsDone = m.isDone })
	}
	return state
}
