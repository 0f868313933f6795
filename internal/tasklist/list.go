package tasklist

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/nibzard/rxtodo-go/internal/reactor"
	"github.com/nibzard/rxtodo-go/internal/task"
	"github.com/nibzard/rxtodo-go/internal/taskedit"
)

// TaskService is the part of the task service the list uses.
type TaskService interface {
	taskedit.TaskService
	FetchTasks(ctx context.Context) []task.Task
	Delete(ctx context.Context, id string) (task.Task, error)
	Move(ctx context.Context, id string, to int) (task.Task, error)
	MarkAsDone(ctx context.Context, id string) (task.Task, error)
	MarkAsUndone(ctx context.Context, id string) (task.Task, error)
	Subscribe(fn func(task.Event)) (unsubscribe func())
}

// Action is a user action on the list.
type Action interface{ isAction() }

// Refresh reloads all rows from the service.
type Refresh struct{}

// ToggleEditing switches the editing mode.
type ToggleEditing struct{}

// ToggleTaskDone flips the done flag of the task shown at row Index. The
// flag is read from the service, so toggles sent before the previous
// MarkedDone or MarkedUndone event reached the row still alternate.
type ToggleTaskDone struct{ Index int }

// DeleteTask deletes the task at row Index.
type DeleteTask struct{ Index int }

// MoveTask moves the task at row From to row To.
type MoveTask struct{ From, To int }

func (Refresh) isAction()        {}
func (ToggleEditing) isAction()  {}
func (ToggleTaskDone) isAction() {}
func (DeleteTask) isAction()     {}
func (MoveTask) isAction()       {}

// Mutation is a change to the list state.
type Mutation interface{ isMutation() }

type setItems struct{ items []*CellStore }
type toggleEditing struct{}
type insertItem struct {
	index int
	item  *CellStore
}
type updateItem struct {
	index int
	item  *CellStore
}
type deleteItem struct{ index int }
type moveItem struct{ from, to int }

func (setItems) isMutation()      {}
func (toggleEditing) isMutation() {}
func (insertItem) isMutation()    {}
func (updateItem) isMutation()    {}
func (deleteItem) isMutation()    {}
func (moveItem) isMutation()      {}

// State is the list screen state. Items are in display order and each
// reduction produces a new Items slice.
type State struct {
	IsEditing bool
	Items     []*CellStore
}

// Tasks returns the row snapshots in display order.
func (s State) Tasks() []task.Task {
	tasks := make([]task.Task, len(s.Items))
	for i, item := range s.Items {
		tasks[i] = item.State()
	}
	return tasks
}

// Item returns the row at index, or nil if index is out of range.
func (s State) Item(index int) *CellStore {
	if index < 0 || index >= len(s.Items) {
		return nil
	}
	return s.Items[index]
}

// IndexOf returns the row showing the task with id, or -1.
func (s State) IndexOf(id string) int {
	for i, item := range s.Items {
		if item.State().ID == id {
			return i
		}
	}
	return -1
}

// Store is a running list.
type Store = reactor.Store[Action, Mutation, State]

// Option configures a Reactor.
type Option func(*Reactor)

// WithLogger sets the reactor logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAlertPresenter sets the presenter handed to editor reactors.
func WithAlertPresenter(p taskedit.AlertPresenter) Option {
	return func(r *Reactor) {
		r.alerts = p
	}
}

// Reactor drives the task list screen. Rows are cell stores running on
// the same loop as the list.
type Reactor struct {
	loop    *reactor.Loop
	service TaskService
	alerts  taskedit.AlertPresenter
	logger  *log.Logger
}

// New creates a list reactor whose rows run on loop.
func New(loop *reactor.Loop, service TaskService, opts ...Option) *Reactor {
	r := &Reactor{
		loop:    loop,
		service: service,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "tasklist")
	return r
}

// NewStore starts a list store for r on its loop.
func (r *Reactor) NewStore(ctx context.Context) *Store {
	return reactor.NewStore[Action, Mutation, State](ctx, r.loop, r, reactor.WithLogger(r.logger), reactor.WithName("tasklist"))
}

// newCell starts a row store. Rows live as long as ctx, the context of the
// list store that owns them.
func (r *Reactor) newCell(ctx context.Context, t task.Task) *CellStore {
	return reactor.NewStore[CellAction, CellMutation, task.Task](ctx, r.loop, NewCellReactor(t))
}

// InitialState implements reactor.Reactor.
func (r *Reactor) InitialState() State {
	return State{}
}

// Mutate implements reactor.Reactor.
func (r *Reactor) Mutate(ctx context.Context, state State, action Action) reactor.Stream[Mutation] {
	switch a := action.(type) {
	case Refresh:
		tasks := r.service.FetchTasks(ctx)
		items := make([]*CellStore, len(tasks))
		for i, t := range tasks {
			items[i] = r.newCell(ctx, t)
		}
		return reactor.Just[Mutation](setItems{items: items})

	case ToggleEditing:
		return reactor.Just[Mutation](toggleEditing{})

	case ToggleTaskDone:
		if cell := state.Item(a.Index); cell != nil {
			id := cell.State().ID
			t, ok := findTask(r.service.FetchTasks(ctx), id)
			switch {
			case !ok:
				r.logger.Debug("toggled row is gone", "task_id", id)
			case !t.IsDone:
				r.call(ctx, "markAsDone", id, r.service.MarkAsDone)
			default:
				r.call(ctx, "markAsUndone", id, r.service.MarkAsUndone)
			}
		}

	case DeleteTask:
		if cell := state.Item(a.Index); cell != nil {
			r.call(ctx, "delete", cell.State().ID, r.service.Delete)
		}

	case MoveTask:
		if cell := state.Item(a.From); cell != nil {
			r.call(ctx, "move", cell.State().ID, func(ctx context.Context, id string) (task.Task, error) {
				return r.service.Move(ctx, id, a.To)
			})
		}
	}
	return reactor.Empty[Mutation]()
}

// call runs a service operation whose visible result arrives as an event.
func (r *Reactor) call(ctx context.Context, op, id string, fn func(context.Context, string) (task.Task, error)) {
	_, err := fn(ctx, id)
	if err == nil || errors.Is(err, task.ErrNotFound) {
		return
	}
	r.logger.Error("task operation failed", "op", op, "task_id", id, "err", err)
}

// Transform implements reactor.Transformer. Service events are turned into
// mutations against the state current when they reach the loop.
func (r *Reactor) Transform(emit func(reactor.Deferred[Mutation, State])) (detach func()) {
	return r.service.Subscribe(func(ev task.Event) {
		emit(func(ctx context.Context, state State) []Mutation {
			return r.mutateEvent(ctx, state, ev)
		})
	})
}

func (r *Reactor) mutateEvent(ctx context.Context, state State, ev task.Event) []Mutation {
	switch e := ev.(type) {
	case task.Created:
		return []Mutation{insertItem{index: 0, item: r.newCell(ctx, e.Task)}}

	case task.Updated:
		if i := state.IndexOf(e.Task.ID); i >= 0 {
			return []Mutation{updateItem{index: i, item: r.newCell(ctx, e.Task)}}
		}

	case task.Deleted:
		if i := state.IndexOf(e.ID); i >= 0 {
			return []Mutation{deleteItem{index: i}}
		}

	case task.Moved:
		if i := state.IndexOf(e.ID); i >= 0 {
			return []Mutation{moveItem{from: i, to: e.To}}
		}

	case task.MarkedDone:
		if cell := state.Item(state.IndexOf(e.ID)); cell != nil {
			cell.Send(CellUpdate{IsDone: true})
		}

	case task.MarkedUndone:
		if cell := state.Item(state.IndexOf(e.ID)); cell != nil {
			cell.Send(CellUpdate{IsDone: false})
		}
	}
	return nil
}

// Reduce implements reactor.Reactor. Invalid indexes leave the state
// unchanged.
func (r *Reactor) Reduce(state State, m Mutation) State {
	switch m := m.(type) {
	case setItems:
		state.Items = slices.Clone(m.items)

	case toggleEditing:
		state.IsEditing = !state.IsEditing

	case insertItem:
		i := max(0, min(m.index, len(state.Items)))
		state.Items = slices.Insert(slices.Clone(state.Items), i, m.item)

	case updateItem:
		if m.index < 0 || m.index >= len(state.Items) {
			return state
		}
		items := slices.Clone(state.Items)
		items[m.index] = m.item
		state.Items = items

	case deleteItem:
		if m.index < 0 || m.index >= len(state.Items) {
			return state
		}
		state.Items = slices.Delete(slices.Clone(state.Items), m.index, m.index+1)

	case moveItem:
		if m.from < 0 || m.from >= len(state.Items) {
			return state
		}
		item := state.Items[m.from]
		items := slices.Delete(slices.Clone(state.Items), m.from, m.from+1)
		to := max(0, min(m.to, len(items)))
		state.Items = slices.Insert(items, to, item)
	}
	return state
}

func findTask(tasks []task.Task, id string) (task.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// ReactorForCreatingTask returns an editor for a new task.
func (r *Reactor) ReactorForCreatingTask() *taskedit.Reactor {
	return taskedit.New(taskedit.NewMode(), r.service, r.alerts, taskedit.WithLogger(r.logger))
}

// ReactorForEditingTask returns an editor for the task shown by cell.
func (r *Reactor) ReactorForEditingTask(cell *CellStore) *taskedit.Reactor {
	return taskedit.New(taskedit.EditMode(cell.State()), r.service, r.alerts, taskedit.WithLogger(r.logger))
}
