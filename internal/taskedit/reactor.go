// Package taskedit implements the reactor behind the new/edit task screen.
package taskedit

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/rxtodo-go/internal/reactor"
	"github.com/nibzard/rxtodo-go/internal/task"
)

// TaskService is the part of the task service the editor uses.
type TaskService interface {
	Create(ctx context.Context, title string, memo *string) (task.Task, error)
	Update(ctx context.Context, id, title string, memo *string) (task.Task, error)
}

// Mode selects between creating a task and editing an existing one.
type Mode struct {
	task *task.Task
}

// NewMode returns the mode for creating a task.
func NewMode() Mode {
	return Mode{}
}

// EditMode returns the mode for editing t.
func EditMode(t task.Task) Mode {
	return Mode{task: &t}
}

// Task returns the edited task. ok is false in the create mode.
func (m Mode) Task() (t task.Task, ok bool) {
	if m.task == nil {
		return task.Task{}, false
	}
	return *m.task, true
}

// IsNew reports whether the mode creates a task.
func (m Mode) IsNew() bool {
	return m.task == nil
}

// Action is a user action on the editor.
type Action interface{ isAction() }

// UpdateTitle sets the title field.
type UpdateTitle struct{ Title string }

// UpdateMemo sets the memo field.
type UpdateMemo struct{ Memo string }

// Cancel closes the editor, asking for confirmation if anything changed.
type Cancel struct{}

// Submit saves the task and closes the editor.
type Submit struct{}

func (UpdateTitle) isAction() {}
func (UpdateMemo) isAction()  {}
func (Cancel) isAction()      {}
func (Submit) isAction()      {}

// Mutation is a change to the editor state.
type Mutation interface{ isMutation() }

type setTitle struct{ title string }
type setMemo struct{ memo string }
type dismiss struct{}

func (setTitle) isMutation() {}
func (setMemo) isMutation()  {}
func (dismiss) isMutation()  {}

// State is the editor screen state.
type State struct {
	Title               string // "New" or "Edit"
	TaskTitle           string
	TaskMemo            string
	CanSubmit           bool
	ShouldConfirmCancel bool
	IsDismissed         bool
}

// Store is a running editor.
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

// Reactor drives the editor screen.
type Reactor struct {
	mode    Mode
	service TaskService
	alerts  AlertPresenter
	logger  *log.Logger
	initial State
}

// New creates an editor reactor for mode.
func New(mode Mode, service TaskService, alerts AlertPresenter, opts ...Option) *Reactor {
	r := &Reactor{
		mode:    mode,
		service: service,
		alerts:  alerts,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "taskedit")

	if t, ok := mode.Task(); ok {
		r.initial = State{
			Title:     "Edit",
			TaskTitle: t.Title,
			TaskMemo:  t.MemoText(),
			CanSubmit: true,
		}
	} else {
		r.initial = State{Title: "New"}
	}
	return r
}

// Mode returns the editor mode.
func (r *Reactor) Mode() Mode {
	return r.mode
}

// InitialState implements reactor.Reactor.
func (r *Reactor) InitialState() State {
	return r.initial
}

// Mutate implements reactor.Reactor.
func (r *Reactor) Mutate(ctx context.Context, state State, action Action) reactor.Stream[Mutation] {
	switch a := action.(type) {
	case UpdateTitle:
		return reactor.Just[Mutation](setTitle{title: a.Title})

	case UpdateMemo:
		return reactor.Just[Mutation](setMemo{memo: a.Memo})

	case Cancel:
		if !state.ShouldConfirmCancel {
			return reactor.Just[Mutation](dismiss{})
		}
		return r.confirmCancel(ctx)

	case Submit:
		if !state.CanSubmit {
			return reactor.Empty[Mutation]()
		}
		if err := r.submit(ctx, state); err != nil {
			if !errors.Is(err, task.ErrNotFound) {
				r.logger.Error("submit failed", "err", err)
			}
			return reactor.Empty[Mutation]()
		}
		return reactor.Just[Mutation](dismiss{})
	}
	return reactor.Empty[Mutation]()
}

func (r *Reactor) submit(ctx context.Context, state State) error {
	memo := task.Memo(state.TaskMemo)
	if t, ok := r.mode.Task(); ok {
		_, err := r.service.Update(ctx, t.ID, state.TaskTitle, memo)
		return err
	}
	_, err := r.service.Create(ctx, state.TaskTitle, memo)
	return err
}

// confirmCancel asks the presenter and dismisses only on Leave.
func (r *Reactor) confirmCancel(ctx context.Context) reactor.Stream[Mutation] {
	if r.alerts == nil {
		return reactor.Just[Mutation](dismiss{})
	}
	answers := r.alerts.Present(ctx, cancelAlert)
	out := make(chan Mutation, 1)
	go func() {
		defer close(out)
		select {
		case <-ctx.Done():
		case a, ok := <-answers:
			if ok && a == Leave {
				out <- dismiss{}
			}
		}
	}()
	return reactor.From[Mutation](out)
}

// Reduce implements reactor.Reactor.
func (r *Reactor) Reduce(state State, m Mutation) State {
	switch m := m.(type) {
	case setTitle:
		state.TaskTitle = m.title
		state.CanSubmit = m.title != ""
		state.ShouldConfirmCancel = r.changed(state)
	case setMemo:
		state.TaskMemo = m.memo
		state.ShouldConfirmCancel = r.changed(state)
	case dismiss:
		state.IsDismissed = true
	}
	return state
}

func (r *Reactor) changed(state State) bool {
	return state.TaskTitle != r.initial.TaskTitle || state.TaskMemo != r.initial.TaskMemo
}
