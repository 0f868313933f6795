package taskedit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nibzard/rxtodo-go/internal/reactor"
	"github.com/nibzard/rxtodo-go/internal/task"
)

type fakeService struct {
	mu      sync.Mutex
	created []task.Task
	updated []task.Task
	err     error
}

func (s *fakeService) Create(ctx context.Context, title string, memo *string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return task.Task{}, s.err
	}
	t := task.Task{ID: fmt.Sprintf("new-%d", len(s.created)+1), Title: title, Memo: memo}
	s.created = append(s.created, t)
	return t, nil
}

func (s *fakeService) Update(ctx context.Context, id, title string, memo *string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return task.Task{}, s.err
	}
	t := task.Task{ID: id, Title: title, Memo: memo}
	s.updated = append(s.updated, t)
	return t, nil
}

// scriptedPresenter hands every presented alert to the test.
type scriptedPresenter struct {
	alerts chan Alert
	answer chan AlertAction
}

func newScriptedPresenter() *scriptedPresenter {
	return &scriptedPresenter{alerts: make(chan Alert, 1), answer: make(chan AlertAction)}
}

func (p *scriptedPresenter) Present(ctx context.Context, alert Alert) <-chan AlertAction {
	p.alerts <- alert
	return p.answer
}

func startLoop(t *testing.T) *reactor.Loop {
	t.Helper()
	loop := reactor.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

func newStore(t *testing.T, loop *reactor.Loop, r *Reactor) *Store {
	t.Helper()
	s := reactor.NewStore[Action, Mutation, State](context.Background(), loop, r)
	t.Cleanup(s.Close)
	return s
}

// waitFor polls the store state until cond holds.
func waitFor(t *testing.T, loop *reactor.Loop, s *Store, cond func(State) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		loop.Flush()
		if cond(s.State()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met, state = %+v", s.State())
}

func TestInitialState(t *testing.T) {
	svc := &fakeService{}

	newState := New(NewMode(), svc, nil).InitialState()
	if newState != (State{Title: "New"}) {
		t.Errorf("new mode: got %+v", newState)
	}

	edit := task.Task{ID: "a", Title: "Buy milk", Memo: task.Memo("2L")}
	editState := New(EditMode(edit), svc, nil).InitialState()
	want := State{Title: "Edit", TaskTitle: "Buy milk", TaskMemo: "2L", CanSubmit: true}
	if editState != want {
		t.Errorf("edit mode: got %+v, want %+v", editState, want)
	}
}

func TestUpdateTitle(t *testing.T) {
	loop := startLoop(t)
	s := newStore(t, loop, New(EditMode(task.Task{ID: "a", Title: "A"}), &fakeService{}, nil))

	tests := []struct {
		title       string
		wantSubmit  bool
		wantConfirm bool
	}{
		{"AB", true, true},
		{"", false, true},
		{"A", true, false},
	}
	for _, tt := range tests {
		s.Send(UpdateTitle{Title: tt.title})
		loop.Flush()
		got := s.State()
		if got.TaskTitle != tt.title || got.CanSubmit != tt.wantSubmit || got.ShouldConfirmCancel != tt.wantConfirm {
			t.Errorf("after title %q: got %+v", tt.title, got)
		}
	}

	s.Send(UpdateMemo{Memo: "note"})
	loop.Flush()
	if !s.State().ShouldConfirmCancel {
		t.Error("memo change should require confirmation")
	}
}

func TestSubmitCreates(t *testing.T) {
	loop := startLoop(t)
	svc := &fakeService{}
	s := newStore(t, loop, New(NewMode(), svc, nil))

	s.Send(Submit{})
	loop.Flush()
	if s.State().IsDismissed || len(svc.created) != 0 {
		t.Fatal("submit with empty title should do nothing")
	}

	s.Send(UpdateTitle{Title: "Write tests"})
	s.Send(UpdateMemo{Memo: "today"})
	s.Send(Submit{})
	loop.Flush()

	if !s.State().IsDismissed {
		t.Error("editor not dismissed after submit")
	}
	if len(svc.created) != 1 || svc.created[0].Title != "Write tests" || svc.created[0].MemoText() != "today" {
		t.Errorf("created = %+v", svc.created)
	}
}

func TestSubmitUpdates(t *testing.T) {
	loop := startLoop(t)
	svc := &fakeService{}
	s := newStore(t, loop, New(EditMode(task.Task{ID: "a", Title: "A", Memo: task.Memo("m")}), svc, nil))

	s.Send(UpdateMemo{Memo: ""})
	s.Send(Submit{})
	loop.Flush()

	if !s.State().IsDismissed {
		t.Error("editor not dismissed after submit")
	}
	if len(svc.updated) != 1 || svc.updated[0].ID != "a" || svc.updated[0].Memo != nil {
		t.Errorf("updated = %+v", svc.updated)
	}
}

func TestSubmitFailureKeepsEditorOpen(t *testing.T) {
	for _, err := range []error{task.ErrNotFound, errors.New("disk full")} {
		t.Run(err.Error(), func(t *testing.T) {
			loop := startLoop(t)
			svc := &fakeService{err: err}
			s := newStore(t, loop, New(EditMode(task.Task{ID: "gone", Title: "A"}), svc, nil))

			s.Send(Submit{})
			loop.Flush()
			if s.State().IsDismissed {
				t.Error("editor dismissed after failed submit")
			}
		})
	}
}

func TestCancelWithoutChanges(t *testing.T) {
	loop := startLoop(t)
	presenter := newScriptedPresenter()
	s := newStore(t, loop, New(NewMode(), &fakeService{}, presenter))

	s.Send(Cancel{})
	loop.Flush()
	if !s.State().IsDismissed {
		t.Error("unchanged editor should dismiss immediately")
	}
	select {
	case a := <-presenter.alerts:
		t.Errorf("unexpected alert %+v", a)
	default:
	}
}

func TestCancelWithChanges(t *testing.T) {
	tests := []struct {
		name          string
		answer        func(p *scriptedPresenter)
		wantDismissed bool
	}{
		{"leave", func(p *scriptedPresenter) { p.answer <- Leave; close(p.answer) }, true},
		{"stay", func(p *scriptedPresenter) { p.answer <- Stay; close(p.answer) }, false},
		{"dismissed alert", func(p *scriptedPresenter) { close(p.answer) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := startLoop(t)
			presenter := newScriptedPresenter()
			s := newStore(t, loop, New(NewMode(), &fakeService{}, presenter))

			s.Send(UpdateTitle{Title: "draft"})
			s.Send(Cancel{})

			var alert Alert
			select {
			case alert = <-presenter.alerts:
			case <-time.After(5 * time.Second):
				t.Fatal("no alert presented")
			}
			if alert.Title != "Really?" || alert.Message != "All changes will be lost" {
				t.Errorf("alert = %+v", alert)
			}
			if len(alert.Actions) != 2 || alert.Actions[0].Title() != "Leave" || alert.Actions[1].Title() != "Stay" {
				t.Errorf("actions = %v", alert.Actions)
			}

			tt.answer(presenter)
			if tt.wantDismissed {
				waitFor(t, loop, s, func(st State) bool { return st.IsDismissed })
				return
			}
			// Give the answer time to arrive before checking nothing changed.
			time.Sleep(20 * time.Millisecond)
			loop.Flush()
			if s.State().IsDismissed {
				t.Error("editor dismissed")
			}
		})
	}
}

func TestCancelAfterCloseIsDropped(t *testing.T) {
	loop := startLoop(t)
	presenter := newScriptedPresenter()
	s := newStore(t, loop, New(NewMode(), &fakeService{}, presenter))

	s.Send(UpdateTitle{Title: "draft"})
	s.Send(Cancel{})
	<-presenter.alerts
	s.Close()

	// The answer goroutine has stopped listening, so Leave is never read.
	select {
	case presenter.answer <- Leave:
	case <-time.After(20 * time.Millisecond):
	}
	loop.Flush()
	if s.State().IsDismissed {
		t.Error("closed store applied a late mutation")
	}
}

func TestAlertActionStyle(t *testing.T) {
	if Leave.Style() != StyleDestructive {
		t.Errorf("Leave style = %v", Leave.Style())
	}
	if Stay.Style() != StyleDefault {
		t.Errorf("Stay style = %v", Stay.Style())
	}
}
