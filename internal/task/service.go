package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/rxtodo-go/internal/kvstore"
	"github.com/nibzard/rxtodo-go/internal/metrics"
	"github.com/nibzard/rxtodo-go/internal/pubsub"
)

// StoreKey is the key the task list is persisted under.
const StoreKey kvstore.Key[[]json.RawMessage] = "tasks"

// ErrNotFound is returned for operations on an id that is not in the list.
var ErrNotFound = errors.New("task not found")

// ErrDuplicateID is returned when a list holds the same id more than once.
var ErrDuplicateID = errors.New("duplicate task id")

// DefaultTitles are the tasks seeded into an empty store, in order.
var DefaultTitles = []string{
	"Go to https://github.com/devxoul",
	"Star repositories I am interested in",
	"Make a pull request",
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports operations and events to m.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator replaces the random id generator used by Create.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Service owns the task list. The in-memory list mirrors the stored one;
// every change is written through to the store before it is applied in
// memory and broadcast.
type Service struct {
	store   kvstore.Store
	bus     *pubsub.Bus[Event]
	logger  *log.Logger
	metrics *metrics.Metrics
	newID   func() string

	mu    sync.Mutex
	tasks []Task
}

// NewService loads the task list from store. An empty store is seeded with
// the default tasks.
func NewService(ctx context.Context, store kvstore.Store, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		store:  store,
		bus:    pubsub.NewBus[Event](),
		logger: log.New(io.Discard),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "task")

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) load(ctx context.Context) error {
	dicts, ok, err := kvstore.Value(ctx, s.store, StoreKey)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	if !ok {
		tasks := make([]Task, 0, len(DefaultTitles))
		for _, title := range DefaultTitles {
			tasks = append(tasks, New(s.newID(), title, nil))
		}
		if err := s.save(ctx, tasks); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
		s.logger.Info("seeded default tasks", "count", len(tasks))
		return nil
	}

	tasks, errs := DecodeTasks(dicts)
	for _, err := range errs {
		s.logger.Warn("skipping stored task", "err", err)
	}
	s.tasks = tasks
	s.metrics.SetTaskCount(len(tasks))
	s.logger.Debug("loaded tasks", "count", len(tasks), "skipped", len(errs))
	return nil
}

// Events returns the bus every change is published on.
func (s *Service) Events() *pubsub.Bus[Event] {
	return s.bus
}

// Subscribe registers fn for every future event.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// FetchTasks returns a copy of the current list.
func (s *Service) FetchTasks(ctx context.Context) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// SaveTasks replaces the whole list. No event is published. A list that
// holds an id twice is rejected with ErrDuplicateID and nothing is written.
func (s *Service) SaveTasks(ctx context.Context, tasks []Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkUniqueIDs(tasks); err != nil {
		s.failed("save", "", err)
		return err
	}
	if err := s.save(ctx, slices.Clone(tasks)); err != nil {
		s.failed("save", "", err)
		return err
	}
	s.metrics.ObserveOperation("save", metrics.ResultOK)
	s.logger.Debug("saved tasks", "op", "save", "count", len(tasks))
	return nil
}

// Create adds a not-done task at the top of the list.
func (s *Service) Create(ctx context.Context, title string, memo *string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := New(s.newID(), title, memo)
	tasks := make([]Task, 0, len(s.tasks)+1)
	tasks = append(tasks, t)
	tasks = append(tasks, s.tasks...)
	if err := s.commit(ctx, "create", tasks, Created{Task: t}); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update replaces the title and memo of a task, keeping its position.
func (s *Service) Update(ctx context.Context, id, title string, memo *string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.tasks, id)
	if i < 0 {
		return Task{}, s.notFound("update", id)
	}
	tasks := slices.Clone(s.tasks)
	t := tasks[i].With(func(t *Task) {
		t.Title = title
		t.Memo = memo
	})
	tasks[i] = t
	if err := s.commit(ctx, "update", tasks, Updated{Task: t}); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Delete removes a task and returns it.
func (s *Service) Delete(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.tasks, id)
	if i < 0 {
		return Task{}, s.notFound("delete", id)
	}
	t := s.tasks[i]
	tasks := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.commit(ctx, "delete", tasks, Deleted{ID: id}); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Move removes a task and inserts it at index to of the remaining list.
// The index is clamped to the list bounds and the Moved event carries the
// clamped value.
func (s *Service) Move(ctx context.Context, id string, to int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.tasks, id)
	if i < 0 {
		return Task{}, s.notFound("move", id)
	}
	t := s.tasks[i]
	tasks := slices.Delete(slices.Clone(s.tasks), i, i+1)
	to = max(0, min(to, len(tasks)))
	tasks = slices.Insert(tasks, to, t)
	if err := s.commit(ctx, "move", tasks, Moved{ID: id, To: to}); err != nil {
		return Task{}, err
	}
	return t, nil
}

// MarkAsDone sets the done flag of a task.
func (s *Service) MarkAsDone(ctx context.Context, id string) (Task, error) {
	return s.setDone(ctx, "markAsDone", id, true)
}

// MarkAsUndone clears the done flag of a task.
func (s *Service) MarkAsUndone(ctx context.Context, id string) (Task, error) {
	return s.setDone(ctx, "markAsUndone", id, false)
}

func (s *Service) setDone(ctx context.Context, op, id string, done bool) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.tasks, id)
	if i < 0 {
		return Task{}, s.notFound(op, id)
	}
	tasks := slices.Clone(s.tasks)
	t := tasks[i].With(func(t *Task) { t.IsDone = done })
	tasks[i] = t

	var ev Event = MarkedUndone{ID: id}
	if done {
		ev = MarkedDone{ID: id}
	}
	if err := s.commit(ctx, op, tasks, ev); err != nil {
		return Task{}, err
	}
	return t, nil
}

// commit persists tasks and then publishes ev. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, op string, tasks []Task, ev Event) error {
	if err := s.save(ctx, tasks); err != nil {
		s.failed(op, ev.TaskID(), err)
		return err
	}
	s.metrics.ObserveOperation(op, metrics.ResultOK)
	s.logger.Debug("task changed", "op", op, "task_id", ev.TaskID())

	s.metrics.ObserveEvent(ev.Kind())
	s.bus.Publish(ev)
	return nil
}

// save writes tasks to the store and, on success, makes them current.
func (s *Service) save(ctx context.Context, tasks []Task) error {
	dicts, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := kvstore.SetValue(ctx, s.store, StoreKey, dicts); err != nil {
		return fmt.Errorf("store tasks: %w", err)
	}
	s.tasks = tasks
	s.metrics.SetTaskCount(len(tasks))
	return nil
}

func (s *Service) notFound(op, id string) error {
	s.metrics.ObserveOperation(op, metrics.ResultNotFound)
	s.logger.Debug("task not found", "op", op, "task_id", id)
	return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
}

func (s *Service) failed(op, id string, err error) {
	s.metrics.ObserveOperation(op, metrics.ResultError)
	s.logger.Error("task operation failed", "op", op, "task_id", id, "err", err)
}
