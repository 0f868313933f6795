package task

// Event is a change that has already been persisted. The concrete types are
// Created, Updated, Deleted, Moved, MarkedDone and MarkedUndone.
type Event interface {
	// Kind names the event for logs and metrics.
	Kind() string
	// TaskID is the id of the affected task.
	TaskID() string
	isEvent()
}

// Created reports a task added at the top of the list.
type Created struct{ Task Task }

// Updated reports a task whose title or memo changed.
type Updated struct{ Task Task }

// Deleted reports a removed task.
type Deleted struct{ ID string }

// Moved reports a task moved to index To.
type Moved struct {
	ID string
	To int
}

// MarkedDone reports a task marked as done.
type MarkedDone struct{ ID string }

// MarkedUndone reports a task marked as not done.
type MarkedUndone struct{ ID string }

func (Created) Kind() string      { return "create" }
func (Updated) Kind() string      { return "update" }
func (Deleted) Kind() string      { return "delete" }
func (Moved) Kind() string        { return "move" }
func (MarkedDone) Kind() string   { return "markAsDone" }
func (MarkedUndone) Kind() string { return "markAsUndone" }

func (e Created) TaskID() string      { return e.Task.ID }
func (e Updated) TaskID() string      { return e.Task.ID }
func (e Deleted) TaskID() string      { return e.ID }
func (e Moved) TaskID() string        { return e.ID }
func (e MarkedDone) TaskID() string   { return e.ID }
func (e MarkedUndone) TaskID() string { return e.ID }

func (Created) isEvent()      {}
func (Updated) isEvent()      {}
func (Deleted) isEvent()      {}
func (Moved) isEvent()        {}
func (MarkedDone) isEvent()   {}
func (MarkedUndone) isEvent() {}
