// Package task defines the task entity, its change events, and the service
// that owns the task list.
//
// The whole list is persisted as one JSON array under the key "tasks" of a
// key-value store. Each element is a task dictionary:
//
//	{
//	  "id": "6f1c7a52-…",
//	  "title": "Make a pull request",
//	  "memo": "optional",
//	  "isDone": false
//	}
//
// Dictionaries are validated against an embedded JSON Schema when the list
// is loaded; invalid entries are skipped.
//
// # Events
//
// Every successful change is broadcast to subscribers as an Event after the
// store write completes:
//
//   - Created: a task was added at the top of the list
//   - Updated: title or memo changed
//   - Deleted: a task was removed
//   - Moved: a task was moved to a new index
//   - MarkedDone / MarkedUndone: the done flag changed
//
// Operations on an id that is not in the list return ErrNotFound and change
// nothing.
package task
