// Package tasklist implements the task list screen: a list reactor whose
// rows are cell reactors, one per task.
//
// The list reactor merges two mutation sources on one loop: mutations
// computed from user actions and mutations derived from task service
// events. Actions that change tasks (toggle, delete, move) only call the
// service; the visible change arrives as the resulting event, so every
// open list converges on the same rows no matter which one caused the
// change.
package tasklist
