package task

import "fmt"

// Task is a single entry of the task list. Identity is the ID.
type Task struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Memo   *string `json:"memo,omitempty"`
	IsDone bool    `json:"isDone"`
}

// New returns a not-done task.
func New(id, title string, memo *string) Task {
	return Task{
		ID:    id,
		Title: title,
		Memo:  memo,
	}
}

// With returns a copy of t modified by fn. t itself is left untouched.
func (t Task) With(fn func(*Task)) Task {
	fn(&t)
	return t
}

// MemoText returns the memo, or an empty string when there is none.
func (t Task) MemoText() string {
	if t.Memo == nil {
		return ""
	}
	return *t.Memo
}

// Memo returns a memo pointer for s, or nil for an empty string.
func Memo(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// checkUniqueIDs reports the first id that appears more than once.
func checkUniqueIDs(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func indexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
