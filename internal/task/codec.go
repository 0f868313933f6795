package task

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed task.schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/nibzard/rxtodo-go/task.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Schema returns the compiled task dictionary schema.
func Schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add task schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile task schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// DecodeError describes a task dictionary that could not be decoded.
type DecodeError struct {
	Index int    // Position in the stored array
	Path  string // Field path inside the dictionary, if known
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("tasks[%d].%s: %s", e.Index, e.Path, e.Err)
	}
	return fmt.Sprintf("tasks[%d]: %s", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeTasks converts tasks to their stored dictionaries.
func EncodeTasks(tasks []Task) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("marshal task %s: %w", t.ID, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// DecodeTasks converts stored dictionaries back to tasks. Dictionaries that
// fail schema validation, and later repeats of an id already decoded, are
// skipped and reported in the returned errors. The tasks that did decode
// keep their relative order.
func DecodeTasks(dicts []json.RawMessage) ([]Task, []error) {
	s, err := Schema()
	if err != nil {
		return nil, []error{err}
	}

	tasks := make([]Task, 0, len(dicts))
	seen := make(map[string]struct{}, len(dicts))
	var errs []error
	for i, raw := range dicts {
		t, err := decodeTask(s, raw)
		if err != nil {
			errs = append(errs, withIndex(i, err))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			errs = append(errs, &DecodeError{Index: i, Path: "id", Err: fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)})
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, errs
}

func decodeTask(s *jsonschema.Schema, raw json.RawMessage) (Task, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Task{}, err
	}
	if err := s.Validate(doc); err != nil {
		return Task{}, err
	}
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func withIndex(i int, err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &DecodeError{Index: i, Err: err}
	}
	leaf := firstLeaf(ve)
	return &DecodeError{
		Index: i,
		Path:  jsonPointerToPath(leaf.InstanceLocation),
		Err:   errors.New(leaf.Message),
	}
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
