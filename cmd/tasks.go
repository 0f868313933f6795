package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/rxtodo-go/internal/config"
	"github.com/nibzard/rxtodo-go/internal/task"
)

const shortIDLen = 8

// withService runs fn against a freshly loaded task service.
func withService(ctx context.Context, cfg *config.Config, fn func(*task.Service) error) error {
	a, err := openApp(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.service)
}

// lsCommand prints the tasks in display order.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rxtodo ls", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	verbose := fs.Bool("v", false, "Show full ids and memos")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return withService(ctx, cfg, func(s *task.Service) error {
		tasks := s.FetchTasks(ctx)
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}
		printTaskList(tasks, *verbose)
		return nil
	})
}

// addCommand creates a task at the top of the list.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rxtodo add", flag.ContinueOnError)
	memo := fs.String("memo", "", "Task memo")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(positional, " "))
	if title == "" {
		return errors.New("usage: rxtodo add <title> [-memo m]")
	}

	return withService(ctx, cfg, func(s *task.Service) error {
		t, err := s.Create(ctx, title, memoFlag(fs, *memo))
		if err != nil {
			return err
		}
		fmt.Printf("Created %s: %s\n", shortID(t.ID), t.Title)
		return nil
	})
}

// editCommand changes the title and memo of a task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rxtodo edit", flag.ContinueOnError)
	memo := fs.String("memo", "", "Task memo (empty clears it)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 {
		return errors.New("usage: rxtodo edit <id> [title] [-memo m]")
	}
	title := strings.TrimSpace(strings.Join(positional[1:], " "))

	return withService(ctx, cfg, func(s *task.Service) error {
		current, err := findTask(s.FetchTasks(ctx), positional[0])
		if err != nil {
			return err
		}
		if title == "" {
			title = current.Title
		}
		newMemo := current.Memo
		if flagSet(fs, "memo") {
			newMemo = task.Memo(*memo)
		}
		t, err := s.Update(ctx, current.ID, title, newMemo)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s: %s\n", shortID(t.ID), t.Title)
		return nil
	})
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rxtodo rm <id>")
	}
	return withService(ctx, cfg, func(s *task.Service) error {
		current, err := findTask(s.FetchTasks(ctx), args[0])
		if err != nil {
			return err
		}
		t, err := s.Delete(ctx, current.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s: %s\n", shortID(t.ID), t.Title)
		return nil
	})
}

// mvCommand moves a task to a zero-based position.
func mvCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: rxtodo mv <id> <index>")
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[1], err)
	}
	return withService(ctx, cfg, func(s *task.Service) error {
		current, err := findTask(s.FetchTasks(ctx), args[0])
		if err != nil {
			return err
		}
		t, err := s.Move(ctx, current.ID, to)
		if err != nil {
			return err
		}
		fmt.Printf("Moved %s to %d: %s\n", shortID(t.ID), indexOf(s.FetchTasks(ctx), t.ID), t.Title)
		return nil
	})
}

// markCommand marks a task as done or not done.
func markCommand(ctx context.Context, cfg *config.Config, args []string, done bool) error {
	name := "undone"
	if done {
		name = "done"
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: rxtodo %s <id>", name)
	}
	return withService(ctx, cfg, func(s *task.Service) error {
		current, err := findTask(s.FetchTasks(ctx), args[0])
		if err != nil {
			return err
		}
		mark := s.MarkAsUndone
		if done {
			mark = s.MarkAsDone
		}
		t, err := mark(ctx, current.ID)
		if err != nil {
			return err
		}
		fmt.Println(formatTask(t, false))
		return nil
	})
}

// findTask resolves an exact id or a unique id prefix.
func findTask(tasks []task.Task, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, errors.New("task id is empty")
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%s: %w", ref, task.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// parseInterspersed parses flags that may follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// memoFlag returns nil when -memo was not given.
func memoFlag(fs *flag.FlagSet, memo string) *string {
	if !flagSet(fs, "memo") {
		return nil
	}
	return task.Memo(memo)
}

func printTaskList(tasks []task.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}
	for _, t := range tasks {
		fmt.Println(formatTask(t, verbose))
	}
}

func formatTask(t task.Task, verbose bool) string {
	check := "[ ]"
	if t.IsDone {
		check = "[x]"
	}
	id := shortID(t.ID)
	if verbose {
		id = t.ID
	}
	line := fmt.Sprintf("%s %s %s", check, id, t.Title)
	if memo := t.MemoText(); memo != "" {
		if !verbose && len(memo) > 60 {
			memo = memo[:57] + "..."
		}
		line += "\n      " + memo
	}
	return line
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func indexOf(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
