package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{" fatal ", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLogFormatter(t *testing.T) {
	tests := []struct {
		input string
		want  log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
		{"yaml", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogFormatter(tt.input); got != tt.want {
				t.Errorf("ParseLogFormatter(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("level filters messages", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, Options{Level: "warn", Format: "text"})

		logger.Info("hidden")
		logger.Warn("shown", "task_id", "abc")

		got := buf.String()
		if strings.Contains(got, "hidden") {
			t.Errorf("info message should be filtered, got %q", got)
		}
		if !strings.Contains(got, "shown") || !strings.Contains(got, "task_id=abc") {
			t.Errorf("expected warn message with field, got %q", got)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, Options{Level: "debug", Format: "json"})

		logger.Debug("created", "op", "create")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "created" {
			t.Errorf("msg = %v, want created", entry["msg"])
		}
		if entry["op"] != "create" {
			t.Errorf("op = %v, want create", entry["op"])
		}
	})

	t.Run("nil writer discards", func(t *testing.T) {
		logger := New(nil, DefaultOptions())
		logger.Info("nothing")
	})
}

func TestNewRunLogger(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		logger, err := NewRunLogger(t.TempDir(), t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if logger.Dir == "" || logger.RunID == "" || logger.LogPath == "" {
			t.Fatalf("expected Dir, RunID and LogPath to be set: %+v", logger)
		}
		if filepath.Ext(logger.LogPath) != LogExt {
			t.Errorf("expected %s log file, got %s", LogExt, logger.LogPath)
		}
		if _, err := os.Stat(logger.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewRunLogger("", t.TempDir())
		if err == nil {
			t.Fatal("expected error for empty base dir, got nil")
		}
		if !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("creates log directory if missing", func(t *testing.T) {
		newLogDir := filepath.Join(t.TempDir(), "new-logs", "nested")

		logger, err := NewRunLogger(newLogDir, t.TempDir())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if !strings.HasPrefix(logger.Dir, newLogDir) {
			t.Errorf("expected log dir under %s, got %s", newLogDir, logger.Dir)
		}
	})

	t.Run("log directory includes project slug", func(t *testing.T) {
		workDir := filepath.Join(t.TempDir(), "my project")
		if err := os.MkdirAll(workDir, 0755); err != nil {
			t.Fatal(err)
		}

		logger, err := NewRunLogger(t.TempDir(), workDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer logger.Close()

		if !strings.HasPrefix(filepath.Base(logger.Dir), "my_project-") {
			t.Errorf("expected slugged project dir, got %s", logger.Dir)
		}
	})
}

func TestRunLoggerLogger(t *testing.T) {
	runLogger, err := NewRunLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger := runLogger.Logger(Options{Level: "info", Format: "logfmt"})
	logger.Info("task created", "task_id", "t-1")
	if err := runLogger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(runLogger.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "task_id=t-1") {
		t.Errorf("expected log line in run file, got %q", data)
	}
}

func TestRunLoggerClose(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		var logger *RunLogger
		if err := logger.Close(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if logger.Writer() == nil {
			t.Error("expected discard writer for nil logger")
		}
	})

	t.Run("logger with nil file", func(t *testing.T) {
		logger := &RunLogger{}
		if err := logger.Close(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"Hello World", "Hello_World"},
		{"test-project", "test-project"},
		{"many   spaces", "many_spaces"},
		{"special@chars!", "special_chars"},
		{"", "project"},
		{"   ", "project"},
		{"___", "project"},
		{"test.-_project", "test.-_project"},
		{"test/directory", "test_directory"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProjectSlug(t *testing.T) {
	slug := projectSlug("/my/project")
	if !strings.HasPrefix(slug, "project-") {
		t.Fatalf("expected slug to start with base name, got %s", slug)
	}
	if hash := strings.TrimPrefix(slug, "project-"); len(hash) != 8 {
		t.Errorf("expected 8-char hash, got %s", hash)
	}
	if projectSlug("/other/project") == slug {
		t.Error("expected different roots to produce different slugs")
	}
}

func TestFindLogDir(t *testing.T) {
	t.Run("matches run logger dir", func(t *testing.T) {
		baseDir := t.TempDir()
		workDir := t.TempDir()

		logger, err := NewRunLogger(baseDir, workDir)
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Close()

		dir, err := FindLogDir(baseDir, workDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dir != logger.Dir {
			t.Errorf("FindLogDir() = %s, want %s", dir, logger.Dir)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		if _, err := FindLogDir("", t.TempDir()); err == nil {
			t.Fatal("expected error for empty base dir")
		}
	})
}

func TestFindLatestLog(t *testing.T) {
	t.Run("finds newest log", func(t *testing.T) {
		logDir := t.TempDir()
		base := time.Now().Add(-time.Hour)
		files := []string{"20240101-120000-100.log", "20240101-120001-101.log", "20240101-120002-102.log"}
		for i, f := range files {
			path := filepath.Join(logDir, f)
			if err := os.WriteFile(path, []byte("test\n"), 0644); err != nil {
				t.Fatal(err)
			}
			mod := base.Add(time.Duration(i) * time.Minute)
			if err := os.Chtimes(path, mod, mod); err != nil {
				t.Fatal(err)
			}
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Base(latest) != "20240101-120002-102.log" {
			t.Errorf("expected newest log, got %s", latest)
		}
	})

	t.Run("returns empty for non-existent directory", func(t *testing.T) {
		latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("expected empty path, got %s", latest)
		}
	})

	t.Run("ignores other files and subdirectories", func(t *testing.T) {
		logDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(logDir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(filepath.Join(logDir, "sub.log"), 0755); err != nil {
			t.Fatal(err)
		}

		latest, err := FindLatestLog(logDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if latest != "" {
			t.Errorf("expected no log, got %s", latest)
		}
	})
}

func TestFindLogRuns(t *testing.T) {
	logDir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"20240101-120000-1", "20240101-130000-2"} {
		path := filepath.Join(logDir, id+LogExt)
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		mod := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := FindLogRuns(logDir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "20240101-130000-2" || runs[1].RunID != "20240101-120000-1" {
		t.Errorf("expected newest first, got %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestTailLog(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "run.log")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"whole file when n is zero", "a\nb\nc\n", 0, "a\nb\nc\n"},
		{"last two lines", "a\nb\nc\n", 2, "b\nc\n"},
		{"missing trailing newline", "a\nb\nc", 2, "b\nc"},
		{"n larger than file", "a\nb\n", 10, "a\nb\n"},
		{"empty file", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(&buf, write(t, tt.content), tt.n, false, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("TailLog() = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("long file", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 2000; i++ {
			sb.WriteString(strings.Repeat("x", 40))
			sb.WriteString("\n")
		}
		sb.WriteString("last\n")

		var buf bytes.Buffer
		if err := TailLog(&buf, write(t, sb.String()), 2, false, nil); err != nil {
			t.Fatal(err)
		}
		if want := strings.Repeat("x", 40) + "\nlast\n"; buf.String() != want {
			t.Errorf("TailLog() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		if err := TailLog(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.log"), 0, false, nil); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("follow picks up appended lines", func(t *testing.T) {
		path := write(t, "initial\n")

		var buf syncBuffer
		done := make(chan struct{})
		errc := make(chan error, 1)
		go func() {
			errc <- TailLog(&buf, path, 0, true, done)
		}()

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("appended line\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()

		deadline := time.Now().Add(2 * time.Second)
		for !strings.Contains(buf.String(), "appended") && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		close(done)

		if err := <-errc; err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got := buf.String()
		if !strings.Contains(got, "initial") || !strings.Contains(got, "appended") {
			t.Errorf("expected initial and appended content, got %q", got)
		}
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestResolveBaseDir(t *testing.T) {
	work := filepath.Join(string(filepath.Separator), "work", "dir")
	abs := filepath.Join(string(filepath.Separator), "abs", "logs")

	if got := resolveBaseDir(abs, work); got != abs {
		t.Errorf("absolute base: got %s, want %s", got, abs)
	}
	if got, want := resolveBaseDir("logs", work), filepath.Join(work, "logs"); got != want {
		t.Errorf("relative base: got %s, want %s", got, want)
	}
	if got, want := resolveBaseDir("../logs", work), filepath.Join(string(filepath.Separator), "work", "logs"); got != want {
		t.Errorf("parent base: got %s, want %s", got, want)
	}
}

func TestResolveProjectRoot(t *testing.T) {
	if got := resolveProjectRoot(""); got != "." {
		t.Errorf("resolveProjectRoot(\"\") = %s, want .", got)
	}
}
