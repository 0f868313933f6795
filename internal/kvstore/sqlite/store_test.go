package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nibzard/rxtodo-go/internal/kvstore"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "rxtodo.db")
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok, err := s.Get(ctx, "tasks"); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "tasks", []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "tasks", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2]` {
		t.Errorf("Get = %s, want [1,2]", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := s.Get(ctx, "tasks"); !errors.Is(err, kvstore.ErrClosed) {
		t.Errorf("Get after close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, ok, err = reopened.Get(ctx, "tasks")
	if err != nil || !ok || string(got) != `[1,2]` {
		t.Errorf("after reopen: %s ok=%v err=%v", got, ok, err)
	}
}

func TestTypedValue(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "rxtodo.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	key := kvstore.Key[map[string]int]("counts")
	if err := kvstore.SetValue(ctx, s, key, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kvstore.Value(ctx, s, key)
	if err != nil || !ok || got["a"] != 1 {
		t.Errorf("Value = %v ok=%v err=%v", got, ok, err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}
