package task

import (
	"context"
	"fmt"
	"testing"

	"github.com/nibzard/rxtodo-go/internal/kvstore"
)

// BenchmarkDecodeTasks benchmarks validating and decoding 100 stored tasks.
func BenchmarkDecodeTasks(b *testing.B) {
	tasks := make([]Task, 100)
	for i := range tasks {
		tasks[i] = Task{ID: fmt.Sprintf("T%03d", i), Title: fmt.Sprintf("Task %d", i), IsDone: i%3 == 0}
	}
	dicts, err := EncodeTasks(tasks)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, errs := DecodeTasks(dicts); len(errs) != 0 {
			b.Fatalf("DecodeTasks: %v", errs)
		}
	}
}

// BenchmarkCreate benchmarks creating tasks against the memory store.
func BenchmarkCreate(b *testing.B) {
	ctx := context.Background()
	s, err := NewService(ctx, kvstore.NewMemory())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Create(ctx, "bench", nil); err != nil {
			b.Fatal(err)
		}
	}
}
