package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nibzard/rxtodo-go/internal/config"
	"github.com/nibzard/rxtodo-go/internal/kvstore"
	"github.com/nibzard/rxtodo-go/internal/kvstore/sqlite"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		sc    config.StoreConfig
		check func(t *testing.T, s kvstore.Store)
	}{
		{
			name: "memory",
			sc:   config.StoreConfig{Driver: config.DriverMemory},
			check: func(t *testing.T, s kvstore.Store) {
				if _, ok := s.(*kvstore.Memory); !ok {
					t.Errorf("got %T, want *kvstore.Memory", s)
				}
			},
		},
		{
			name: "file",
			sc:   config.StoreConfig{Driver: config.DriverFile, Path: filepath.Join(dir, "store.json")},
			check: func(t *testing.T, s kvstore.Store) {
				if _, ok := s.(*kvstore.File); !ok {
					t.Errorf("got %T, want *kvstore.File", s)
				}
			},
		},
		{
			name: "sqlite",
			sc:   config.StoreConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "rxtodo.db")},
			check: func(t *testing.T, s kvstore.Store) {
				if _, ok := s.(*sqlite.Store); !ok {
					t.Errorf("got %T, want *sqlite.Store", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(ctx, tt.sc)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			tt.check(t, s)

			if err := s.Set(ctx, "tasks", []byte(`[]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got, ok, err := s.Get(ctx, "tasks"); err != nil || !ok || string(got) != `[]` {
				t.Errorf("Get = %s ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestOpenInvalid(t *testing.T) {
	if _, err := Open(context.Background(), config.StoreConfig{Driver: "nope"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverS3}); err == nil {
		t.Error("expected error for s3 without bucket")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		sc   config.StoreConfig
		want string
	}{
		{config.StoreConfig{Driver: "file", Path: "/p/store.json"}, "file (/p/store.json)"},
		{config.StoreConfig{Driver: "memory"}, "memory"},
		{config.StoreConfig{Driver: "postgres", DSN: "postgres://u:secret@h/db"}, "postgres"},
		{config.StoreConfig{Driver: "s3", S3: config.S3Config{Bucket: "b", Prefix: "rxtodo"}}, "s3 (s3://b/rxtodo)"},
	}
	for _, tt := range tests {
		if got := Describe(tt.sc); got != tt.want {
			t.Errorf("Describe(%+v) = %q, want %q", tt.sc, got, tt.want)
		}
	}
}
