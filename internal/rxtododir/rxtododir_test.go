package rxtododir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name    string
		workDir string
		fn      func(string) string
		want    string
	}{
		{"store in cwd", "", StorePath, filepath.Join(".rxtodo", "store.json")},
		{"store in dot", ".", StorePath, filepath.Join(".rxtodo", "store.json")},
		{"store in project", "/work", StorePath, filepath.Join("/work", ".rxtodo", "store.json")},
		{"database", "/work", DatabasePath, filepath.Join("/work", ".rxtodo", "rxtodo.db")},
		{"config", "proj", ConfigPath, filepath.Join("proj", ".rxtodo", "rxtodo.toml")},
		{"dir", "/work", DirPath, filepath.Join("/work", ".rxtodo")},
		{"dir in cwd", "", DirPath, ".rxtodo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.workDir); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
