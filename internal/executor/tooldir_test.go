package executor

import (
	"os"
	"path/filepath"
	"testing"
)

type dirProbe struct{}

func (dirProbe) Probe() {}

type ptrProbe struct{}

func (*ptrProbe) Probe() {}

func thisDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(wd)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}

func TestToolDir(t *testing.T) {
	want := thisDir(t)

	tests := []struct {
		name string
		v    any
	}{
		{"func", thisDir},
		{"closure", func() {}},
		{"value receiver", dirProbe{}},
		{"value receiver via pointer", &dirProbe{}},
		{"pointer receiver", &ptrProbe{}},
		{"pointer receiver via value", ptrProbe{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToolDir(tt.v)
			if err != nil {
				t.Fatalf("ToolDir: %v", err)
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestToolDir_Errors(t *testing.T) {
	if _, err := ToolDir(nil); err == nil {
		t.Error("expected error for nil")
	}
	if _, err := ToolDir(42); err == nil {
		t.Error("expected error for a type without methods")
	}
}
