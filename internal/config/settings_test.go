package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSettings_Defaults(t *testing.T) {
	s, err := ParseSettings([]byte("{}"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LinkerPasses != 2 {
		t.Errorf("linker_passes = %d, want 2", s.LinkerPasses)
	}
	if s.Color != "auto" {
		t.Errorf("color = %q, want auto", s.Color)
	}
	if s.Format != "text" {
		t.Errorf("format = %q, want text", s.Format)
	}
	if !s.MainRequired() {
		t.Error("expected Main to be required by default")
	}
	if s.MaxInferencePasses != 0 {
		t.Errorf("max_inference_passes = %d, want 0", s.MaxInferencePasses)
	}
}

func TestParseSettings_AllFields(t *testing.T) {
	yaml := `
max_inference_passes: 7
linker_passes: 1
require_main: false
color: never
format: yaml
trace: true
`
	s, err := ParseSettings([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.MaxInferencePasses != 7 {
		t.Errorf("max_inference_passes = %d, want 7", s.MaxInferencePasses)
	}
	if s.LinkerPasses != 1 {
		t.Errorf("linker_passes = %d, want 1", s.LinkerPasses)
	}
	if s.MainRequired() {
		t.Error("expected require_main: false to disable the check")
	}
	if s.Color != "never" || s.Format != "yaml" || !s.Trace {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestParseSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative passes", "max_inference_passes: -1"},
		{"three linker passes", "linker_passes: 3"},
		{"bad color", "color: sometimes"},
		{"bad format", "format: json"},
		{"not yaml", "linker_passes: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSettings([]byte(tt.yaml), "test.yaml"); err == nil {
				t.Fatalf("expected error for %q", tt.yaml)
			}
		})
	}
}

func TestFindSettings_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, SettingsFileName)
	if err := os.WriteFile(want, []byte("trace: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindSettings(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindSettings = %q, want %q", got, want)
	}

	s, err := LoadSettings(got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Trace {
		t.Error("expected trace to be enabled")
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
