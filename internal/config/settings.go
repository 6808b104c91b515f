package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SettingsFileName is looked up from the source directory upwards.
const SettingsFileName = "autotype.yaml"

// Settings tunes the analysis and the report. Every field has a usable
// zero value; see setDefaults.
type Settings struct {
	// MaxInferencePasses bounds the fixed-point loop of the inferencer.
	// Zero means "one pass per registered type", which is the bound the
	// narrowing argument guarantees.
	MaxInferencePasses int `yaml:"max_inference_passes,omitempty"`

	// LinkerPasses is 1 or 2. The second pass runs only if the first one
	// filtered a candidate list.
	LinkerPasses int `yaml:"linker_passes,omitempty"`

	// RequireMain reports a program without class Main and method main.
	RequireMain *bool `yaml:"require_main,omitempty"`

	// Color is one of auto, always, never.
	Color string `yaml:"color,omitempty"`

	// Format is one of text, yaml.
	Format string `yaml:"format,omitempty"`

	// Trace enables debug logging of every pass.
	Trace bool `yaml:"trace,omitempty"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	var s Settings
	s.setDefaults()
	return s
}

// MainRequired reports whether the Main.main check is enabled.
func (s Settings) MainRequired() bool {
	return s.RequireMain == nil || *s.RequireMain
}

// LoadSettings reads and parses an autotype.yaml file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "reading settings %s", path)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses autotype.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, errors.Wrapf(err, "parsing %s", path)
	}
	if err := s.validate(path); err != nil {
		return Settings{}, err
	}
	s.setDefaults()
	return s, nil
}

// FindSettings searches for autotype.yaml starting from dir and walking up
// to parent directories. It returns "" when no file is found.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving directory")
	}

	for {
		candidate := filepath.Join(dir, SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (s *Settings) validate(path string) error {
	if s.MaxInferencePasses < 0 {
		return errors.Errorf("%s: max_inference_passes must not be negative", path)
	}
	if s.LinkerPasses < 0 || s.LinkerPasses > 2 {
		return errors.Errorf("%s: linker_passes must be 1 or 2, got %d", path, s.LinkerPasses)
	}
	switch s.Color {
	case "", "auto", "always", "never":
	default:
		return errors.Errorf("%s: color must be auto, always or never, got %q", path, s.Color)
	}
	switch s.Format {
	case "", "text", "yaml":
	default:
		return errors.Errorf("%s: format must be text or yaml, got %q", path, s.Format)
	}
	return nil
}

func (s *Settings) setDefaults() {
	if s.LinkerPasses == 0 {
		s.LinkerPasses = 2
	}
	if s.Color == "" {
		s.Color = "auto"
	}
	if s.Format == "" {
		s.Format = "text"
	}
}
