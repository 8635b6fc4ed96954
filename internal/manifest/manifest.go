// Package manifest reads the YAML run manifest the CLI consumes: which
// systems to create, which rule files to load into them, and how to run.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted in a manifest's run section.
const (
	StrategyFirst          = "first"
	StrategyRuleSaturation = "rule-saturation"
	StrategySaturation     = "saturation"
)

// Manifest is the root document.
type Manifest struct {
	Systems []SystemSpec `yaml:"systems"`
	Run     RunSpec      `yaml:"run"`
}

// SystemSpec declares one system and the rule files loaded into it.
type SystemSpec struct {
	Name   string   `yaml:"name"`
	Inputs []string `yaml:"inputs"`
	Files  []string `yaml:"files"`
}

// RunSpec selects the system and firing strategy, with optional limits
// enforced through the control callback.
type RunSpec struct {
	System       string `yaml:"system"`
	Strategy     string `yaml:"strategy"`
	LimitTotal   uint64 `yaml:"limit_total"`
	LimitPerRule uint64 `yaml:"limit_per_rule"`
}

// Load reads and validates a manifest. Relative rule file paths are resolved
// against the manifest's directory.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if err := manifest.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range manifest.Systems {
		for j, file := range manifest.Systems[i].Files {
			if !filepath.IsAbs(file) {
				manifest.Systems[i].Files[j] = filepath.Join(base, file)
			}
		}
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	if len(m.Systems) == 0 {
		return fmt.Errorf("no systems declared")
	}
	names := make(map[string]bool)
	for _, sys := range m.Systems {
		if sys.Name == "" {
			return fmt.Errorf("system with empty name")
		}
		if names[sys.Name] {
			return fmt.Errorf("system %q declared twice", sys.Name)
		}
		names[sys.Name] = true
	}
	if m.Run.System == "" {
		return fmt.Errorf("run section names no system")
	}
	if !names[m.Run.System] {
		return fmt.Errorf("run section names undeclared system %q", m.Run.System)
	}
	switch m.Run.Strategy {
	case StrategyFirst, StrategyRuleSaturation, StrategySaturation:
	case "":
		return fmt.Errorf("run section names no strategy")
	default:
		return fmt.Errorf("unknown strategy %q", m.Run.Strategy)
	}
	return nil
}
