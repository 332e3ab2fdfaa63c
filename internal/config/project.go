package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Project represents a serpent.yaml file. Paths are relative to the file.
type Project struct {
	// Entry is the module run by "serpent run" without arguments.
	Entry string `yaml:"entry"`

	// SourceDirs are scanned for modules. Defaults to the project directory.
	SourceDirs []string `yaml:"source_dirs,omitempty"`

	// Extensions of module files. Defaults to SourceFileExtensions.
	Extensions []string `yaml:"extensions,omitempty"`

	// MaxDepth bounds nested calls. Defaults to DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Timeout cancels a run after the given duration, e.g. "30s".
	Timeout string `yaml:"timeout,omitempty"`

	// Color is auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Trace logs parsing and evaluation to stderr.
	Trace bool `yaml:"trace,omitempty"`

	// Dir is the directory holding the project file.
	Dir string `yaml:"-"`

	timeout time.Duration
}

// LoadProject reads and parses a serpent.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseProject(data, path)
}

// ParseProject parses serpent.yaml content from bytes.
// The path argument is used for error messages and to resolve directories.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.validate(path); err != nil {
		return nil, err
	}
	p.Dir = filepath.Dir(path)
	p.setDefaults()
	return &p, nil
}

// FindProject searches for serpent.yaml starting from dir and walking up
// to parent directories. It returns "" and a nil error if there is none.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (p *Project) validate(path string) error {
	if p.Entry == "" {
		return fmt.Errorf("%s: entry is required", path)
	}
	if strings.ContainsAny(p.Entry, `/\`) {
		return fmt.Errorf("%s: entry %q must be a module name, not a path", path, p.Entry)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("%s: max_depth must not be negative", path)
	}
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return fmt.Errorf("%s: timeout: %w", path, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: timeout must be positive", path)
		}
		p.timeout = d
	}
	switch p.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be one of auto, always, never (got %q)", path, p.Color)
	}
	for i, ext := range p.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%s: extensions[%d]: %q must start with a dot", path, i, ext)
		}
	}
	for i, dir := range p.SourceDirs {
		if dir == "" {
			return fmt.Errorf("%s: source_dirs[%d]: empty path", path, i)
		}
	}
	return nil
}

func (p *Project) setDefaults() {
	if len(p.SourceDirs) == 0 {
		p.SourceDirs = []string{"."}
	}
	if len(p.Extensions) == 0 {
		p.Extensions = SourceFileExtensions
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	if p.Color == "" {
		p.Color = ColorAuto
	}
}

// TimeoutDuration returns the parsed timeout, or 0 for none.
func (p *Project) TimeoutDuration() time.Duration {
	return p.timeout
}

// SourcePaths returns SourceDirs resolved against the project directory.
func (p *Project) SourcePaths() []string {
	paths := make([]string, len(p.SourceDirs))
	for i, dir := range p.SourceDirs {
		if filepath.IsAbs(dir) {
			paths[i] = dir
		} else {
			paths[i] = filepath.Join(p.Dir, dir)
		}
	}
	return paths
}
