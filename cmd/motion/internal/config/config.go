// Package config reads the optional motion.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/presets"
)

// FileName is the project file looked up at the module root.
const FileName = "motion.yaml"

// Config represents the optional motion.yaml configuration.
type Config struct {
	Name     string         `yaml:"name,omitempty"`
	Presets  []string       `yaml:"presets,omitempty"`
	Simulate SimulateConfig `yaml:"simulate"`
	Plot     PlotConfig     `yaml:"plot"`
}

// SimulateConfig holds the defaults of the simulate and plot commands.
type SimulateConfig struct {
	Frame      presets.Duration `yaml:"frame,omitempty"`
	Integrator string           `yaml:"integrator,omitempty"`
	Limit      int              `yaml:"limit,omitempty"`
}

// PlotConfig holds plot output defaults.
type PlotConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Out    string `yaml:"out,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	Name        string
	PresetFiles []string
	Frame       time.Duration
	Integrator  string
	Limit       int
	PlotWidth   int
	PlotHeight  int
	PlotOut     string
}

// LoadOptional reads motion.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads motion.yaml (if present) and resolves defaults. dir does
// not need to hold a go.mod; the module path is then empty.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = defaultName(modulePath, dir)
	}

	var files []string
	for _, p := range cfg.Presets {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		files = append(files, p)
	}

	integrator := strings.TrimSpace(cfg.Simulate.Integrator)
	if integrator == "" {
		integrator = "euler"
	}
	if err := ValidateIntegrator(integrator); err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:        dir,
		ModulePath:  modulePath,
		Name:        name,
		PresetFiles: files,
		Frame:       cfg.Simulate.Frame.Std(),
		Integrator:  integrator,
		Limit:       cfg.Simulate.Limit,
		PlotWidth:   cfg.Plot.Width,
		PlotHeight:  cfg.Plot.Height,
		PlotOut:     strings.TrimSpace(cfg.Plot.Out),
	}
	if r.Frame <= 0 {
		r.Frame = 16 * time.Millisecond
	}
	if r.Limit <= 0 {
		r.Limit = 600
	}
	if r.PlotWidth <= 0 {
		r.PlotWidth = 640
	}
	if r.PlotHeight <= 0 {
		r.PlotHeight = 360
	}
	if r.PlotOut == "" {
		r.PlotOut = "motion.png"
	}
	return r, nil
}

// ValidateIntegrator accepts the integrator names the CLI understands.
func ValidateIntegrator(name string) error {
	switch name {
	case "euler", "harmonic":
		return nil
	default:
		return fmt.Errorf("unknown integrator %q (use euler or harmonic)", name)
	}
}

// FindProjectRoot walks up from the current directory to find go.mod or
// motion.yaml. Outside any project it returns the current directory.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "motion"
	}
	return base
}
