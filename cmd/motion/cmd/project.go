package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"slices"
	"time"

	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/presets"
)

// loadProject resolves motion.yaml and registers every preset file it
// lists, plus the --presets files.
func loadProject() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}
	for _, path := range append(cfg.PresetFiles, extraPresets...) {
		table, err := presets.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		if err := table.Register(); err != nil {
			return nil, err
		}
		for _, name := range table.Names() {
			if isBuiltin(name) {
				log.Printf("warning: %s overrides built-in preset %q", path, name)
			}
		}
	}
	return cfg, nil
}

var builtin = []string{"default", "gentle", "wobbly", "stiff", "slow", "molasses"}

func isBuiltin(name string) bool {
	return slices.Contains(builtin, name)
}

// springFlags are the spring options shared by simulate and plot. Zero or
// NaN means "keep the preset's value".
type springFlags struct {
	tension, friction, mass, precision float64
	clamp                              bool
	duration                           time.Duration
	easing                             string
	from, to                           float64
	frame                              time.Duration
	limit                              int
	integrator                         string
}

func newFlagSet(name string, project *config.Resolved, sf *springFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Float64Var(&sf.tension, "tension", 0, "spring stiffness")
	fs.Float64Var(&sf.friction, "friction", 0, "spring damping")
	fs.Float64Var(&sf.mass, "mass", 0, "spring mass")
	fs.Float64Var(&sf.precision, "precision", 0, "rest tolerance")
	fs.BoolVar(&sf.clamp, "clamp", false, "stop at the target")
	fs.DurationVar(&sf.duration, "duration", 0, "use a tween of this length")
	fs.StringVar(&sf.easing, "easing", "", "easing of a --duration tween")
	fs.Float64Var(&sf.from, "from", 0, "start value")
	fs.Float64Var(&sf.to, "to", 1, "target value")
	fs.DurationVar(&sf.frame, "frame", project.Frame, "frame length")
	fs.IntVar(&sf.limit, "limit", project.Limit, "maximum number of frames")
	fs.StringVar(&sf.integrator, "integrator", project.Integrator, "euler or harmonic")
	return fs
}

// apply overrides base with the flags that were set.
func (sf *springFlags) apply(base animation.SpringConfig) (animation.SpringConfig, error) {
	cfg := base
	for _, f := range []struct {
		dst *float64
		v   float64
	}{
		{&cfg.Tension, sf.tension},
		{&cfg.Friction, sf.friction},
		{&cfg.Mass, sf.mass},
		{&cfg.Precision, sf.precision},
	} {
		if f.v != 0 && !math.IsNaN(f.v) {
			*f.dst = f.v
		}
	}
	if sf.clamp {
		cfg.Clamp = true
	}
	if sf.duration != 0 {
		cfg.Duration = sf.duration
	}
	if sf.easing != "" {
		e, ok := animation.EasingByName(sf.easing)
		if !ok {
			return cfg, fmt.Errorf("unknown easing %q", sf.easing)
		}
		cfg.Easing = e
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (sf *springFlags) integrate() (animation.Integrator, error) {
	if err := config.ValidateIntegrator(sf.integrator); err != nil {
		return nil, err
	}
	if sf.integrator == "harmonic" {
		return animation.HarmonicIntegrator, nil
	}
	return animation.EulerIntegrator, nil
}

func (sf *springFlags) simulate(cfg animation.SpringConfig) ([]animation.Sample, error) {
	integrate, err := sf.integrate()
	if err != nil {
		return nil, err
	}
	return animation.SimulateWith(integrate, cfg, sf.from, sf.to, sf.frame, sf.limit)
}

func preset(name string) (animation.SpringConfig, error) {
	cfg, ok := animation.Preset(name)
	if !ok {
		return cfg, fmt.Errorf("unknown preset %q (see motion presets)", name)
	}
	return cfg, nil
}
