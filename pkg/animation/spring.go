package animation

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// DefaultPrecision is the rest tolerance used when a config leaves
// Precision unset.
const DefaultPrecision = 0.01

// SpringConfig describes how a value travels to its target.
//
// The spring is a damped harmonic oscillator: Tension is the stiffness,
// Friction the damping and Mass the inertia. When Duration is positive the
// spring is replaced by a fixed-length tween shaped by Easing.
type SpringConfig struct {
	Tension  float64
	Friction float64
	Mass     float64

	// Delay postpones every start of a controller using this config.
	Delay time.Duration

	// Precision is the distance and speed under which a value is at rest.
	// Zero means DefaultPrecision.
	Precision float64

	// Clamp stops the value at its target instead of overshooting.
	Clamp bool

	// Duration switches to a time-based tween when positive.
	Duration time.Duration
	// Easing shapes a Duration tween. Nil means Linear.
	Easing Easing
}

// Named presets, matching the common tension/friction pairs.
var (
	DefaultConfig  = SpringConfig{Tension: 170, Friction: 26, Mass: 1}
	GentleConfig   = SpringConfig{Tension: 120, Friction: 14, Mass: 1}
	WobblyConfig   = SpringConfig{Tension: 180, Friction: 12, Mass: 1}
	StiffConfig    = SpringConfig{Tension: 210, Friction: 20, Mass: 1}
	SlowConfig     = SpringConfig{Tension: 280, Friction: 60, Mass: 1}
	MolassesConfig = SpringConfig{Tension: 280, Friction: 120, Mass: 1}
)

var (
	presetMu sync.RWMutex
	presets  = map[string]SpringConfig{
		"default":  DefaultConfig,
		"gentle":   GentleConfig,
		"wobbly":   WobblyConfig,
		"stiff":    StiffConfig,
		"slow":     SlowConfig,
		"molasses": MolassesConfig,
	}
)

// Preset returns the named config.
func Preset(name string) (SpringConfig, bool) {
	presetMu.RLock()
	defer presetMu.RUnlock()
	cfg, ok := presets[name]
	return cfg, ok
}

// PresetNames returns the registered preset names in sorted order.
func PresetNames() []string {
	presetMu.RLock()
	defer presetMu.RUnlock()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegisterPreset adds or replaces a named preset after validating it.
func RegisterPreset(name string, cfg SpringConfig) error {
	if name == "" {
		return errors.Config("animation.RegisterPreset", "preset name is empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	presetMu.Lock()
	defer presetMu.Unlock()
	presets[name] = cfg
	return nil
}

// IsZero reports whether c is the zero config.
func (c SpringConfig) IsZero() bool {
	return c.Tension == 0 && c.Friction == 0 && c.Mass == 0 &&
		c.Delay == 0 && c.Precision == 0 && !c.Clamp &&
		c.Duration == 0 && c.Easing == nil
}

// OrDefault returns DefaultConfig when c is the zero config.
func (c SpringConfig) OrDefault() SpringConfig {
	if c.IsZero() {
		return DefaultConfig
	}
	return c
}

// Validate rejects configs the integrator cannot run. Values are never
// clamped into range: a bad config is a caller bug.
func (c SpringConfig) Validate() error {
	const op = "animation.SpringConfig.Validate"
	if c.Duration < 0 {
		return errors.Config(op, "duration must be >= 0, got %v", c.Duration)
	}
	if c.Delay < 0 {
		return errors.Config(op, "delay must be >= 0, got %v", c.Delay)
	}
	if !finite(c.Precision) || c.Precision < 0 {
		return errors.Config(op, "precision must be finite and >= 0, got %v", c.Precision)
	}
	if c.Duration > 0 {
		return nil
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"tension", c.Tension},
		{"friction", c.Friction},
		{"mass", c.Mass},
	} {
		if !finite(f.value) || f.value <= 0 {
			return errors.Config(op, "%s must be finite and > 0, got %v", f.name, f.value)
		}
	}
	return nil
}

func (c SpringConfig) precision() float64 {
	if c.Precision > 0 {
		return c.Precision
	}
	return DefaultPrecision
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
