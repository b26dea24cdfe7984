package animation

import (
	"maps"
	"slices"

	"github.com/tanema/gween"
)

// Values maps animated property names to numbers. A Values with several
// keys is a named tuple, e.g. {"x": 10, "y": 20}.
type Values map[string]float64

// Clone returns a copy of v. Cloning nil returns nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	return maps.Clone(v)
}

// Equal reports whether v and o hold the same keys and numbers.
func (v Values) Equal(o Values) bool {
	return maps.Equal(v, o)
}

// Keys returns the property names in sorted order.
func (v Values) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// Merge returns a copy of v with every entry of o applied on top.
func (v Values) Merge(o Values) Values {
	out := make(Values, len(v)+len(o))
	maps.Copy(out, v)
	maps.Copy(out, o)
	return out
}

// Value is the state of one animated number. It is owned by exactly one
// [Controller] and mutated only by that controller's tick or by explicit
// Start/Set/Jump calls.
type Value struct {
	Current  float64
	Target   float64
	Velocity float64
	// Precision overrides the config precision for this value when > 0.
	Precision float64

	// from is where the current leg started.
	from    float64
	tween   *gween.Tween
	resting bool
}

// AtRest reports whether the value has settled on its target.
func (v *Value) AtRest() bool {
	return v.resting
}

func (v Value) precision(cfg SpringConfig) float64 {
	if v.Precision > 0 {
		return v.Precision
	}
	return cfg.precision()
}

// jump moves the value to x with no motion left.
func (v *Value) jump(x float64) {
	v.Current = x
	v.Target = x
	v.from = x
	v.Velocity = 0
	v.tween = nil
	v.resting = true
}

// retarget points the value at target, keeping position and velocity.
func (v *Value) retarget(target float64, cfg SpringConfig) {
	v.Target = target
	v.from = v.Current
	v.tween = nil
	if x, vel, rest := restCheck(v.Current, v.Velocity, target, v.precision(cfg)); rest {
		v.Current, v.Velocity, v.resting = x, vel, true
		return
	}
	v.resting = false
	if cfg.Duration > 0 {
		v.tween = gween.New(float32(v.Current), float32(target), float32(cfg.Duration.Seconds()), cfg.Easing.tweenFunc())
	}
}

// advance moves the value forward by dt seconds and reports whether it is
// at rest afterwards.
func (v *Value) advance(integrate Integrator, cfg SpringConfig, dt float64) bool {
	if v.resting {
		return true
	}
	if v.tween != nil {
		prev := v.Current
		x, done := v.tween.Update(float32(dt))
		if done {
			v.Current, v.Velocity = v.Target, 0
			v.tween = nil
			v.resting = true
			return true
		}
		v.Current = float64(x)
		if dt > 0 {
			v.Velocity = (v.Current - prev) / dt
		}
		return false
	}
	v.Current, v.Velocity, v.resting = integrate(*v, cfg, dt)
	return v.resting
}
