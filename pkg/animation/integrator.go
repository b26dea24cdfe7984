package animation

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Integrator advances one value by dt seconds under cfg and reports the new
// position, the new velocity and whether the value came to rest. When at
// rest the position is snapped to the target and the velocity to zero.
type Integrator func(v Value, cfg SpringConfig, dt float64) (current, velocity float64, atRest bool)

const (
	// maxStep mirrors DefaultMaxFrameDelta for callers that bypass the
	// scheduler.
	maxStep = 1.0 / 30

	// Semi-implicit Euler is run in sub-steps no longer than maxSubstep.
	maxSubstep = 0.001

	// Configs needing more sub-steps per frame than this are solved
	// exactly instead.
	maxSubsteps = 1000
)

var (
	// EulerIntegrator is the default integrator. See [Step].
	EulerIntegrator Integrator = Step

	// HarmonicIntegrator solves the damped oscillator exactly using
	// harmonica. It is unconditionally stable but costs a few
	// transcendental calls per value per frame.
	HarmonicIntegrator Integrator = HarmonicStep
)

// Step advances v by dt seconds with semi-implicit Euler:
//
//	a  = (tension*(target-x) - friction*v) / mass
//	v' = v + a*h
//	x' = x + v'*h
//
// dt is clamped to 1/30s and split into sub-steps h no longer than 1ms,
// 1/omega and mass/friction, which keeps the scheme stable for every valid
// config. Configs stiff enough to need more than 1000 sub-steps in one
// frame fall back to [HarmonicStep].
func Step(v Value, cfg SpringConfig, dt float64) (float64, float64, bool) {
	dt = clampStep(dt)
	if dt <= 0 {
		return restCheck(v.Current, v.Velocity, v.Target, v.precision(cfg))
	}

	h := maxSubstep
	if bound := math.Sqrt(cfg.Mass / cfg.Tension); bound < h {
		h = bound
	}
	if bound := cfg.Mass / cfg.Friction; bound < h {
		h = bound
	}
	n := int(math.Ceil(dt / h))
	if n > maxSubsteps {
		return HarmonicStep(v, cfg, dt)
	}
	h = dt / float64(n)

	x, vel := v.Current, v.Velocity
	side := sign(v.Target - x)
	for range n {
		a := (cfg.Tension*(v.Target-x) - cfg.Friction*vel) / cfg.Mass
		vel += a * h
		x += vel * h
		if cfg.Clamp && side != 0 && sign(v.Target-x) != side {
			x, vel = v.Target, 0
			break
		}
	}
	return restCheck(x, vel, v.Target, v.precision(cfg))
}

// HarmonicStep advances v by dt seconds using the closed-form solution of
// the damped oscillator.
func HarmonicStep(v Value, cfg SpringConfig, dt float64) (float64, float64, bool) {
	dt = clampStep(dt)
	if dt <= 0 {
		return restCheck(v.Current, v.Velocity, v.Target, v.precision(cfg))
	}
	omega := math.Sqrt(cfg.Tension / cfg.Mass)
	zeta := cfg.Friction / (2 * math.Sqrt(cfg.Tension*cfg.Mass))
	spring := harmonica.NewSpring(dt, omega, zeta)
	x, vel := spring.Update(v.Current, v.Velocity, v.Target)
	if cfg.Clamp {
		if side := sign(v.Target - v.Current); side != 0 && sign(v.Target-x) != side {
			x, vel = v.Target, 0
		}
	}
	return restCheck(x, vel, v.Target, v.precision(cfg))
}

func restCheck(x, vel, target, precision float64) (float64, float64, bool) {
	if math.Abs(target-x) < precision && math.Abs(vel) < precision {
		return target, 0, true
	}
	return x, vel, false
}

func clampStep(dt float64) float64 {
	if dt > maxStep {
		return maxStep
	}
	return dt
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
