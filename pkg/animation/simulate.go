package animation

import "time"

// Sample is one committed frame of an offline simulation.
type Sample struct {
	Frame    int
	Time     time.Duration
	Value    float64
	Velocity float64
	Rest     bool
}

// Simulate runs a single value from one position to another with fixed
// frames of the given length, without a scheduler. The first sample is the
// starting state. It stops at rest or after limit frames, whichever comes
// first; callers check the last sample's Rest flag.
func Simulate(cfg SpringConfig, from, to float64, frame time.Duration, limit int) ([]Sample, error) {
	return SimulateWith(EulerIntegrator, cfg, from, to, frame, limit)
}

// SimulateWith is Simulate with an explicit integrator.
func SimulateWith(integrate Integrator, cfg SpringConfig, from, to float64, frame time.Duration, limit int) ([]Sample, error) {
	const op = "animation.Simulate"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckFinite(op, Values{"from": from, "to": to}); err != nil {
		return nil, err
	}
	if frame <= 0 {
		frame = NominalFrame
	}
	if integrate == nil {
		integrate = EulerIntegrator
	}

	var v Value
	v.jump(from)
	v.retarget(to, cfg)

	samples := []Sample{{Value: v.Current, Velocity: v.Velocity, Rest: v.resting}}
	for i := 1; i <= limit && !v.resting; i++ {
		v.advance(integrate, cfg, frame.Seconds())
		samples = append(samples, Sample{
			Frame:    i,
			Time:     time.Duration(i) * frame,
			Value:    v.Current,
			Velocity: v.Velocity,
			Rest:     v.resting,
		})
	}
	return samples, nil
}

// SettleFrames returns the number of frames cfg needs to carry a value from
// one position to another, or -1 if it does not settle within limit frames.
func SettleFrames(cfg SpringConfig, from, to float64, frame time.Duration, limit int) (int, error) {
	samples, err := Simulate(cfg, from, to, frame, limit)
	if err != nil {
		return 0, err
	}
	last := samples[len(samples)-1]
	if !last.Rest {
		return -1, nil
	}
	return last.Frame, nil
}
