package animation

import (
	"errors"
	"math"
	"testing"
	"time"

	motionerrors "github.com/go-drift/motion/pkg/errors"
)

func TestSpringConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SpringConfig
		wantErr bool
	}{
		{"default", DefaultConfig, false},
		{"zero tension", SpringConfig{Tension: 0, Friction: 10, Mass: 1}, true},
		{"negative friction", SpringConfig{Tension: 100, Friction: -1, Mass: 1}, true},
		{"zero mass", SpringConfig{Tension: 100, Friction: 10}, true},
		{"nan tension", SpringConfig{Tension: math.NaN(), Friction: 10, Mass: 1}, true},
		{"inf mass", SpringConfig{Tension: 100, Friction: 10, Mass: math.Inf(1)}, true},
		{"negative delay", SpringConfig{Tension: 100, Friction: 10, Mass: 1, Delay: -time.Millisecond}, true},
		{"negative precision", SpringConfig{Tension: 100, Friction: 10, Mass: 1, Precision: -1}, true},
		{"negative duration", SpringConfig{Duration: -time.Second}, true},
		{"duration ignores spring", SpringConfig{Duration: time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, motionerrors.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	want := []string{"default", "gentle", "molasses", "slow", "stiff", "wobbly"}
	for _, name := range want {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("missing preset %q", name)
		}
		if cfg.Mass != 1 {
			t.Errorf("%s mass = %v, want 1", name, cfg.Mass)
		}
	}
	if cfg, _ := Preset("wobbly"); cfg.Tension != 180 || cfg.Friction != 12 {
		t.Errorf("wobbly = %+v", cfg)
	}
}

func TestRegisterPreset(t *testing.T) {
	if err := RegisterPreset("", DefaultConfig); err == nil {
		t.Error("expected empty name to fail")
	}
	if err := RegisterPreset("broken", SpringConfig{Tension: -1}); err == nil {
		t.Error("expected invalid config to fail")
	}
	custom := SpringConfig{Tension: 300, Friction: 30, Mass: 2}
	if err := RegisterPreset("test-custom", custom); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		presetMu.Lock()
		delete(presets, "test-custom")
		presetMu.Unlock()
	})
	if got, ok := Preset("test-custom"); !ok || got.Tension != 300 {
		t.Errorf("Preset(test-custom) = %+v, %v", got, ok)
	}
}

func TestSpringConfig_OrDefault(t *testing.T) {
	if got := (SpringConfig{}).OrDefault(); got.Tension != DefaultConfig.Tension {
		t.Errorf("zero config should become DefaultConfig, got %+v", got)
	}
	if got := StiffConfig.OrDefault(); got.Tension != StiffConfig.Tension {
		t.Errorf("non-zero config should be kept, got %+v", got)
	}
}

func TestStep_SettleFrames(t *testing.T) {
	tests := []struct {
		preset string
		frames int
	}{
		{"default", 46},
		{"gentle", 46},
		{"wobbly", 49},
		{"stiff", 37},
		{"slow", 78},
		{"molasses", 145},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			cfg, _ := Preset(tt.preset)
			got, err := SettleFrames(cfg, 0, 1, 16*time.Millisecond, 1000)
			if err != nil {
				t.Fatal(err)
			}
			if got < tt.frames-1 || got > tt.frames+1 {
				t.Errorf("settled in %d frames, want about %d", got, tt.frames)
			}
		})
	}
}

func TestStep_MonotonicOpacity(t *testing.T) {
	samples, err := Simulate(DefaultConfig, 0, 1, 16*time.Millisecond, 1000)
	if err != nil {
		t.Fatal(err)
	}
	last := samples[len(samples)-1]
	if !last.Rest || last.Value != 1 || last.Velocity != 0 {
		t.Fatalf("final sample = %+v, want exact rest at 1", last)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Value < samples[i-1].Value {
			t.Fatalf("frame %d went backwards: %v -> %v", i, samples[i-1].Value, samples[i].Value)
		}
		if samples[i].Value > 1 {
			t.Fatalf("frame %d overshot: %v", i, samples[i].Value)
		}
	}
}

func TestStep_Clamp(t *testing.T) {
	free, _ := Simulate(WobblyConfig, 0, 1, 16*time.Millisecond, 1000)
	overshoot := false
	for _, s := range free {
		if s.Value > 1 {
			overshoot = true
		}
	}
	if !overshoot {
		t.Fatal("expected wobbly spring to overshoot")
	}

	cfg := WobblyConfig
	cfg.Clamp = true
	clamped, _ := Simulate(cfg, 0, 1, 16*time.Millisecond, 1000)
	for _, s := range clamped {
		if s.Value > 1 {
			t.Fatalf("clamped spring overshot at frame %d: %v", s.Frame, s.Value)
		}
	}
	if !clamped[len(clamped)-1].Rest {
		t.Error("expected clamped spring to settle")
	}
	if len(clamped) >= len(free) {
		t.Errorf("clamped spring took %d frames, free spring %d", len(clamped), len(free))
	}
}

func TestStep_ClampsFrameDelta(t *testing.T) {
	v := Value{Current: 0, Target: 1}
	x1, v1, _ := Step(v, DefaultConfig, 10)
	x2, v2, _ := Step(v, DefaultConfig, maxStep)
	if x1 != x2 || v1 != v2 {
		t.Errorf("Step(10s) = (%v, %v), want Step(1/30s) = (%v, %v)", x1, v1, x2, v2)
	}
}

func TestStep_StiffFallsBackToHarmonic(t *testing.T) {
	cfg := SpringConfig{Tension: 1e10, Friction: 2e5, Mass: 1}
	v := Value{Current: 0, Target: 1}
	x, vel, _ := Step(v, cfg, 0.016)
	hx, hvel, _ := HarmonicStep(v, cfg, 0.016)
	if x != hx || vel != hvel {
		t.Errorf("Step = (%v, %v), HarmonicStep = (%v, %v)", x, vel, hx, hvel)
	}
	if !finite(x) || !finite(vel) {
		t.Errorf("stiff spring diverged: (%v, %v)", x, vel)
	}
}

func TestHarmonicStep_Settles(t *testing.T) {
	samples, err := SimulateWith(HarmonicIntegrator, DefaultConfig, 0, 100, 16*time.Millisecond, 1000)
	if err != nil {
		t.Fatal(err)
	}
	last := samples[len(samples)-1]
	if !last.Rest || last.Value != 100 {
		t.Errorf("harmonic final sample = %+v", last)
	}
}

func TestStep_AtTargetRests(t *testing.T) {
	x, vel, rest := Step(Value{Current: 5, Target: 5.001}, DefaultConfig, 0.016)
	if !rest || x != 5.001 || vel != 0 {
		t.Errorf("Step = (%v, %v, %v), want snapped rest", x, vel, rest)
	}
}

func TestValue_DurationTween(t *testing.T) {
	cfg := SpringConfig{Duration: 160 * time.Millisecond}
	var v Value
	v.jump(0)
	v.retarget(1, cfg)

	frames := 0
	mid := 0.0
	for !v.advance(EulerIntegrator, cfg, 0.016) {
		frames++
		if frames == 5 {
			mid = v.Current
		}
		if frames > 20 {
			t.Fatal("tween never finished")
		}
	}
	if v.Current != 1 || v.Velocity != 0 {
		t.Errorf("tween ended at (%v, %v)", v.Current, v.Velocity)
	}
	if mid < 0.45 || mid > 0.55 {
		t.Errorf("linear tween at frame 5 = %v, want about 0.5", mid)
	}
}

func TestValue_RetargetKeepsVelocity(t *testing.T) {
	var v Value
	v.jump(0)
	v.retarget(100, DefaultConfig)
	for range 5 {
		v.advance(EulerIntegrator, DefaultConfig, 0.016)
	}
	x, vel := v.Current, v.Velocity
	v.retarget(-50, DefaultConfig)
	if v.Current != x || v.Velocity != vel {
		t.Errorf("retarget moved the value: (%v, %v) -> (%v, %v)", x, vel, v.Current, v.Velocity)
	}
	if v.AtRest() {
		t.Error("retargeted value should not be at rest")
	}
}

func TestSimulate_Errors(t *testing.T) {
	if _, err := Simulate(SpringConfig{Tension: -1, Friction: 1, Mass: 1}, 0, 1, 0, 10); err == nil {
		t.Error("expected invalid config to fail")
	}
	if _, err := Simulate(DefaultConfig, math.NaN(), 1, 0, 10); err == nil {
		t.Error("expected NaN start to fail")
	}
	n, err := SettleFrames(MolassesConfig, 0, 1, 16*time.Millisecond, 10)
	if err != nil || n != -1 {
		t.Errorf("SettleFrames under limit = %d, %v; want -1", n, err)
	}
}
