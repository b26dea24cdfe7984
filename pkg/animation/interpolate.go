package animation

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/go-drift/motion/pkg/errors"
)

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Tween interpolates between Begin and End based on progress in [0, 1].
//
// Use it to map an animated number to any type, e.g. a color or a point.
type Tween[T any] struct {
	// Begin is the value at t = 0.
	Begin T
	// End is the value at t = 1.
	End T
	// Lerp interpolates between Begin and End.
	Lerp func(a, b T, t float64) T
}

// Evaluate returns the interpolated value at t.
func (tw Tween[T]) Evaluate(t float64) T {
	if tw.Lerp == nil {
		return tw.End
	}
	return tw.Lerp(tw.Begin, tw.End, t)
}

// Extrapolate controls what a [Range] does outside its input bounds.
type Extrapolate int

const (
	// Extend keeps following the first or last segment.
	Extend Extrapolate = iota
	// Clamp pins the output to the first or last output value.
	Clamp
	// Identity returns the input unchanged.
	Identity
)

// Range maps a number through a piecewise-linear curve: Input[i] maps to
// Output[i] and values in between are interpolated, optionally eased.
type Range struct {
	Input       []float64
	Output      []float64
	Extrapolate Extrapolate
	Easing      Easing
}

// Validate checks that the range has matching, ascending bounds.
func (r Range) Validate() error {
	const op = "animation.Range.Validate"
	if len(r.Input) < 2 {
		return errors.Config(op, "need at least 2 input values, got %d", len(r.Input))
	}
	if len(r.Input) != len(r.Output) {
		return errors.Config(op, "input has %d values, output has %d", len(r.Input), len(r.Output))
	}
	for i := 1; i < len(r.Input); i++ {
		if !(r.Input[i] > r.Input[i-1]) {
			return errors.Config(op, "input must be strictly ascending at index %d", i)
		}
	}
	return nil
}

// At maps x through the range. An invalid range returns x.
func (r Range) At(x float64) float64 {
	n := len(r.Input)
	if n < 2 || n != len(r.Output) {
		return x
	}
	if x < r.Input[0] || x > r.Input[n-1] {
		switch r.Extrapolate {
		case Clamp:
			if x < r.Input[0] {
				return r.Output[0]
			}
			return r.Output[n-1]
		case Identity:
			return x
		}
	}

	i := 1
	for i < n-1 && x > r.Input[i] {
		i++
	}
	in0, in1 := r.Input[i-1], r.Input[i]
	t := (x - in0) / (in1 - in0)
	if r.Easing != nil && t >= 0 && t <= 1 {
		t = r.Easing(t)
	}
	return Lerp(r.Output[i-1], r.Output[i], t)
}

// Derived computes a value from one or more animated keys.
type Derived[T any] struct {
	keys []string
	fn   func(args ...float64) T
}

// To derives a value from the given keys. fn receives the key values in
// the order the keys are listed; missing keys read as zero.
func To[T any](fn func(args ...float64) T, keys ...string) Derived[T] {
	return Derived[T]{keys: keys, fn: fn}
}

// Get evaluates the derived value against a committed mapping.
func (d Derived[T]) Get(v Values) T {
	args := make([]float64, len(d.keys))
	for i, key := range d.keys {
		args[i] = v[key]
	}
	return d.fn(args...)
}

// From evaluates the derived value against a controller's current values.
func (d Derived[T]) From(c *Controller) T {
	return d.Get(c.Values())
}

// LerpColor interpolates each channel of two colors.
func LerpColor(a, b color.RGBA, t float64) color.RGBA {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(255, Lerp(float64(x), float64(y), t)))))
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// ColorRange returns a tween between two colors.
func ColorRange(from, to color.RGBA) Tween[color.RGBA] {
	return Tween[color.RGBA]{Begin: from, End: to, Lerp: LerpColor}
}

// ParseColor accepts an SVG color keyword ("tomato") or a hex color
// ("#f80", "#ff8800", "#ff880080").
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, errors.Config("animation.ParseColor", "unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, errors.Config("animation.ParseColor", "bad hex color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Config("animation.ParseColor", "bad hex color %q: %v", s, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// FormatColor renders c as "#rrggbbaa".
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
