package animation

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Easing maps linear progress t in [0, 1] to eased progress. It shapes
// Duration-based configs and [Range] interpolation.
type Easing func(t float64) float64

// Linear returns linear progress (no easing).
func Linear(t float64) float64 {
	return t
}

// Standard cubic-bezier curves, equivalent to their CSS keywords.
var (
	Ease      = CubicBezier(0.25, 0.1, 0.25, 1.0)
	EaseIn    = CubicBezier(0.42, 0.0, 1.0, 1.0)
	EaseOut   = CubicBezier(0.0, 0.0, 0.58, 1.0)
	EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)
)

// Penner curves backed by gween's ease package.
var (
	EaseInQuad     = FromTween(ease.InQuad)
	EaseOutQuad    = FromTween(ease.OutQuad)
	EaseInOutQuad  = FromTween(ease.InOutQuad)
	EaseInCubic    = FromTween(ease.InCubic)
	EaseOutCubic   = FromTween(ease.OutCubic)
	EaseInOutCubic = FromTween(ease.InOutCubic)
	EaseOutExpo    = FromTween(ease.OutExpo)
	EaseOutBack    = FromTween(ease.OutBack)
	EaseOutElastic = FromTween(ease.OutElastic)
	EaseOutBounce  = FromTween(ease.OutBounce)
)

var easings = map[string]Easing{
	"linear":         Linear,
	"ease":           Ease,
	"easeIn":         EaseIn,
	"easeOut":        EaseOut,
	"easeInOut":      EaseInOut,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInOutQuad":  EaseInOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"easeOutExpo":    EaseOutExpo,
	"easeOutBack":    EaseOutBack,
	"easeOutElastic": EaseOutElastic,
	"easeOutBounce":  EaseOutBounce,
}

// EasingByName looks up a named easing, as used in preset files.
func EasingByName(name string) (Easing, bool) {
	e, ok := easings[name]
	return e, ok
}

// FromTween adapts a gween easing function to an Easing.
func FromTween(fn ease.TweenFunc) Easing {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// tweenFunc adapts e for gween.New. A nil Easing is linear.
func (e Easing) tweenFunc() ease.TweenFunc {
	if e == nil {
		return ease.Linear
	}
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(e(float64(t/d)))
	}
}

// CubicBezier returns an easing matching CSS cubic-bezier(x1, y1, x2, y2).
// The curve runs from (0,0) to (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		// Solve x(u) = t with Newton-Raphson, then bisection if the
		// derivative flattens out.
		u := t
		for range 8 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return bezier(y1, y2, clampUnit(u))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 16 {
			x := bezier(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) / 2
		}
		return bezier(y1, y2, u)
	}
}

func bezier(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
