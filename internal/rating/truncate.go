package rating

import "math"

// Truncated-Gaussian correction functions. v moves the posterior mean,
// w shrinks its variance. The "exceeds" pair applies to decisive games,
// the "within" pair to draws, where the performance difference landed
// inside the draw margin. Inputs are already divided by c.

const truncationFloor = 2.222758749e-162

func (e *Env) vExceeds(t, eps float64) float64 {
	denom := e.norm.CDF(t - eps)
	if denom < truncationFloor {
		return -t + eps
	}
	return e.norm.Prob(t-eps) / denom
}

func (e *Env) wExceeds(t, eps float64) float64 {
	v := e.vExceeds(t, eps)
	return v * (v + t - eps)
}

func (e *Env) vWithin(t, eps float64) float64 {
	tAbs := math.Abs(t)
	denom := e.norm.CDF(eps-tAbs) - e.norm.CDF(-eps-tAbs)
	if denom < truncationFloor {
		if t < 0 {
			return -t - eps
		}
		return -t + eps
	}
	num := e.norm.Prob(-eps-tAbs) - e.norm.Prob(eps-tAbs)
	if t < 0 {
		return -num / denom
	}
	return num / denom
}

func (e *Env) wWithin(t, eps float64) float64 {
	tAbs := math.Abs(t)
	denom := e.norm.CDF(eps-tAbs) - e.norm.CDF(-eps-tAbs)
	if denom < truncationFloor {
		return 1.0
	}
	v := e.vWithin(t, eps)
	return v*v + ((eps-tAbs)*e.norm.Prob(eps-tAbs)+(eps+tAbs)*e.norm.Prob(eps+tAbs))/denom
}
