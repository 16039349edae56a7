package rating

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Params are the scale parameters of a rating environment.
type Params struct {
	// Mu is the prior mean of an unseen entity.
	Mu float64
	// Sigma is the prior standard deviation of an unseen entity.
	Sigma float64
	// Beta is the per-game performance standard deviation.
	Beta float64
	// Tau is the rating volatility added before every update.
	Tau float64
	// DrawProbability is the chance of a draw between even opponents.
	// Zero for environments where games cannot end level.
	DrawProbability float64
}

// DefaultParams returns the calibrated scale used for league forecasts.
func DefaultParams() Params {
	return Params{
		Mu:              2500.0,
		Sigma:           2500.0 / 3.0,
		Beta:            2500.0 / 2.0,
		Tau:             25.0 / 3.0,
		DrawProbability: 0.06,
	}
}

// Env is a rating environment. Two are normally kept side by side: one
// with a non-zero draw probability for drawable games and one without,
// since the draw-margin term differs between them.
type Env struct {
	Params
	norm distuv.Normal
}

// NewEnv builds an environment from scale parameters.
func NewEnv(p Params) *Env {
	return &Env{
		Params: p,
		norm:   distuv.Normal{Mu: 0, Sigma: 1},
	}
}

// Undrawable returns a copy of the environment with the draw probability
// forced to zero.
func (e *Env) Undrawable() *Env {
	p := e.Params
	p.DrawProbability = 0.0
	return NewEnv(p)
}

// NewRating returns the environment's prior rating.
func (e *Env) NewRating() Rating {
	return Rating{Mu: e.Mu, Sigma: e.Sigma}
}

// DrawMargin inverts the configured draw probability into the margin
// within which a game between n total players ends level:
//
//	p_draw = 2*CDF(margin / (sqrt(n)*beta)) - 1
func (e *Env) DrawMargin(n int) float64 {
	if e.DrawProbability <= 0 {
		return 0.0
	}
	return e.norm.Quantile((e.DrawProbability+1.0)/2.0) * math.Sqrt(float64(n)) * e.Beta
}

// CDF is the standard normal CDF of the environment.
func (e *Env) CDF(x float64) float64 {
	return e.norm.CDF(x)
}

// PDF is the standard normal density of the environment.
func (e *Env) PDF(x float64) float64 {
	return e.norm.Prob(x)
}
