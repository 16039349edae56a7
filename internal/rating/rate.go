package rating

import "math"

// Outcome of a single game from side A's perspective.
type Outcome int

const (
	WinA Outcome = iota
	Draw
	WinB
)

// WinDraw returns the probability that side A beats side B in a single
// game, and the probability of a draw, from the current ratings. Each
// side's strength is the sum of its ratings, so a side may be a single
// team rating or six player ratings.
//
// With delta = sum(muA) - sum(muB) and denom covering both sides'
// uncertainty plus performance variance:
//
//	p_win      = CDF((delta - margin) / denom)
//	p_not_loss = CDF((delta + margin) / denom)
//	p_draw     = p_not_loss - p_win
func (e *Env) WinDraw(sideA, sideB []Rating) (pWin, pDraw float64) {
	size := len(sideA) + len(sideB)

	var delta, sumSigma2 float64
	for _, r := range sideA {
		delta += r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	for _, r := range sideB {
		delta -= r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}

	margin := e.DrawMargin(size)
	denom := math.Sqrt(float64(size)*e.Beta*e.Beta + sumSigma2)

	pWin = e.norm.CDF((delta - margin) / denom)
	pNotLoss := e.norm.CDF((delta + margin) / denom)
	return pWin, pNotLoss - pWin
}

// Rate computes the posterior ratings of both sides after one game.
// The update is the closed-form two-team rule: each rating's mean moves
// toward the observed result proportionally to its share of the total
// uncertainty, and its variance shrinks by the matching w factor. Tau is
// added to every variance first, so ratings never freeze entirely.
func (e *Env) Rate(sideA, sideB []Rating, outcome Outcome) (newA, newB []Rating) {
	if outcome == WinB {
		newB, newA = e.Rate(sideB, sideA, WinA)
		return newA, newB
	}

	n := len(sideA) + len(sideB)
	tau2 := e.Tau * e.Tau

	var sumMuA, sumMuB, sumVar float64
	for _, r := range sideA {
		sumMuA += r.Mu
		sumVar += r.Sigma*r.Sigma + tau2
	}
	for _, r := range sideB {
		sumMuB += r.Mu
		sumVar += r.Sigma*r.Sigma + tau2
	}

	c := math.Sqrt(sumVar + float64(n)*e.Beta*e.Beta)
	t := (sumMuA - sumMuB) / c
	eps := e.DrawMargin(n) / c

	var v, w float64
	if outcome == Draw {
		v = e.vWithin(t, eps)
		w = e.wWithin(t, eps)
	} else {
		v = e.vExceeds(t, eps)
		w = e.wExceeds(t, eps)
	}

	newA = rateSide(sideA, c, v, w, tau2, +1)
	newB = rateSide(sideB, c, v, w, tau2, -1)
	return newA, newB
}

func rateSide(side []Rating, c, v, w, tau2 float64, sign float64) []Rating {
	out := make([]Rating, len(side))
	for i, r := range side {
		variance := r.Sigma*r.Sigma + tau2
		mu := r.Mu + sign*(variance/c)*v
		sigma2 := variance * (1.0 - (variance/(c*c))*w)
		if sigma2 < 0 {
			sigma2 = 0
		}
		out[i] = Rating{Mu: mu, Sigma: math.Sqrt(sigma2)}
	}
	return out
}
