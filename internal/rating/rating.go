// Package rating implements the Gaussian skill-rating model used by the
// predictors: a (mean, uncertainty) rating per entity, the closed-form
// two-team posterior update, and the CDF-based win/draw probability
// formula with a draw margin derived from a configured draw probability.
package rating

// Rating is a skill estimate for a team or player: a Gaussian with mean
// Mu and standard deviation Sigma.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Conservative returns mu - 3*sigma, a pessimistic point estimate used
// for ranking under uncertainty.
func (r Rating) Conservative() float64 {
	return r.Mu - 3.0*r.Sigma
}
