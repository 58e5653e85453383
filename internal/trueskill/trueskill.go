// Package trueskill implements the two-team TrueSkill skill update for
// win/loss outcomes. Ratings are a (mu, sigma) pair: mu is the skill
// estimate, sigma the uncertainty around it.
package trueskill

import "math"

// Rating is a skill estimate for a single rated entity (player or team).
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Updater performs TrueSkill updates with a fixed set of environment
// constants. It is stateless: identical inputs produce identical outputs.
type Updater struct {
	initialMu    float64
	initialSigma float64
	beta         float64
	tau          float64
}

// New creates an Updater with the conventional derived constants:
// beta (performance variance) is half the initial sigma and tau
// (skill dynamics) is a hundredth of it.
func New(initialMu, initialSigma float64) *Updater {
	return &Updater{
		initialMu:    initialMu,
		initialSigma: initialSigma,
		beta:         initialSigma / 2,
		tau:          initialSigma / 100,
	}
}

// NewRating returns the prior assigned to a never-rated entity.
func (u *Updater) NewRating() Rating {
	return Rating{Mu: u.initialMu, Sigma: u.initialSigma}
}

// Rate computes updated ratings for a decided game between two teams.
// The first slice holds the winning side. Inputs are not mutated.
// Both sides must be non-empty; team sizes may differ.
func (u *Updater) Rate(winners, losers []Rating) (newWinners, newLosers []Rating) {
	n := len(winners) + len(losers)

	// Total performance variance of the game. Each player carries the
	// dynamics term tau^2 so sigma can never collapse to zero.
	c2 := float64(n) * u.beta * u.beta
	for _, r := range winners {
		c2 += r.Sigma*r.Sigma + u.tau*u.tau
	}
	for _, r := range losers {
		c2 += r.Sigma*r.Sigma + u.tau*u.tau
	}
	c := math.Sqrt(c2)

	var muW, muL float64
	for _, r := range winners {
		muW += r.Mu
	}
	for _, r := range losers {
		muL += r.Mu
	}

	t := (muW - muL) / c
	v := vWin(t)
	w := v * (v + t)

	newWinners = make([]Rating, len(winners))
	for i, r := range winners {
		newWinners[i] = u.apply(r, c, c2, v, w, +1)
	}
	newLosers = make([]Rating, len(losers))
	for i, r := range losers {
		newLosers[i] = u.apply(r, c, c2, v, w, -1)
	}
	return newWinners, newLosers
}

func (u *Updater) apply(r Rating, c, c2, v, w, sign float64) Rating {
	sigma2 := r.Sigma*r.Sigma + u.tau*u.tau
	return Rating{
		Mu:    r.Mu + sign*(sigma2/c)*v,
		Sigma: math.Sqrt(sigma2 * (1 - (sigma2/c2)*w)),
	}
}

// vWin is the additive correction for a win, pdf(t)/cdf(t). For very
// negative t the cdf underflows; fall back to the asymptote -t.
func vWin(t float64) float64 {
	denom := normCDF(t)
	if denom < 1e-300 {
		return -t
	}
	return normPDF(t) / denom
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
