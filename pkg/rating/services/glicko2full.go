package rating_services

import (
	"math"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

const (
	glicko2ScaleFactor = 173.7178 // 400/ln(10)
	glicko2Tau         = 0.5      // system constant constraining volatility change
	glicko2Epsilon     = 0.000001
)

// Glicko2FullAlgorithm implements the reference Glicko-2 algorithm with
// the tau-constrained volatility update (the Illinois root-finding
// method), offered alongside the simplified Glicko2Algorithm for
// embedders that want parity with the published system.
type Glicko2FullAlgorithm struct{}

func NewGlicko2FullAlgorithm() rating_ports.RatingAlgorithm {
	return &Glicko2FullAlgorithm{}
}

func (g *Glicko2FullAlgorithm) Name() string {
	return "glicko2-full"
}

func (g *Glicko2FullAlgorithm) NewRating(self, opponent rating_entities.Rating, outcome rating_entities.Outcome) rating_entities.Rating {
	mu := (self.Value - rating_entities.DefaultRating) / glicko2ScaleFactor
	phi := self.Deviation / glicko2ScaleFactor
	sigma := self.Volatility
	if sigma <= 0 {
		sigma = rating_entities.DefaultVolatility
	}

	muJ := (opponent.Value - rating_entities.DefaultRating) / glicko2ScaleFactor
	phiJ := opponent.Deviation / glicko2ScaleFactor

	gPhiJ := gFunc(phiJ)
	e := 1.0 / (1.0 + math.Exp(-gPhiJ*(mu-muJ)))
	clampedE := math.Max(1e-10, math.Min(1-1e-10, e))

	v := 1.0 / (gPhiJ * gPhiJ * clampedE * (1 - clampedE))
	delta := v * gPhiJ * (outcome.Score() - clampedE)

	newSigma := g.newVolatility(delta, phi, v, sigma)

	phiStar := math.Sqrt(phi*phi + newSigma*newSigma)
	newPhi := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	newMu := mu + newPhi*newPhi*gPhiJ*(outcome.Score()-clampedE)

	newValue := newMu*glicko2ScaleFactor + rating_entities.DefaultRating
	newDeviation := newPhi * glicko2ScaleFactor

	return rating_entities.NewRating(newValue, newDeviation, newSigma)
}

// newVolatility finds sigma' via the Illinois algorithm, solving f(x)=0.
func (g *Glicko2FullAlgorithm) newVolatility(delta, phi, v, sigma float64) float64 {
	a := math.Log(sigma * sigma)

	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		denom := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/denom - (x-a)/(glicko2Tau*glicko2Tau)
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*glicko2Tau) < 0 {
			k++
		}
		B = a - k*glicko2Tau
	}

	fA, fB := f(A), f(B)
	for math.Abs(B-A) > glicko2Epsilon {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)

		if fC*fB < 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}

	return math.Exp(A / 2)
}
