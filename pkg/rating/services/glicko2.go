package rating_services

import (
	"math"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

// Glicko2Algorithm implements a simplified Glicko-2 update:
// deviation-weighted expected score, with the rating and deviation
// recomputed from a single opposing rating/deviation pair. The
// tau-driven volatility solver (Step 5 of the published algorithm) is
// intentionally omitted — volatility passes through unchanged. Use
// Glicko2FullAlgorithm when full parity with the reference algorithm
// (including the volatility update) is required.
type Glicko2Algorithm struct{}

func NewGlicko2Algorithm() rating_ports.RatingAlgorithm {
	return &Glicko2Algorithm{}
}

func (g *Glicko2Algorithm) Name() string {
	return "glicko2"
}

// gFunc is g(phi) = 1/sqrt(1 + 3*phi^2/pi^2).
func gFunc(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

// eFunc is E(r, r0, phi0) = 1/(1+exp(-g(phi0)*(r-r0)/400)).
func eFunc(r, r0, phi0 float64) float64 {
	return 1.0 / (1.0 + math.Exp(-gFunc(phi0)*(r-r0)/400.0))
}

func (g *Glicko2Algorithm) NewRating(self, opponent rating_entities.Rating, outcome rating_entities.Outcome) rating_entities.Rating {
	gPhi := gFunc(opponent.Deviation)
	e := eFunc(self.Value, opponent.Value, opponent.Deviation)

	// Guard the degenerate e in {0,1} case (v would divide by zero) by
	// clamping e away from the extremes.
	clampedE := math.Max(1e-10, math.Min(1-1e-10, e))
	v := 1.0 / (gPhi * gPhi * clampedE * (1 - clampedE))
	delta := v * gPhi * (outcome.Score() - e)

	newValue := self.Value + delta
	newDeviation := math.Sqrt(self.Deviation*self.Deviation + v)

	return rating_entities.NewRating(newValue, newDeviation, self.Volatility)
}
