package rating_services

import (
	"math"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

// DefaultEloK is the K-factor used when none is supplied at construction.
const DefaultEloK = 32.0

// EloAlgorithm implements the classic Elo update: deviation
// contracts slightly on every update as a minor confidence gain;
// volatility is left untouched since Elo has no volatility concept.
type EloAlgorithm struct {
	K float64
}

// NewEloAlgorithm builds an Elo RatingAlgorithm with the given K-factor.
// A non-positive k falls back to DefaultEloK.
func NewEloAlgorithm(k float64) rating_ports.RatingAlgorithm {
	if k <= 0 {
		k = DefaultEloK
	}
	return &EloAlgorithm{K: k}
}

func (e *EloAlgorithm) Name() string {
	return "elo"
}

// expected returns the probability a scores a win against b, per the
// standard Elo logistic curve.
func expected(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

func (e *EloAlgorithm) NewRating(self, opponent rating_entities.Rating, outcome rating_entities.Outcome) rating_entities.Rating {
	exp := expected(self.Value, opponent.Value)
	newValue := self.Value + e.K*(outcome.Score()-exp)
	newDeviation := self.Deviation * 0.99
	return rating_entities.NewRating(newValue, newDeviation, self.Volatility)
}
