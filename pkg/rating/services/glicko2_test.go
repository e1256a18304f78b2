package rating_services_test

import (
	"testing"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_services "github.com/M1tsumi/MatchForge-SDK/pkg/rating/services"
	"github.com/stretchr/testify/assert"
)

func TestGlicko2Algorithm_EqualRatingsDrawIsStable(t *testing.T) {
	algo := rating_services.NewGlicko2Algorithm()
	a := rating_entities.NewRating(1500, 200, 0.06)
	b := rating_entities.NewRating(1500, 200, 0.06)

	updated := algo.NewRating(a, b, rating_entities.Draw)

	assert.InDelta(t, 1500.0, updated.Value, 0.01)
	assert.Greater(t, updated.Deviation, a.Deviation)
}

func TestGlicko2Algorithm_WinIncreasesRatingAgainstStrongerOpponent(t *testing.T) {
	algo := rating_services.NewGlicko2Algorithm()
	a := rating_entities.NewRating(1500, 100, 0.06)
	b := rating_entities.NewRating(1700, 100, 0.06)

	updated := algo.NewRating(a, b, rating_entities.Win)

	assert.Greater(t, updated.Value, a.Value)
}

func TestGlicko2Algorithm_DeviationNeverExceedsMax(t *testing.T) {
	algo := rating_services.NewGlicko2Algorithm()
	a := rating_entities.NewRating(1500, 349, 0.06)
	b := rating_entities.NewRating(1500, 349, 0.06)

	updated := algo.NewRating(a, b, rating_entities.Draw)

	assert.LessOrEqual(t, updated.Deviation, 350.0)
}

func TestGlicko2FullAlgorithm_UpdatesVolatility(t *testing.T) {
	algo := rating_services.NewGlicko2FullAlgorithm()
	a := rating_entities.NewRating(1500, 200, 0.06)
	b := rating_entities.NewRating(1400, 30, 0.06)

	updated := algo.NewRating(a, b, rating_entities.Loss)

	assert.Less(t, updated.Value, a.Value)
	assert.Greater(t, updated.Volatility, 0.0)
	assert.Equal(t, "glicko2-full", algo.Name())
}
