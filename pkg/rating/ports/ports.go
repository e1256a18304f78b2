// Package rating_ports defines the pluggable rating transforms (C2, C3):
// RatingAlgorithm computes a new rating from an outcome against a single
// opponent; DecayPolicy and SeasonResetPolicy apply time-based transforms.
// Both are injected at construction — no dynamic reconfiguration mid-run.
package rating_ports

import (
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// RatingAlgorithm is total: given valid inputs it always returns a new
// Rating. Callers are responsible for validating input ranges.
type RatingAlgorithm interface {
	// Name identifies the algorithm for logging/metrics labels.
	Name() string
	// NewRating computes self's new rating having played opponentRating
	// to the given outcome.
	NewRating(self, opponent rating_entities.Rating, outcome rating_entities.Outcome) rating_entities.Rating
}

// DecayPolicy applies an inactivity-based transform to a Rating.
type DecayPolicy interface {
	Decay(r rating_entities.Rating, daysInactive int) rating_entities.Rating
}

// SeasonResetPolicy applies a season-rollover transform to a Rating.
type SeasonResetPolicy interface {
	Reset(r rating_entities.Rating) rating_entities.Rating
}
