// Package party_ports defines the pluggable party-rating aggregation
// policy (C5).
package party_ports

import (
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// RatingLookup resolves a player's current Rating; unknown players
// should return the zero value and false, letting the policy decide
// how to treat a ratingless member.
type RatingLookup func(playerID string) (rating_entities.Rating, bool)

// PartyRatingPolicy aggregates member ratings into a single Rating
// representing the whole party for matchmaking purposes.
type PartyRatingPolicy interface {
	Name() string
	Aggregate(memberIDs []string, lookup RatingLookup) rating_entities.Rating
}
