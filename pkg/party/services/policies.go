package party_services

import (
	party_ports "github.com/M1tsumi/MatchForge-SDK/pkg/party/ports"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

func resolveRatings(memberIDs []string, lookup party_ports.RatingLookup) []rating_entities.Rating {
	ratings := make([]rating_entities.Rating, 0, len(memberIDs))
	for _, id := range memberIDs {
		if r, ok := lookup(id); ok {
			ratings = append(ratings, r)
			continue
		}
		ratings = append(ratings, rating_entities.Default())
	}
	return ratings
}

// AveragePolicy computes the mean of member ratings and deviations,
// fixing volatility at the default.
type AveragePolicy struct{}

func NewAveragePolicy() party_ports.PartyRatingPolicy {
	return &AveragePolicy{}
}

func (p *AveragePolicy) Name() string { return "average" }

func (p *AveragePolicy) Aggregate(memberIDs []string, lookup party_ports.RatingLookup) rating_entities.Rating {
	ratings := resolveRatings(memberIDs, lookup)
	if len(ratings) == 0 {
		return rating_entities.Default()
	}

	var sumValue, sumDeviation float64
	for _, r := range ratings {
		sumValue += r.Value
		sumDeviation += r.Deviation
	}
	n := float64(len(ratings))

	return rating_entities.NewRating(sumValue/n, sumDeviation/n, rating_entities.DefaultVolatility)
}

// MaxPolicy takes the highest rater's full triple as the party's rating.
type MaxPolicy struct{}

func NewMaxPolicy() party_ports.PartyRatingPolicy {
	return &MaxPolicy{}
}

func (p *MaxPolicy) Name() string { return "max" }

func (p *MaxPolicy) Aggregate(memberIDs []string, lookup party_ports.RatingLookup) rating_entities.Rating {
	ratings := resolveRatings(memberIDs, lookup)
	if len(ratings) == 0 {
		return rating_entities.Default()
	}

	best := ratings[0]
	for _, r := range ratings[1:] {
		if r.Value > best.Value {
			best = r
		}
	}
	return best
}

// WeightedWithPenaltyPolicy averages member ratings, then adds a
// penalty proportional to the gap between the party's strongest and
// weakest member — a wide-skill party is harder to match fairly.
type WeightedWithPenaltyPolicy struct {
	GapPenalty float64
}

func NewWeightedWithPenaltyPolicy(gapPenalty float64) party_ports.PartyRatingPolicy {
	return &WeightedWithPenaltyPolicy{GapPenalty: gapPenalty}
}

func (p *WeightedWithPenaltyPolicy) Name() string { return "weighted-with-penalty" }

func (p *WeightedWithPenaltyPolicy) Aggregate(memberIDs []string, lookup party_ports.RatingLookup) rating_entities.Rating {
	ratings := resolveRatings(memberIDs, lookup)
	if len(ratings) == 0 {
		return rating_entities.Default()
	}

	var sumValue float64
	minValue, maxValue := ratings[0].Value, ratings[0].Value
	for _, r := range ratings {
		sumValue += r.Value
		if r.Value < minValue {
			minValue = r.Value
		}
		if r.Value > maxValue {
			maxValue = r.Value
		}
	}

	avg := sumValue / float64(len(ratings))
	gap := maxValue - minValue
	value := avg + gap*p.GapPenalty

	return rating_entities.NewRating(value, 200, rating_entities.DefaultVolatility)
}
