package rating_services

import (
	"math"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

// LinearDecayPolicy reduces a rating linearly with inactivity, capped at
// MaxDecay, and grows deviation to reflect the resulting uncertainty.
type LinearDecayPolicy struct {
	PerDay   float64
	MaxDecay float64
}

func NewLinearDecayPolicy(perDay, maxDecay float64) rating_ports.DecayPolicy {
	return &LinearDecayPolicy{PerDay: perDay, MaxDecay: maxDecay}
}

func (p *LinearDecayPolicy) Decay(r rating_entities.Rating, daysInactive int) rating_entities.Rating {
	if daysInactive <= 0 {
		return r
	}

	decay := math.Min(p.PerDay*float64(daysInactive), p.MaxDecay)
	newValue := math.Max(0, r.Value-decay)
	newDeviation := math.Min(rating_entities.DefaultDeviation, r.Deviation+0.5*float64(daysInactive))

	return rating_entities.NewRating(newValue, newDeviation, r.Volatility)
}

// NoDecayPolicy is the identity decay transform.
type NoDecayPolicy struct{}

func NewNoDecayPolicy() rating_ports.DecayPolicy {
	return &NoDecayPolicy{}
}

func (p *NoDecayPolicy) Decay(r rating_entities.Rating, daysInactive int) rating_entities.Rating {
	return r
}
