package rating_services

import (
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

const softResetDeviation = 200.0

// SoftResetPolicy pulls a rating a fraction of the way toward a target,
// leaving volatility unchanged and tightening deviation to 200.
type SoftResetPolicy struct {
	Target  float64
	Percent float64
}

func NewSoftResetPolicy(target, percent float64) rating_ports.SeasonResetPolicy {
	return &SoftResetPolicy{Target: target, Percent: percent}
}

func (p *SoftResetPolicy) Reset(r rating_entities.Rating) rating_entities.Rating {
	newValue := r.Value + (p.Target-r.Value)*p.Percent
	return rating_entities.NewRating(newValue, softResetDeviation, r.Volatility)
}

// HardResetPolicy replaces a rating with a fixed default triple.
type HardResetPolicy struct {
	Value float64
}

func NewHardResetPolicy(value float64) rating_ports.SeasonResetPolicy {
	return &HardResetPolicy{Value: value}
}

func (p *HardResetPolicy) Reset(r rating_entities.Rating) rating_entities.Rating {
	return rating_entities.NewRating(p.Value, rating_entities.DefaultDeviation, rating_entities.DefaultVolatility)
}
