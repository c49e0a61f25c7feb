package scoring

import (
	"time"

	"github.com/emberdate/backend/internal/domain/model"
)

// neutralScore is used when a factor has no signal on either side, e.g. a
// missing location or an empty interest list.
const neutralScore = 0.5

// Factor is one named, weighted unit of the compatibility score. Compute
// must be pure and return a value in [0,1]; the scorer clamps defensively.
type Factor struct {
	Name    string
	Weight  float64
	Compute func(source, candidate model.Profile, at time.Time) float64
}

type Config struct {
	AgeWeight       float64 `yaml:"age_weight"`
	DistanceWeight  float64 `yaml:"distance_weight"`
	InterestsWeight float64 `yaml:"interests_weight"`
	ActivityWeight  float64 `yaml:"activity_weight"`

	// AgeDecayPerYear is the linear penalty per year between the candidate's
	// age and the preference window midpoint, applied outside the window.
	AgeDecayPerYear float64 `yaml:"age_decay_per_year"`
	// CloseDistanceKM scores a flat 1.0; beyond it the score falls linearly
	// to 0 at the source's max-distance preference.
	CloseDistanceKM float64 `yaml:"close_distance_km"`
	// DefaultMaxDistanceKM substitutes for sources without a max-distance
	// preference.
	DefaultMaxDistanceKM float64 `yaml:"default_max_distance_km"`
}

func (c Config) withDefaults() Config {
	if c.AgeWeight == 0 && c.DistanceWeight == 0 && c.InterestsWeight == 0 && c.ActivityWeight == 0 {
		c.AgeWeight = 0.25
		c.DistanceWeight = 0.25
		c.InterestsWeight = 0.3
		c.ActivityWeight = 0.2
	}
	if c.AgeDecayPerYear <= 0 {
		c.AgeDecayPerYear = 0.05
	}
	if c.CloseDistanceKM <= 0 {
		c.CloseDistanceKM = 5
	}
	if c.DefaultMaxDistanceKM <= c.CloseDistanceKM {
		c.DefaultMaxDistanceKM = 100
	}
	return c
}

type Scorer struct {
	factors []Factor
}

// NewScorer builds the built-in factor set from cfg. Extra factors extend
// the formula; factors with non-positive weight are carried but skipped at
// scoring time.
func NewScorer(cfg Config, extra ...Factor) *Scorer {
	cfg = cfg.withDefaults()

	factors := []Factor{
		{Name: "age", Weight: cfg.AgeWeight, Compute: ageFactor(cfg)},
		{Name: "distance", Weight: cfg.DistanceWeight, Compute: distanceFactor(cfg)},
		{Name: "interests", Weight: cfg.InterestsWeight, Compute: interestFactor},
		{Name: "activity", Weight: cfg.ActivityWeight, Compute: activityFactor},
	}
	factors = append(factors, extra...)

	return &Scorer{factors: factors}
}

// Score aggregates the weighted factors into a normalized [0,1] score with a
// per-factor breakdown. Factors with weight <= 0 are excluded from the
// numerator, the denominator and the breakdown. An empty or fully disabled
// factor set yields 0.0 and an empty breakdown.
func (s *Scorer) Score(source, candidate model.Profile, at time.Time) model.CompatibilityScore {
	breakdown := make(map[string]float64)

	var weighted, totalWeight float64
	for _, factor := range s.factors {
		if factor.Weight <= 0 || factor.Compute == nil {
			continue
		}
		value := clamp01(factor.Compute(source, candidate, at))
		breakdown[factor.Name] = value
		weighted += factor.Weight * value
		totalWeight += factor.Weight
	}

	final := 0.0
	if totalWeight > 0 {
		final = clamp01(weighted / totalWeight)
	}

	return model.CompatibilityScore{
		SourceUserID:    source.UserID,
		CandidateUserID: candidate.UserID,
		Final:           final,
		Breakdown:       breakdown,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
