package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/emberdate/backend/internal/domain/model"
	"github.com/emberdate/backend/internal/domain/rules"
)

// ageFactor scores 1.0 inside the source's preferred age window and decays
// linearly with the candidate's distance from the window midpoint outside of
// it. A source without a window accepts any age.
func ageFactor(cfg Config) func(source, candidate model.Profile, at time.Time) float64 {
	return func(source, candidate model.Profile, _ time.Time) float64 {
		if candidate.Age == nil {
			return neutralScore
		}

		ageMin, ageMax := source.AgeMin, source.AgeMax
		if ageMin <= 0 && ageMax <= 0 {
			return 1.0
		}
		if ageMin > ageMax && ageMax > 0 {
			ageMin, ageMax = ageMax, ageMin
		}

		age := *candidate.Age
		if (ageMin <= 0 || age >= ageMin) && (ageMax <= 0 || age <= ageMax) {
			return 1.0
		}

		midpoint := float64(ageMin+ageMax) / 2
		distance := math.Abs(float64(age) - midpoint)
		return clamp01(1.0 - cfg.AgeDecayPerYear*distance)
	}
}

// distanceFactor scores 1.0 within the close threshold, then falls linearly
// to 0 at the source's max-distance preference. Missing coordinates on
// either side are neutral.
func distanceFactor(cfg Config) func(source, candidate model.Profile, at time.Time) float64 {
	return func(source, candidate model.Profile, _ time.Time) float64 {
		if !source.HasLocation() || !candidate.HasLocation() {
			return neutralScore
		}

		distance := rules.HaversineKM(*source.LastLat, *source.LastLon, *candidate.LastLat, *candidate.LastLon)
		if distance <= cfg.CloseDistanceKM {
			return 1.0
		}

		maxDistance := float64(source.MaxDistanceKM)
		if maxDistance <= cfg.CloseDistanceKM {
			maxDistance = cfg.DefaultMaxDistanceKM
		}
		if distance >= maxDistance {
			return 0.0
		}

		return clamp01(1.0 - (distance-cfg.CloseDistanceKM)/(maxDistance-cfg.CloseDistanceKM))
	}
}

// interestFactor is the Jaccard ratio of shared to total unique interests,
// neutral when either side has none recorded.
func interestFactor(source, candidate model.Profile, _ time.Time) float64 {
	sourceSet := normalizeInterests(source.Interests)
	candidateSet := normalizeInterests(candidate.Interests)
	if len(sourceSet) == 0 || len(candidateSet) == 0 {
		return neutralScore
	}

	shared := 0
	union := len(sourceSet)
	for interest := range candidateSet {
		if sourceSet[interest] {
			shared++
			continue
		}
		union++
	}

	return float64(shared) / float64(union)
}

// activityFactor steps down with days since the candidate was last active.
func activityFactor(_, candidate model.Profile, at time.Time) float64 {
	if candidate.LastActiveAt == nil {
		return 0.0
	}

	days := at.Sub(candidate.LastActiveAt.UTC()).Hours() / 24
	switch {
	case days <= 1:
		return 1.0
	case days <= 3:
		return 0.8
	case days <= 7:
		return 0.6
	case days <= 14:
		return 0.4
	case days <= 30:
		return 0.2
	default:
		return 0.0
	}
}

func normalizeInterests(interests []string) map[string]bool {
	set := make(map[string]bool, len(interests))
	for _, interest := range interests {
		normalized := strings.ToLower(strings.TrimSpace(interest))
		if normalized == "" {
			continue
		}
		set[normalized] = true
	}
	return set
}
