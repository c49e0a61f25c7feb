package scoring

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/emberdate/backend/internal/domain/model"
)

var scoreTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func sourceProfile() model.Profile {
	return model.Profile{
		UserID:        1,
		Age:           intPtr(28),
		AgeMin:        25,
		AgeMax:        35,
		MaxDistanceKM: 50,
		LastLat:       floatPtr(53.9006),
		LastLon:       floatPtr(27.5590),
		Interests:     []string{"hiking", "jazz", "cooking", "film"},
		LastActiveAt:  timePtr(scoreTime.Add(-2 * time.Hour)),
		IsActive:      true,
	}
}

func candidateProfile() model.Profile {
	return model.Profile{
		UserID:       2,
		Age:          intPtr(30),
		LastLat:      floatPtr(53.9106),
		LastLon:      floatPtr(27.5690),
		Interests:    []string{"hiking", "jazz"},
		LastActiveAt: timePtr(scoreTime.Add(-3 * time.Hour)),
		IsActive:     true,
	}
}

func TestScoreDeterministicForFixedInputs(t *testing.T) {
	scorer := NewScorer(Config{})
	source := sourceProfile()
	candidate := candidateProfile()

	first := scorer.Score(source, candidate, scoreTime)
	second := scorer.Score(source, candidate, scoreTime)

	if first.Final != second.Final {
		t.Fatalf("final score not deterministic: %v vs %v", first.Final, second.Final)
	}
	if !reflect.DeepEqual(first.Breakdown, second.Breakdown) {
		t.Fatalf("breakdown not deterministic: %v vs %v", first.Breakdown, second.Breakdown)
	}
}

func TestScoreStaysWithinBounds(t *testing.T) {
	configs := []Config{
		{},
		{AgeWeight: 1, DistanceWeight: 2, InterestsWeight: 3, ActivityWeight: 4},
		{AgeWeight: 0.01, DistanceWeight: -5, InterestsWeight: 100, ActivityWeight: 0},
	}

	for _, cfg := range configs {
		scorer := NewScorer(cfg)
		result := scorer.Score(sourceProfile(), candidateProfile(), scoreTime)
		if result.Final < 0 || result.Final > 1 {
			t.Fatalf("final score out of bounds for cfg %+v: %f", cfg, result.Final)
		}
		for name, value := range result.Breakdown {
			if value < 0 || value > 1 {
				t.Fatalf("factor %q out of bounds: %f", name, value)
			}
		}
	}
}

func TestAllFactorsDisabledYieldsZero(t *testing.T) {
	scorer := NewScorer(Config{
		AgeWeight:       -1,
		DistanceWeight:  -1,
		InterestsWeight: -1,
		ActivityWeight:  -1,
	})

	result := scorer.Score(sourceProfile(), candidateProfile(), scoreTime)
	if result.Final != 0.0 {
		t.Fatalf("expected 0.0 for disabled factor set, got %f", result.Final)
	}
	if len(result.Breakdown) != 0 {
		t.Fatalf("expected empty breakdown, got %v", result.Breakdown)
	}
}

func TestDisabledFactorExcludedFromBreakdown(t *testing.T) {
	scorer := NewScorer(Config{
		AgeWeight:       1,
		DistanceWeight:  -1,
		InterestsWeight: 1,
		ActivityWeight:  1,
	})

	result := scorer.Score(sourceProfile(), candidateProfile(), scoreTime)
	if _, ok := result.Breakdown["distance"]; ok {
		t.Fatalf("disabled distance factor should not appear in breakdown: %v", result.Breakdown)
	}
	if _, ok := result.Breakdown["age"]; !ok {
		t.Fatalf("expected age factor in breakdown: %v", result.Breakdown)
	}
}

func TestAgeFactorInsideWindowIsPerfect(t *testing.T) {
	compute := ageFactor(Config{}.withDefaults())
	source := sourceProfile()
	candidate := candidateProfile()

	if got := compute(source, candidate, scoreTime); got != 1.0 {
		t.Fatalf("expected 1.0 inside window, got %f", got)
	}
}

func TestAgeFactorDecaysOutsideWindow(t *testing.T) {
	cfg := Config{}.withDefaults()
	compute := ageFactor(cfg)
	source := sourceProfile() // window [25,35], midpoint 30

	near := candidateProfile()
	near.Age = intPtr(38)
	far := candidateProfile()
	far.Age = intPtr(45)

	nearScore := compute(source, near, scoreTime)
	farScore := compute(source, far, scoreTime)
	if nearScore <= farScore {
		t.Fatalf("expected decay with distance from midpoint: near %f far %f", nearScore, farScore)
	}

	// 45 is 15 years from the midpoint: 1 - 0.05*15 = 0.25.
	if math.Abs(farScore-0.25) > 1e-9 {
		t.Fatalf("unexpected decayed score: got %f want 0.25", farScore)
	}
}

func TestAgeFactorNeutralWhenAgeMissing(t *testing.T) {
	compute := ageFactor(Config{}.withDefaults())
	candidate := candidateProfile()
	candidate.Age = nil

	if got := compute(sourceProfile(), candidate, scoreTime); got != neutralScore {
		t.Fatalf("expected neutral score for missing age, got %f", got)
	}
}

func TestDistanceFactorNeutralWithoutLocation(t *testing.T) {
	compute := distanceFactor(Config{}.withDefaults())
	candidate := candidateProfile()
	candidate.LastLat = nil
	candidate.LastLon = nil

	if got := compute(sourceProfile(), candidate, scoreTime); got != neutralScore {
		t.Fatalf("expected neutral score for missing location, got %f", got)
	}
}

func TestDistanceFactorPerfectWhenClose(t *testing.T) {
	compute := distanceFactor(Config{}.withDefaults())
	// Candidate ~1.3 km away, well inside the close threshold.
	if got := compute(sourceProfile(), candidateProfile(), scoreTime); got != 1.0 {
		t.Fatalf("expected 1.0 within close threshold, got %f", got)
	}
}

func TestDistanceFactorZeroBeyondMaxPreference(t *testing.T) {
	compute := distanceFactor(Config{}.withDefaults())
	source := sourceProfile() // max distance 50 km
	candidate := candidateProfile()
	candidate.LastLat = floatPtr(52.0976) // Brest, ~327 km away
	candidate.LastLon = floatPtr(23.7341)

	if got := compute(source, candidate, scoreTime); got != 0.0 {
		t.Fatalf("expected 0.0 beyond max distance, got %f", got)
	}
}

func TestInterestFactorJaccard(t *testing.T) {
	// 2 shared out of 4 unique -> 0.5.
	got := interestFactor(sourceProfile(), model.Profile{
		Interests: []string{"Hiking", "JAZZ"},
	}, scoreTime)
	if got != 0.5 {
		t.Fatalf("unexpected jaccard score: got %f want 0.5", got)
	}
}

func TestInterestFactorNeutralWhenEitherSideEmpty(t *testing.T) {
	got := interestFactor(sourceProfile(), model.Profile{}, scoreTime)
	if got != neutralScore {
		t.Fatalf("expected neutral score for empty interests, got %f", got)
	}
}

func TestActivityFactorSteps(t *testing.T) {
	cases := []struct {
		lastActive *time.Time
		want       float64
	}{
		{timePtr(scoreTime.Add(-2 * time.Hour)), 1.0},
		{timePtr(scoreTime.Add(-2 * 24 * time.Hour)), 0.8},
		{timePtr(scoreTime.Add(-5 * 24 * time.Hour)), 0.6},
		{timePtr(scoreTime.Add(-10 * 24 * time.Hour)), 0.4},
		{timePtr(scoreTime.Add(-20 * 24 * time.Hour)), 0.2},
		{timePtr(scoreTime.Add(-90 * 24 * time.Hour)), 0.0},
		{nil, 0.0},
	}

	for _, tc := range cases {
		got := activityFactor(model.Profile{}, model.Profile{LastActiveAt: tc.lastActive}, scoreTime)
		if got != tc.want {
			t.Fatalf("unexpected activity score for %v: got %f want %f", tc.lastActive, got, tc.want)
		}
	}
}

func TestNearbyRecentCandidateOutranksDistantStaleOne(t *testing.T) {
	scorer := NewScorer(Config{})
	source := sourceProfile() // window [25,35], max distance 50 km

	strong := candidateProfile() // aged 30, ~1.3 km away, 2/4 shared interests, active today
	weak := candidateProfile()
	weak.UserID = 3
	weak.Age = intPtr(45)
	weak.LastLat = floatPtr(54.62) // ~80 km north
	weak.LastLon = floatPtr(27.5590)
	weak.LastActiveAt = timePtr(scoreTime.Add(-45 * 24 * time.Hour))

	strongScore := scorer.Score(source, strong, scoreTime)
	weakScore := scorer.Score(source, weak, scoreTime)
	if strongScore.Final <= weakScore.Final {
		t.Fatalf("expected strong candidate to outrank weak one: %f vs %f", strongScore.Final, weakScore.Final)
	}
}

func TestCustomFactorExtendsFormula(t *testing.T) {
	constant := func(v float64) func(model.Profile, model.Profile, time.Time) float64 {
		return func(model.Profile, model.Profile, time.Time) float64 { return v }
	}

	scorer := NewScorer(Config{
		AgeWeight:       -1,
		DistanceWeight:  -1,
		InterestsWeight: -1,
		ActivityWeight:  -1,
	}, Factor{Name: "boost", Weight: 2, Compute: constant(0.75)})

	result := scorer.Score(sourceProfile(), candidateProfile(), scoreTime)
	if result.Final != 0.75 {
		t.Fatalf("expected custom factor to drive the score: got %f", result.Final)
	}
	if got, ok := result.Breakdown["boost"]; !ok || got != 0.75 {
		t.Fatalf("expected boost factor in breakdown, got %v", result.Breakdown)
	}
}
