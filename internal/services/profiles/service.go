package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/emberdate/backend/internal/domain/model"
	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
	QueryCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]pgrepo.ProfileRecord, error)
}

// Service adapts stored profile rows into the domain view the scoring and
// feed pipelines consume.
type Service struct {
	store ProfileStore
}

func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	rec, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}

	return toModel(rec), nil
}

// Candidates returns active profiles passing the viewer's hard gender and
// age constraints. The pool limit bounds how many rows the feed pipeline
// scores per request.
func (s *Service) Candidates(ctx context.Context, viewer model.Profile, poolLimit int) ([]model.Profile, error) {
	if s.store == nil {
		return nil, fmt.Errorf("profile store is nil")
	}

	records, err := s.store.QueryCandidates(ctx, pgrepo.CandidateQuery{
		ViewerUserID: viewer.UserID,
		ViewerGender: viewer.Gender,
		GenderFilter: viewer.LookingFor,
		AgeMin:       viewer.AgeMin,
		AgeMax:       viewer.AgeMax,
		Limit:        poolLimit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]model.Profile, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, toModel(rec))
	}

	return candidates, nil
}

func toModel(rec pgrepo.ProfileRecord) model.Profile {
	return model.Profile{
		UserID:        rec.UserID,
		DisplayName:   rec.DisplayName,
		Age:           rec.Age,
		Gender:        rec.Gender,
		LookingFor:    rec.LookingFor,
		Interests:     rec.Interests,
		LastLat:       rec.LastLat,
		LastLon:       rec.LastLon,
		AgeMin:        rec.AgeMin,
		AgeMax:        rec.AgeMax,
		MaxDistanceKM: rec.MaxDistanceKM,
		LastActiveAt:  rec.LastActiveAt,
		IsActive:      rec.IsActive,
	}
}
