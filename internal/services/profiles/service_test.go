package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/emberdate/backend/internal/domain/model"
	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
)

type profileStoreStub struct {
	records map[int64]pgrepo.ProfileRecord
	lastQ   pgrepo.CandidateQuery
}

func (s *profileStoreStub) GetProfile(_ context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	return rec, nil
}

func (s *profileStoreStub) QueryCandidates(_ context.Context, q pgrepo.CandidateQuery) ([]pgrepo.ProfileRecord, error) {
	s.lastQ = q
	var out []pgrepo.ProfileRecord
	for _, rec := range s.records {
		if rec.UserID != q.ViewerUserID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestGetMapsStoredRecord(t *testing.T) {
	age := 27
	store := &profileStoreStub{records: map[int64]pgrepo.ProfileRecord{
		1: {
			UserID:      1,
			DisplayName: "Alex",
			Age:         &age,
			Gender:      "female",
			LookingFor:  "male",
			Interests:   []string{"hiking", "jazz"},
			IsActive:    true,
		},
	}}
	svc := NewService(store)

	profile, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.DisplayName != "Alex" || profile.Age == nil || *profile.Age != 27 {
		t.Fatalf("mapping lost fields: %+v", profile)
	}
	if len(profile.Interests) != 2 {
		t.Fatalf("interests lost: %+v", profile.Interests)
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewService(&profileStoreStub{records: map[int64]pgrepo.ProfileRecord{}})

	if _, err := svc.Get(context.Background(), 7); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestCandidatesPushesViewerConstraints(t *testing.T) {
	store := &profileStoreStub{records: map[int64]pgrepo.ProfileRecord{
		1: {UserID: 1, Gender: "female", LookingFor: "male", IsActive: true},
		2: {UserID: 2, Gender: "male", LookingFor: "female", IsActive: true},
	}}
	svc := NewService(store)

	viewer := model.Profile{
		UserID:     1,
		Gender:     "female",
		LookingFor: "male",
		AgeMin:     25,
		AgeMax:     35,
	}
	candidates, err := svc.Candidates(context.Background(), viewer, 100)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].UserID != 2 {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}

	if store.lastQ.GenderFilter != "male" || store.lastQ.ViewerGender != "female" {
		t.Fatalf("gender constraints not pushed: %+v", store.lastQ)
	}
	if store.lastQ.AgeMin != 25 || store.lastQ.AgeMax != 35 {
		t.Fatalf("age constraints not pushed: %+v", store.lastQ)
	}
	if store.lastQ.Limit != 100 {
		t.Fatalf("pool limit not pushed: %+v", store.lastQ)
	}
}
