package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
	authsvc "github.com/emberdate/backend/internal/services/auth"
	swipesvc "github.com/emberdate/backend/internal/services/swipes"
)

func testIdentityContext(userID int64) context.Context {
	return authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-test",
		Role:   "user",
	})
}

func passthroughTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

// swipeStoresStub backs both store interfaces with maps guarded by a mutex,
// enforcing the same pair uniqueness the SQL constraints do.
type swipeStoresStub struct {
	mu      sync.Mutex
	swipes  map[[2]int64]pgrepo.SwipeRecord
	matches map[[2]int64]pgrepo.MatchRecord
	nextID  int64
}

func newSwipeStoresStub() *swipeStoresStub {
	return &swipeStoresStub{
		swipes:  make(map[[2]int64]pgrepo.SwipeRecord),
		matches: make(map[[2]int64]pgrepo.MatchRecord),
	}
}

func (s *swipeStoresStub) Create(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (pgrepo.SwipeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{actorUserID, targetUserID}
	if _, ok := s.swipes[key]; ok {
		return pgrepo.SwipeRecord{}, pgrepo.ErrDuplicateSwipe
	}

	s.nextID++
	rec := pgrepo.SwipeRecord{
		ID:           s.nextID,
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Action:       action,
		CreatedAt:    now,
	}
	s.swipes[key] = rec
	return rec, nil
}

func (s *swipeStoresStub) HasPositive(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.swipes[[2]int64{actorUserID, targetUserID}]
	return ok && (rec.Action == "LIKE" || rec.Action == "SUPER_LIKE"), nil
}

func (s *swipeStoresStub) HasSwiped(_ context.Context, actorUserID, targetUserID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.swipes[[2]int64{actorUserID, targetUserID}]
	return ok, nil
}

func (s *swipeStoresStub) ListTargetIDs(_ context.Context, actorUserID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for key := range s.swipes {
		if key[0] == actorUserID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (s *swipeStoresStub) CreateForPair(_ context.Context, _ pgx.Tx, userID, targetID int64, now time.Time) (pgrepo.MatchRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	low, high := userID, targetID
	if low > high {
		low, high = high, low
	}
	key := [2]int64{low, high}
	if existing, ok := s.matches[key]; ok {
		return existing, false, nil
	}

	s.nextID++
	rec := pgrepo.MatchRecord{ID: s.nextID, UserLowID: low, UserHighID: high, MatchedAt: now}
	s.matches[key] = rec
	return rec, true, nil
}

func (s *swipeStoresStub) ListPartnerIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for key := range s.matches {
		switch userID {
		case key[0]:
			ids = append(ids, key[1])
		case key[1]:
			ids = append(ids, key[0])
		}
	}
	return ids, nil
}

func newSwipeTestHandler() (*SwipeHandler, *swipeStoresStub) {
	stores := newSwipeStoresStub()
	svc := swipesvc.NewService(swipesvc.Dependencies{
		RunTx:      passthroughTx,
		SwipeStore: stores,
		MatchStore: stores,
	}, swipesvc.Config{})
	return NewSwipeHandler(svc), stores
}

func performSwipeRequest(t *testing.T, h *SwipeHandler, actorID, targetID int64, action string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"target_id": targetID,
		"action":    action,
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", bytes.NewReader(body))
	req = req.WithContext(testIdentityContext(actorID))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestSwipeHandlerRequiresAuth(t *testing.T) {
	h, _ := newSwipeTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestSwipeHandlerRejectsInvalidBody(t *testing.T) {
	h, _ := newSwipeTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", bytes.NewReader([]byte(`{"target_id":`)))
	req = req.WithContext(testIdentityContext(1))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSwipeHandlerCreatedWithoutMatch(t *testing.T) {
	h, _ := newSwipeTestHandler()

	rec := performSwipeRequest(t, h, 1, 2, "LIKE")
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusCreated)
	}

	var payload struct {
		OK           bool `json:"ok"`
		MatchCreated bool `json:"match_created"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK || payload.MatchCreated {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSwipeHandlerReturnsMatchOnReciprocalLike(t *testing.T) {
	h, _ := newSwipeTestHandler()

	if rec := performSwipeRequest(t, h, 2, 1, "LIKE"); rec.Code != http.StatusCreated {
		t.Fatalf("setup swipe failed with status %d", rec.Code)
	}

	rec := performSwipeRequest(t, h, 1, 2, "LIKE")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		MatchCreated bool `json:"match_created"`
		Match        *struct {
			MatchID       int64 `json:"match_id"`
			PartnerUserID int64 `json:"partner_user_id"`
		} `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.MatchCreated || payload.Match == nil {
		t.Fatalf("expected match payload, got %s", rec.Body.String())
	}
	if payload.Match.PartnerUserID != 2 {
		t.Fatalf("unexpected partner: %d", payload.Match.PartnerUserID)
	}
}

func TestSwipeHandlerConflictOnDuplicate(t *testing.T) {
	h, _ := newSwipeTestHandler()

	if rec := performSwipeRequest(t, h, 1, 2, "PASS"); rec.Code != http.StatusCreated {
		t.Fatalf("setup swipe failed with status %d", rec.Code)
	}

	rec := performSwipeRequest(t, h, 1, 2, "LIKE")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusConflict)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "DUPLICATE_SWIPE" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestSwipeHandlerRejectsSelfSwipe(t *testing.T) {
	h, _ := newSwipeTestHandler()

	rec := performSwipeRequest(t, h, 1, 1, "LIKE")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
