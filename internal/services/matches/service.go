package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
)

const defaultListLimit = 100

var (
	ErrValidation    = errors.New("invalid match request")
	ErrMatchNotFound = errors.New("match not found")
)

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchRecord, error)
	EndByPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (bool, error)
}

type FeedInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

// MatchItem is a match seen from one participant's side.
type MatchItem struct {
	MatchID       int64
	PartnerUserID int64
	MatchedAt     time.Time
}

type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Service struct {
	runTx       TxRunner
	matchStore  MatchStore
	invalidator FeedInvalidator
	logger      *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	MatchStore  MatchStore
	Invalidator FeedInvalidator
	Logger      *zap.Logger
	// RunTx overrides the pool-backed transaction runner.
	RunTx TxRunner
}

func NewService(deps Dependencies) *Service {
	runTx := deps.RunTx
	if runTx == nil {
		pool := deps.Pool
		runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		}
	}

	return &Service{
		runTx:       runTx,
		matchStore:  deps.MatchStore,
		invalidator: deps.Invalidator,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// List returns the user's active matches, newest first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	records, err := s.matchStore.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(records))
	for _, rec := range records {
		partner := rec.UserHighID
		if rec.UserHighID == userID {
			partner = rec.UserLowID
		}
		items = append(items, MatchItem{
			MatchID:       rec.ID,
			PartnerUserID: partner,
			MatchedAt:     rec.MatchedAt,
		})
	}

	return items, nil
}

// Unmatch ends the active match between the user and the partner. The pair's
// swipes stay on file, so neither side reappears in the other's feed.
func (s *Service) Unmatch(ctx context.Context, userID, partnerUserID int64) error {
	if userID <= 0 || partnerUserID <= 0 || userID == partnerUserID {
		return ErrValidation
	}
	if s.runTx == nil || s.matchStore == nil {
		return fmt.Errorf("match dependencies are not configured")
	}

	now := s.now().UTC()

	ended := false
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ok, err := s.matchStore.EndByPair(txCtx, tx, userID, partnerUserID, now)
		if err != nil {
			return err
		}
		ended = ok
		return nil
	}); err != nil {
		return err
	}
	if !ended {
		return ErrMatchNotFound
	}

	s.invalidateFeed(ctx, userID)
	s.invalidateFeed(ctx, partnerUserID)

	return nil
}

func (s *Service) invalidateFeed(ctx context.Context, userID int64) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateUser(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("invalidate feed after unmatch",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
