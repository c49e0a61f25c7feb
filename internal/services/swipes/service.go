package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/emberdate/backend/internal/domain/enums"
	"github.com/emberdate/backend/internal/domain/model"
	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
)

const defaultMatchTopic = "match.created"

var (
	ErrInvalidSwipe      = errors.New("invalid swipe request")
	ErrUnsupportedAction = errors.New("unsupported swipe action")
	ErrDuplicateSwipe    = errors.New("swipe already recorded")
)

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (pgrepo.SwipeRecord, error)
	HasPositive(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
	HasSwiped(ctx context.Context, actorUserID, targetUserID int64) (bool, error)
	ListTargetIDs(ctx context.Context, actorUserID int64) ([]int64, error)
}

type MatchStore interface {
	CreateForPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (pgrepo.MatchRecord, bool, error)
	ListPartnerIDs(ctx context.Context, userID int64) ([]int64, error)
}

type EventSink interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type FeedInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

type Config struct {
	MatchTopic string
}

type Result struct {
	Swipe        model.Swipe
	MatchCreated bool
	Match        *model.Match
}

// MatchCreatedEvent is the payload announced to conversation-provisioning
// and notification collaborators.
type MatchCreatedEvent struct {
	MatchID    int64     `json:"match_id"`
	UserLowID  int64     `json:"user_low_id"`
	UserHighID int64     `json:"user_high_id"`
	MatchedAt  time.Time `json:"matched_at"`
}

// TxRunner abstracts pgrepo.WithTx so the detection flow can be exercised
// against in-memory stores.
type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Service struct {
	runTx       TxRunner
	swipeStore  SwipeStore
	matchStore  MatchStore
	events      EventSink
	invalidator FeedInvalidator
	logger      *zap.Logger
	cfg         Config
	now         func() time.Time
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	MatchStore  MatchStore
	Events      EventSink
	Invalidator FeedInvalidator
	Logger      *zap.Logger
	// RunTx overrides the pool-backed transaction runner.
	RunTx TxRunner
}

func NewService(deps Dependencies, cfg Config) *Service {
	if strings.TrimSpace(cfg.MatchTopic) == "" {
		cfg.MatchTopic = defaultMatchTopic
	}

	runTx := deps.RunTx
	if runTx == nil {
		pool := deps.Pool
		runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		}
	}

	return &Service{
		runTx:       runTx,
		swipeStore:  deps.SwipeStore,
		matchStore:  deps.MatchStore,
		events:      deps.Events,
		invalidator: deps.Invalidator,
		logger:      deps.Logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Swipe records the action and, for positive actions with a reciprocal
// positive swipe on file, creates the pair's match. The swipe commits in
// its own transaction before detection runs: once the swipe row is
// committed, the later of two racing reciprocal swipes is guaranteed to
// see it in its detection transaction, so simultaneous mutual likes cannot
// both miss. Both detections may fire; the match pair constraint collapses
// them to one row, and the losing insert reads the winner's match so the
// two responses are indistinguishable.
func (s *Service) Swipe(ctx context.Context, actorUserID, targetUserID int64, action string) (Result, error) {
	if actorUserID <= 0 || targetUserID <= 0 || actorUserID == targetUserID {
		return Result{}, ErrInvalidSwipe
	}

	normalized, err := normalizeAction(action)
	if err != nil {
		return Result{}, err
	}

	if s.runTx == nil || s.swipeStore == nil || s.matchStore == nil {
		return Result{}, fmt.Errorf("swipe dependencies are not configured")
	}

	now := s.now().UTC()

	var swipeRec pgrepo.SwipeRecord
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		rec, err := s.swipeStore.Create(txCtx, tx, actorUserID, targetUserID, string(normalized), now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrDuplicateSwipe
			}
			return err
		}
		swipeRec = rec
		return nil
	}); err != nil {
		return Result{}, err
	}

	var (
		matchRec      pgrepo.MatchRecord
		matched       bool
		matchInserted bool
	)
	if normalized.Positive() {
		if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
			mutual, err := s.swipeStore.HasPositive(txCtx, tx, targetUserID, actorUserID)
			if err != nil {
				return err
			}
			if !mutual {
				return nil
			}

			rec, created, err := s.matchStore.CreateForPair(txCtx, tx, actorUserID, targetUserID, now)
			if err != nil {
				return err
			}
			matchRec = rec
			matched = true
			matchInserted = created
			return nil
		}); err != nil {
			return Result{}, err
		}
	}

	if matchInserted {
		s.publishMatchCreated(ctx, matchRec)
	}
	s.invalidateFeed(ctx, actorUserID)

	result := Result{
		Swipe: model.Swipe{
			ID:           swipeRec.ID,
			ActorUserID:  swipeRec.ActorUserID,
			TargetUserID: swipeRec.TargetUserID,
			Action:       normalized,
			CreatedAt:    swipeRec.CreatedAt,
		},
		MatchCreated: matched,
	}
	if matched {
		result.Match = &model.Match{
			ID:         matchRec.ID,
			UserLowID:  matchRec.UserLowID,
			UserHighID: matchRec.UserHighID,
			MatchedAt:  matchRec.MatchedAt,
			EndedAt:    matchRec.EndedAt,
		}
	}

	return result, nil
}

// HasSwiped reports whether the ordered pair already carries a swipe.
func (s *Service) HasSwiped(ctx context.Context, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, ErrInvalidSwipe
	}
	if s.swipeStore == nil {
		return false, fmt.Errorf("swipe store is nil")
	}
	return s.swipeStore.HasSwiped(ctx, actorUserID, targetUserID)
}

// ExcludedIDs returns the identifiers a feed for userID must omit: the user
// themselves, every target they already swiped, and every active match
// partner.
func (s *Service) ExcludedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	if userID <= 0 {
		return nil, ErrInvalidSwipe
	}
	if s.swipeStore == nil || s.matchStore == nil {
		return nil, fmt.Errorf("swipe dependencies are not configured")
	}

	swiped, err := s.swipeStore.ListTargetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	partners, err := s.matchStore.ListPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[int64]struct{}, len(swiped)+len(partners)+1)
	excluded[userID] = struct{}{}
	for _, id := range swiped {
		excluded[id] = struct{}{}
	}
	for _, id := range partners {
		excluded[id] = struct{}{}
	}

	return excluded, nil
}

func (s *Service) publishMatchCreated(ctx context.Context, rec pgrepo.MatchRecord) {
	if s.events == nil {
		return
	}

	err := s.events.Publish(ctx, s.cfg.MatchTopic, MatchCreatedEvent{
		MatchID:    rec.ID,
		UserLowID:  rec.UserLowID,
		UserHighID: rec.UserHighID,
		MatchedAt:  rec.MatchedAt,
	})
	if err != nil && s.logger != nil {
		s.logger.Error("publish match created event",
			zap.Int64("match_id", rec.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) invalidateFeed(ctx context.Context, userID int64) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateUser(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("invalidate feed after swipe",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func normalizeAction(input string) (enums.SwipeAction, error) {
	value := strings.ToUpper(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "_", "")
	switch value {
	case "LIKE":
		return enums.SwipeActionLike, nil
	case "PASS":
		return enums.SwipeActionPass, nil
	case "SUPERLIKE":
		return enums.SwipeActionSuperLike, nil
	default:
		return "", ErrUnsupportedAction
	}
}
