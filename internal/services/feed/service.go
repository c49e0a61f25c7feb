package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/emberdate/backend/internal/domain/model"
	"github.com/emberdate/backend/internal/domain/rules"
	"github.com/emberdate/backend/internal/services/profiles"
)

const (
	defaultLimit     = 20
	maxLimit         = 50
	defaultPoolLimit = 500
	defaultPageTTL   = 5 * time.Minute
)

var (
	ErrValidation     = errors.New("invalid feed request")
	ErrViewerNotFound = errors.New("viewer profile not found")
	ErrTargetNotFound = errors.New("target profile not found")
)

type ExclusionSource interface {
	ExcludedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

type CandidateSource interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	Candidates(ctx context.Context, viewer model.Profile, poolLimit int) ([]model.Profile, error)
}

type PageCache interface {
	GetPage(ctx context.Context, userID int64, limit, offset int) (model.FeedPage, bool, error)
	SetPage(ctx context.Context, userID int64, limit, offset int, page model.FeedPage, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID int64) error
}

type Scorer interface {
	Score(source, candidate model.Profile, at time.Time) model.CompatibilityScore
}

type Config struct {
	PageTTL            time.Duration
	DefaultLimit       int
	MaxLimit           int
	CandidatePoolLimit int
}

func (c Config) withDefaults() Config {
	if c.PageTTL <= 0 {
		c.PageTTL = defaultPageTTL
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = maxLimit
	}
	if c.CandidatePoolLimit <= 0 {
		c.CandidatePoolLimit = defaultPoolLimit
	}
	return c
}

// Service assembles ranked feed pages. Pages are served cache-aside: a miss
// rebuilds the ranking from live candidates and stores the page under the
// user's current cache version.
type Service struct {
	exclusions ExclusionSource
	candidates CandidateSource
	cache      PageCache
	scorer     Scorer
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

type Dependencies struct {
	Exclusions ExclusionSource
	Candidates CandidateSource
	Cache      PageCache
	Scorer     Scorer
	Logger     *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	return &Service{
		exclusions: deps.Exclusions,
		candidates: deps.Candidates,
		cache:      deps.Cache,
		scorer:     deps.Scorer,
		logger:     deps.Logger,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}
}

// Get returns the feed page for (userID, limit, offset). Pages reflect one
// consistent ranking: any two pages built from the same snapshot concatenate
// without duplicates or gaps. When the candidate source is unavailable the
// page degrades to empty rather than failing the request.
func (s *Service) Get(ctx context.Context, userID int64, limit, offset int) (model.FeedPage, error) {
	if userID <= 0 || offset < 0 {
		return model.FeedPage{}, ErrValidation
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	if s.cache != nil {
		page, hit, err := s.cache.GetPage(ctx, userID, limit, offset)
		if err != nil {
			s.warn("feed cache read", userID, err)
		} else if hit {
			return page, nil
		}
	}

	viewer, err := s.candidates.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			return model.FeedPage{}, ErrViewerNotFound
		}
		return model.FeedPage{}, err
	}

	ranked, err := s.rank(ctx, viewer)
	if err != nil {
		s.warn("feed candidate ranking degraded", userID, err)
		return model.FeedPage{Candidates: []model.RankedCandidate{}}, nil
	}

	page := paginate(ranked, limit, offset)

	if s.cache != nil {
		if err := s.cache.SetPage(ctx, userID, limit, offset, page, s.cfg.PageTTL); err != nil {
			s.warn("feed cache write", userID, err)
		}
	}

	return page, nil
}

// Compatibility scores the viewer against one candidate without feed
// filtering, so callers can inspect pairs that a feed would exclude.
func (s *Service) Compatibility(ctx context.Context, viewerID, candidateID int64) (model.CompatibilityScore, error) {
	if viewerID <= 0 || candidateID <= 0 {
		return model.CompatibilityScore{}, ErrValidation
	}

	viewer, err := s.candidates.Get(ctx, viewerID)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			return model.CompatibilityScore{}, ErrViewerNotFound
		}
		return model.CompatibilityScore{}, err
	}

	candidate, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			return model.CompatibilityScore{}, ErrTargetNotFound
		}
		return model.CompatibilityScore{}, err
	}

	return s.scorer.Score(viewer, candidate, s.now().UTC()), nil
}

// InvalidateUser drops every cached page for the user.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateUser(ctx, userID)
}

func (s *Service) rank(ctx context.Context, viewer model.Profile) ([]model.RankedCandidate, error) {
	if s.exclusions == nil || s.candidates == nil || s.scorer == nil {
		return nil, fmt.Errorf("feed dependencies are not configured")
	}

	excluded, err := s.exclusions.ExcludedIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates.Candidates(ctx, viewer, s.cfg.CandidatePoolLimit)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	ranked := make([]model.RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if _, skip := excluded[candidate.UserID]; skip {
			continue
		}
		if !withinMaxDistance(viewer, candidate) {
			continue
		}

		score := s.scorer.Score(viewer, candidate, at)
		ranked = append(ranked, model.RankedCandidate{
			CandidateUserID: candidate.UserID,
			Score:           score.Final,
			Breakdown:       score.Breakdown,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CandidateUserID < ranked[j].CandidateUserID
	})

	return ranked, nil
}

// withinMaxDistance applies the viewer's hard distance cutoff. Pairs with a
// missing location on either side pass the filter and fall through to the
// neutral distance factor instead.
func withinMaxDistance(viewer, candidate model.Profile) bool {
	if viewer.MaxDistanceKM <= 0 {
		return true
	}
	if !viewer.HasLocation() || !candidate.HasLocation() {
		return true
	}

	distance := rules.HaversineKM(
		*viewer.LastLat, *viewer.LastLon,
		*candidate.LastLat, *candidate.LastLon,
	)
	return distance <= float64(viewer.MaxDistanceKM)
}

func paginate(ranked []model.RankedCandidate, limit, offset int) model.FeedPage {
	total := len(ranked)

	if offset >= total {
		return model.FeedPage{Candidates: []model.RankedCandidate{}, Total: total}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return model.FeedPage{
		Candidates: ranked[offset:end],
		Total:      total,
		HasMore:    end < total,
	}
}

func (s *Service) warn(msg string, userID int64, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, zap.Int64("user_id", userID), zap.Error(err))
}
