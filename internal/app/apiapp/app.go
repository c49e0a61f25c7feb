package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/emberdate/backend/internal/config"
	pgrepo "github.com/emberdate/backend/internal/repo/postgres"
	redrepo "github.com/emberdate/backend/internal/repo/redis"
	authsvc "github.com/emberdate/backend/internal/services/auth"
	feedsvc "github.com/emberdate/backend/internal/services/feed"
	matchessvc "github.com/emberdate/backend/internal/services/matches"
	profilesvc "github.com/emberdate/backend/internal/services/profiles"
	"github.com/emberdate/backend/internal/services/scoring"
	swipesvc "github.com/emberdate/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	feedCacheRepo := redrepo.NewFeedCacheRepo(redisClient)
	eventRepo := redrepo.NewEventRepo(redisClient)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	profileService := profilesvc.NewService(profileRepo)
	scorer := scoring.NewScorer(scoring.Config{
		AgeWeight:            cfg.Scoring.AgeWeight,
		DistanceWeight:       cfg.Scoring.DistanceWeight,
		InterestsWeight:      cfg.Scoring.InterestsWeight,
		ActivityWeight:       cfg.Scoring.ActivityWeight,
		AgeDecayPerYear:      cfg.Scoring.AgeDecayPerYear,
		CloseDistanceKM:      cfg.Scoring.CloseDistanceKM,
		DefaultMaxDistanceKM: cfg.Scoring.DefaultMaxDistanceKM,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		Events:      eventRepo,
		Invalidator: feedCacheRepo,
		Logger:      log,
	}, swipesvc.Config{
		MatchTopic: cfg.Events.MatchTopic,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:        pool,
		MatchStore:  matchRepo,
		Invalidator: feedCacheRepo,
		Logger:      log,
	})
	feedService := feedsvc.NewService(feedsvc.Dependencies{
		Exclusions: swipeService,
		Candidates: profileService,
		Cache:      feedCacheRepo,
		Scorer:     scorer,
		Logger:     log,
	}, feedsvc.Config{
		PageTTL:            cfg.Feed.PageTTL,
		DefaultLimit:       cfg.Feed.DefaultLimit,
		MaxLimit:           cfg.Feed.MaxLimit,
		CandidatePoolLimit: cfg.Feed.CandidatePoolLimit,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:   jwtManager,
		SwipeService: swipeService,
		MatchService: matchesService,
		FeedService:  feedService,
		Logger:       log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
