package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/emberdate/backend/internal/services/auth"
	feedsvc "github.com/emberdate/backend/internal/services/feed"
	matchessvc "github.com/emberdate/backend/internal/services/matches"
	swipesvc "github.com/emberdate/backend/internal/services/swipes"
	"github.com/emberdate/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager   *authsvc.JWTManager
	SwipeService *swipesvc.Service
	MatchService *matchessvc.Service
	FeedService  *feedsvc.Service
	Logger       *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	compatibilityHandler := handlers.NewCompatibilityHandler(deps.FeedService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/swipe", swipeHandler.Handle)
		r.With(authMW).Get("/feed", feedHandler.Handle)
		r.With(authMW).Post("/feed/refresh", feedHandler.Refresh)
		r.With(authMW).Get("/compatibility/{userID}", compatibilityHandler.Handle)
		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)
	})
}
