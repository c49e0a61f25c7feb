package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/emberdate/backend/internal/services/auth"
	feedsvc "github.com/emberdate/backend/internal/services/feed"
	"github.com/emberdate/backend/internal/transport/http/dto"
	httperrors "github.com/emberdate/backend/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "offset must be a non-negative integer")
		return
	}

	page, err := h.service.Get(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid feed request")
		case errors.Is(err, feedsvc.ErrViewerNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to build feed")
		}
		return
	}

	items := make([]dto.FeedItemResponse, 0, len(page.Candidates))
	for _, candidate := range page.Candidates {
		items = append(items, dto.FeedItemResponse{
			UserID:    candidate.CandidateUserID,
			Score:     candidate.Score,
			Breakdown: candidate.Breakdown,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Items:   items,
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

// Refresh drops the caller's cached pages so the next read rebuilds.
func (h *FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	if err := h.service.InvalidateUser(r.Context(), identity.UserID); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to refresh feed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FeedRefreshResponse{OK: true})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
