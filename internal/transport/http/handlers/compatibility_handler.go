package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/emberdate/backend/internal/services/auth"
	feedsvc "github.com/emberdate/backend/internal/services/feed"
	"github.com/emberdate/backend/internal/transport/http/dto"
	httperrors "github.com/emberdate/backend/internal/transport/http/errors"
)

type CompatibilityHandler struct {
	service *feedsvc.Service
}

func NewCompatibilityHandler(service *feedsvc.Service) *CompatibilityHandler {
	return &CompatibilityHandler{service: service}
}

func (h *CompatibilityHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}

	candidateID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || candidateID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "user id must be a positive integer")
		return
	}

	score, err := h.service.Compatibility(r.Context(), identity.UserID, candidateID)
	if err != nil {
		switch {
		case errors.Is(err, feedsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid compatibility request")
		case errors.Is(err, feedsvc.ErrViewerNotFound), errors.Is(err, feedsvc.ErrTargetNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to compute compatibility")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CompatibilityResponse{
		SourceUserID:    score.SourceUserID,
		CandidateUserID: score.CandidateUserID,
		Score:           score.Final,
		Breakdown:       score.Breakdown,
	})
}
