package handlers

import (
	"errors"
	"net/http"

	"github.com/emberdate/backend/internal/pkg/validate"
	authsvc "github.com/emberdate/backend/internal/services/auth"
	swipesvc "github.com/emberdate/backend/internal/services/swipes"
	"github.com/emberdate/backend/internal/transport/http/dto"
	httperrors "github.com/emberdate/backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 || !validate.Required(req.Action) {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and action are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrInvalidSwipe):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrUnsupportedAction):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
		case errors.Is(err, swipesvc.ErrDuplicateSwipe):
			writeConflict(w, "DUPLICATE_SWIPE", "swipe already recorded for this pair")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	status := http.StatusCreated
	resp := dto.SwipeResponse{
		OK:           true,
		SwipeID:      result.Swipe.ID,
		MatchCreated: result.MatchCreated,
	}
	if result.MatchCreated && result.Match != nil {
		status = http.StatusOK
		resp.Match = &dto.MatchResponse{
			MatchID:       result.Match.ID,
			PartnerUserID: result.Match.PartnerOf(identity.UserID),
			MatchedAt:     result.Match.MatchedAt,
		}
	}

	httperrors.Write(w, status, resp)
}
