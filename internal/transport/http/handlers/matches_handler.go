package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/emberdate/backend/internal/services/auth"
	matchsvc "github.com/emberdate/backend/internal/services/matches"
	"github.com/emberdate/backend/internal/transport/http/dto"
	httperrors "github.com/emberdate/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchsvc.Service
}

func NewMatchesHandler(service *matchsvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "limit must be an integer")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, matchsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	matches := make([]dto.MatchResponse, 0, len(items))
	for _, item := range items {
		matches = append(matches, dto.MatchResponse{
			MatchID:       item.MatchID,
			PartnerUserID: item.PartnerUserID,
			MatchedAt:     item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Matches: matches})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.PartnerUserID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "partner_user_id is required")
		return
	}

	if err := h.service.Unmatch(r.Context(), identity.UserID, req.PartnerUserID); err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		case errors.Is(err, matchsvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "no active match with this user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}
