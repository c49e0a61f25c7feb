package dto

import "time"

type MatchResponse struct {
	MatchID       int64     `json:"match_id"`
	PartnerUserID int64     `json:"partner_user_id"`
	MatchedAt     time.Time `json:"matched_at"`
}

type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
}

type UnmatchRequest struct {
	PartnerUserID int64 `json:"partner_user_id"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
