package dto

type SwipeRequest struct {
	TargetID int64  `json:"target_id"`
	Action   string `json:"action"`
}

type SwipeResponse struct {
	OK           bool           `json:"ok"`
	SwipeID      int64          `json:"swipe_id"`
	MatchCreated bool           `json:"match_created"`
	Match        *MatchResponse `json:"match,omitempty"`
}
