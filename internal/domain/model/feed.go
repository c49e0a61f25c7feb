package model

// RankedCandidate is one entry of a feed page.
type RankedCandidate struct {
	CandidateUserID int64              `json:"candidate_user_id"`
	Score           float64            `json:"score"`
	Breakdown       map[string]float64 `json:"breakdown,omitempty"`
}

// FeedPage is the materialized result for one (user, limit, offset) key.
type FeedPage struct {
	Candidates []RankedCandidate `json:"candidates"`
	Total      int               `json:"total"`
	HasMore    bool              `json:"has_more"`
}
