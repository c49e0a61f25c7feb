package dto

type CompatibilityResponse struct {
	SourceUserID    int64              `json:"source_user_id"`
	CandidateUserID int64              `json:"candidate_user_id"`
	Score           float64            `json:"score"`
	Breakdown       map[string]float64 `json:"breakdown"`
}
