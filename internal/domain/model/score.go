package model

// CompatibilityScore is a derived value, recomputed on demand and never
// persisted outside the cache tier.
type CompatibilityScore struct {
	SourceUserID    int64              `json:"source_user_id"`
	CandidateUserID int64              `json:"candidate_user_id"`
	Final           float64            `json:"final"`
	Breakdown       map[string]float64 `json:"breakdown"`
}
