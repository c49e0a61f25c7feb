package model

import "time"

// Match keys the pair in canonical order: UserLowID < UserHighID.
// At most one row with a NULL EndedAt exists per pair.
type Match struct {
	ID         int64      `json:"id"`
	UserLowID  int64      `json:"user_low_id"`
	UserHighID int64      `json:"user_high_id"`
	MatchedAt  time.Time  `json:"matched_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// PartnerOf returns the other side of the match.
func (m Match) PartnerOf(userID int64) int64 {
	if m.UserLowID == userID {
		return m.UserHighID
	}
	return m.UserLowID
}
