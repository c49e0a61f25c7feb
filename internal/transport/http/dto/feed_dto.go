package dto

type FeedItemResponse struct {
	UserID    int64              `json:"user_id"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

type FeedResponse struct {
	Items   []FeedItemResponse `json:"items"`
	Total   int                `json:"total"`
	HasMore bool               `json:"has_more"`
}

type FeedRefreshResponse struct {
	OK bool `json:"ok"`
}
