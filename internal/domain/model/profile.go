package model

import "time"

// Profile is the read-only candidate view supplied by the profile source.
// Pointer fields are absent when the owner never filled them in.
type Profile struct {
	UserID        int64      `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	Age           *int       `json:"age,omitempty"`
	Gender        string     `json:"gender"`
	LookingFor    string     `json:"looking_for"`
	Interests     []string   `json:"interests"`
	LastLat       *float64   `json:"last_lat,omitempty"`
	LastLon       *float64   `json:"last_lon,omitempty"`
	AgeMin        int        `json:"age_min"`
	AgeMax        int        `json:"age_max"`
	MaxDistanceKM int        `json:"max_distance_km"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	IsActive      bool       `json:"is_active"`
}

// HasLocation reports whether both coordinates are recorded.
func (p Profile) HasLocation() bool {
	return p.LastLat != nil && p.LastLon != nil
}
