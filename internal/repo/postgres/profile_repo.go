package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo reads the candidate attributes owned by the profile
// collaborator. The scoring pipeline never writes through it.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type ProfileRecord struct {
	UserID        int64
	DisplayName   string
	Age           *int
	Gender        string
	LookingFor    string
	Interests     []string
	LastLat       *float64
	LastLon       *float64
	AgeMin        int
	AgeMax        int
	MaxDistanceKM int
	LastActiveAt  *time.Time
	IsActive      bool
}

type CandidateQuery struct {
	ViewerUserID int64
	ViewerGender string
	// GenderFilter narrows candidates to the viewer's preferred gender.
	// Empty means no constraint.
	GenderFilter string
	AgeMin       int
	AgeMax       int
	Limit        int
}

const profileColumns = `
	user_id,
	COALESCE(display_name, ''),
	age,
	COALESCE(gender, ''),
	COALESCE(looking_for, ''),
	COALESCE(interests, '{}'),
	last_lat,
	last_lon,
	COALESCE(age_min, 0),
	COALESCE(age_max, 0),
	COALESCE(max_distance_km, 0),
	last_active_at,
	is_active`

func (r *ProfileRepo) GetProfile(ctx context.Context, userID int64) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, ErrProfileNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID)

	rec, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}

	return rec, nil
}

// QueryCandidates returns active profiles satisfying the viewer's hard
// constraints. Gender and age bounds are pushed down here; distance and
// scoring stay with the caller.
func (r *ProfileRepo) QueryCandidates(ctx context.Context, q CandidateQuery) ([]ProfileRecord, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 500
	}
	if r.pool == nil {
		return []ProfileRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id != $1
	AND is_active = TRUE
	AND ($2 = '' OR gender = $2)
	AND ($3 = '' OR COALESCE(looking_for, '') = '' OR looking_for = $3)
	AND ($4 <= 0 OR age >= $4)
	AND ($5 <= 0 OR age <= $5)
ORDER BY user_id
LIMIT $6
`, q.ViewerUserID, q.GenderFilter, q.ViewerGender, q.AgeMin, q.AgeMax, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	items := make([]ProfileRecord, 0, q.Limit)
	for rows.Next() {
		rec, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rows.Err())
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (ProfileRecord, error) {
	var rec ProfileRecord
	err := row.Scan(
		&rec.UserID,
		&rec.DisplayName,
		&rec.Age,
		&rec.Gender,
		&rec.LookingFor,
		&rec.Interests,
		&rec.LastLat,
		&rec.LastLon,
		&rec.AgeMin,
		&rec.AgeMax,
		&rec.MaxDistanceKM,
		&rec.LastActiveAt,
		&rec.IsActive,
	)
	return rec, err
}
