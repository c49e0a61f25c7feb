package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID         int64
	UserLowID  int64
	UserHighID int64
	MatchedAt  time.Time
	EndedAt    *time.Time
}

func canonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

// CreateForPair attempts to create the active match for the unordered pair.
// The partial unique index on (user_low_id, user_high_id) WHERE ended_at IS
// NULL serializes racing callers: exactly one insert lands, the rest see no
// returned row and read back the winner's match. The bool reports whether
// this call created the row.
func (r *MatchRepo) CreateForPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	low, high := canonicalPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_low_id,
	user_high_id,
	matched_at
) VALUES ($1, $2, $3)
ON CONFLICT (user_low_id, user_high_id) WHERE ended_at IS NULL DO NOTHING
RETURNING id, user_low_id, user_high_id, matched_at, ended_at
`, low, high, now.UTC()).Scan(
		&rec.ID,
		&rec.UserLowID,
		&rec.UserHighID,
		&rec.MatchedAt,
		&rec.EndedAt,
	)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := r.getActiveByPair(ctx, tx, low, high)
	if err != nil {
		return MatchRecord{}, false, err
	}
	return existing, false, nil
}

func (r *MatchRepo) getActiveByPair(ctx context.Context, tx pgx.Tx, low, high int64) (MatchRecord, error) {
	var rec MatchRecord
	err := tx.QueryRow(ctx, `
SELECT id, user_low_id, user_high_id, matched_at, ended_at
FROM matches
WHERE user_low_id = $1 AND user_high_id = $2 AND ended_at IS NULL
LIMIT 1
`, low, high).Scan(
		&rec.ID,
		&rec.UserLowID,
		&rec.UserHighID,
		&rec.MatchedAt,
		&rec.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get active match by pair: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]MatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_low_id, user_high_id, matched_at, ended_at
FROM matches
WHERE (user_low_id = $1 OR user_high_id = $1) AND ended_at IS NULL
ORDER BY matched_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserLowID,
			&rec.UserHighID,
			&rec.MatchedAt,
			&rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// ListPartnerIDs returns the partner side of every active match the user is
// part of.
func (r *MatchRepo) ListPartnerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT CASE WHEN user_low_id = $1 THEN user_high_id ELSE user_low_id END
FROM matches
WHERE (user_low_id = $1 OR user_high_id = $1) AND ended_at IS NULL
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list match partners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match partner: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate match partners: %w", rows.Err())
	}

	return ids, nil
}

// EndByPair marks the active match for the pair as ended. Returns false when
// no active match existed.
func (r *MatchRepo) EndByPair(ctx context.Context, tx pgx.Tx, userID, targetID int64, now time.Time) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	low, high := canonicalPair(userID, targetID)

	result, err := tx.Exec(ctx, `
UPDATE matches
SET ended_at = $3
WHERE user_low_id = $1 AND user_high_id = $2 AND ended_at IS NULL
`, low, high, now.UTC())
	if err != nil {
		return false, fmt.Errorf("end match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
