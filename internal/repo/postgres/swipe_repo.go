package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateSwipe = errors.New("swipe already recorded for pair")

const uniqueViolationCode = "23505"

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           int64
	ActorUserID  int64
	TargetUserID int64
	Action       string
	CreatedAt    time.Time
}

// Create inserts the swipe row. The unique constraint on
// (actor_user_id, target_user_id) is the sole authority for "already
// acted": a second insert for the same ordered pair fails with
// ErrDuplicateSwipe regardless of which concurrent caller got there first.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || strings.TrimSpace(action) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, actor_user_id, target_user_id, action, created_at
`, actorUserID, targetUserID, strings.ToUpper(strings.TrimSpace(action)), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Action,
		&rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return SwipeRecord{}, ErrDuplicateSwipe
		}
		return SwipeRecord{}, fmt.Errorf("create swipe: %w", err)
	}

	return rec, nil
}

// HasPositive reports whether actor has recorded a LIKE or SUPER_LIKE on
// target. The match detector calls it in its own transaction, after the
// triggering swipe has committed.
func (r *SwipeRepo) HasPositive(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2 AND action IN ('LIKE', 'SUPER_LIKE')
LIMIT 1
`, actorUserID, targetUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal swipe: %w", err)
	}

	return true, nil
}

func (r *SwipeRepo) HasSwiped(ctx context.Context, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
LIMIT 1
`, actorUserID, targetUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup swipe: %w", err)
	}

	return true, nil
}

// ListTargetIDs returns every target the user has already acted on, in any
// direction of action. Feeds use it as the exclusion set.
func (r *SwipeRepo) ListTargetIDs(ctx context.Context, actorUserID int64) ([]int64, error) {
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_user_id
FROM swipes
WHERE actor_user_id = $1
`, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("list swiped targets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped target: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swiped targets: %w", rows.Err())
	}

	return ids, nil
}
