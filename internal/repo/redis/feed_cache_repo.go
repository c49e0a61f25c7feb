package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emberdate/backend/internal/domain/model"
)

const (
	feedVersionPrefix = "feed:v:"
	feedPagePrefix    = "feed:p:"
)

// FeedCacheRepo stores materialized feed pages under a per-user version.
// Invalidation bumps the version, orphaning every cached page for that user
// at once; the orphans fall out via their TTL.
type FeedCacheRepo struct {
	client *goredis.Client
}

func NewFeedCacheRepo(client *goredis.Client) *FeedCacheRepo {
	return &FeedCacheRepo{client: client}
}

func (r *FeedCacheRepo) GetPage(ctx context.Context, userID int64, limit, offset int) (model.FeedPage, bool, error) {
	if r.client == nil {
		return model.FeedPage{}, false, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return model.FeedPage{}, false, fmt.Errorf("invalid user id")
	}

	version, err := r.currentVersion(ctx, userID)
	if err != nil {
		return model.FeedPage{}, false, err
	}

	raw, err := r.client.Get(ctx, pageKey(userID, version, limit, offset)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return model.FeedPage{}, false, nil
		}
		return model.FeedPage{}, false, fmt.Errorf("get feed page: %w", err)
	}

	var page model.FeedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		// A corrupt entry is a miss, not a failure.
		return model.FeedPage{}, false, nil
	}

	return page, true, nil
}

func (r *FeedCacheRepo) SetPage(ctx context.Context, userID int64, limit, offset int, page model.FeedPage, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 || ttl <= 0 {
		return fmt.Errorf("invalid feed page payload")
	}

	version, err := r.currentVersion(ctx, userID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal feed page: %w", err)
	}

	if err := r.client.Set(ctx, pageKey(userID, version, limit, offset), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set feed page: %w", err)
	}

	return nil
}

func (r *FeedCacheRepo) InvalidateUser(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if err := r.client.Incr(ctx, versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("bump feed version: %w", err)
	}

	return nil
}

func (r *FeedCacheRepo) currentVersion(ctx context.Context, userID int64) (int64, error) {
	version, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if err != nil && err != goredis.Nil {
		return 0, fmt.Errorf("get feed version: %w", err)
	}
	if err == goredis.Nil {
		return 0, nil
	}
	return version, nil
}

func versionKey(userID int64) string {
	return feedVersionPrefix + strconv.FormatInt(userID, 10)
}

func pageKey(userID, version int64, limit, offset int) string {
	return feedPagePrefix + strconv.FormatInt(userID, 10) +
		":" + strconv.FormatInt(version, 10) +
		":" + strconv.Itoa(limit) +
		":" + strconv.Itoa(offset)
}
