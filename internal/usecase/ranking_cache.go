package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RankingCache is the subset of the redis cache the ranking path uses. A nil
// cache disables caching.
type RankingCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

func RankingCacheKey(roleID uuid.UUID) string {
	return "ranking:role:" + roleID.String()
}

func rankingLockKey(roleID uuid.UUID) string {
	return "ranking:lock:" + roleID.String()
}

func invalidateRanking(ctx context.Context, c RankingCache, roleIDs ...uuid.UUID) {
	if c == nil || len(roleIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		keys = append(keys, RankingCacheKey(id))
	}
	_ = c.Delete(ctx, keys...)
}
