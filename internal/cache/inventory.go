package cache

import (
	"context"
	"fmt"
	"time"

	"koinonia/internal/models"
)

const (
	UserKeyPrefix     = "user:%d"
	ContentKeyPrefix  = "content:%s:%d"
	SummaryKeyPrefix  = "summary:%s:%d"
	TrendingKeyPrefix = "trending:%s:%s:%d:%d"
)

const (
	UserTTL    = 5 * time.Minute
	ContentTTL = 10 * time.Minute
	SummaryTTL = 30 * time.Second
	// TrendingTTL is a fallback; the configured TRENDING_TTL_MINUTES wins.
	TrendingTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ContentKey(contentType models.ContentType, contentID uint) string {
	return fmt.Sprintf(ContentKeyPrefix, contentType, contentID)
}

func SummaryKey(contentType models.ContentType, contentID uint) string {
	return fmt.Sprintf(SummaryKeyPrefix, contentType, contentID)
}

// TrendingKey identifies a ranked listing by its full query shape so distinct
// windows and limits never collide.
func TrendingKey(kind models.Kind, contentType models.ContentType, windowDays, limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, kind, contentType, windowDays, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateContent(ctx context.Context, contentType models.ContentType, contentID uint) {
	Invalidate(ctx, ContentKey(contentType, contentID))
	Invalidate(ctx, SummaryKey(contentType, contentID))
}
