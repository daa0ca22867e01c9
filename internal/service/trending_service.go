package service

import (
	"context"
	"time"

	"koinonia/internal/cache"
	"koinonia/internal/models"
	"koinonia/internal/observability"
	"koinonia/internal/repository"
)

// TrendingService ranks content by engagement volume over a time window.
// Results are cached in Redis keyed by the full query shape; staleness up to
// the TTL is acceptable for this surface.
type TrendingService struct {
	engagementRepo repository.EngagementRepository
	commentRepo    repository.CommentRepository
	maxLimit       int
	ttl            time.Duration
}

type TrendingQuery struct {
	Kind        models.Kind
	ContentType models.ContentType
	WindowDays  int
	Limit       int
}

func NewTrendingService(engagementRepo repository.EngagementRepository, commentRepo repository.CommentRepository, maxLimit int, ttl time.Duration) *TrendingService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if ttl <= 0 {
		ttl = cache.TrendingTTL
	}
	return &TrendingService{
		engagementRepo: engagementRepo,
		commentRepo:    commentRepo,
		maxLimit:       maxLimit,
		ttl:            ttl,
	}
}

// Trending returns up to Limit items ordered by descending score; ties break
// toward the item with the most recent engagement. WindowDays 0 means
// all-time, and an empty ContentType spans all catalogs.
func (s *TrendingService) Trending(ctx context.Context, q TrendingQuery) ([]models.RankedContent, error) {
	if q.Kind == "" {
		q.Kind = models.KindLike
	}
	if !models.ValidKind(q.Kind) {
		return nil, models.NewValidationError("Unknown kind")
	}
	if q.ContentType != "" && !models.ValidContentType(q.ContentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	if q.Limit <= 0 {
		return nil, models.NewValidationError("Limit must be positive")
	}
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}
	if q.WindowDays < 0 {
		return nil, models.NewValidationError("Window must not be negative")
	}

	var since time.Time
	if q.WindowDays > 0 {
		since = time.Now().UTC().Add(-time.Duration(q.WindowDays) * 24 * time.Hour)
	}

	key := cache.TrendingKey(q.Kind, q.ContentType, q.WindowDays, q.Limit)
	ranked := make([]models.RankedContent, 0, q.Limit)
	outcome := "hit"
	err := cache.Aside(ctx, key, &ranked, s.ttl, func() error {
		outcome = "miss"
		var err error
		if q.Kind == models.KindComment {
			ranked, err = s.commentRepo.Ranked(ctx, q.ContentType, since, q.Limit)
		} else {
			ranked, err = s.engagementRepo.Ranked(ctx, q.Kind, q.ContentType, since, q.Limit)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.TrendingCacheHits.WithLabelValues(outcome).Inc()
	return ranked, nil
}
