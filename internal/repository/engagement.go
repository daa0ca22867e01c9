// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"koinonia/internal/cache"
	"koinonia/internal/models"
	"koinonia/internal/observability"

	"gorm.io/gorm"
)

// EngagementRepository owns the engagement ledger: one row per
// (user, content, type, kind) tuple for toggleable kinds, one row per event
// for views and shares. Comments live in CommentRepository.
type EngagementRepository interface {
	// Toggle atomically flips the actor's state for a toggleable tuple and
	// reports the new state. Insert-first: a conflict on the tuple index
	// means the row exists, so the toggle resolves as a delete.
	Toggle(ctx context.Context, userID, contentID uint, contentType models.ContentType, kind models.Kind) (bool, error)
	Append(ctx context.Context, record *models.Engagement) error
	Count(ctx context.Context, contentID uint, contentType models.ContentType, kind models.Kind) (int64, error)
	// CountableViews counts only view rows that passed the view policy.
	CountableViews(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error)
	HasViewed(ctx context.Context, userID, contentID uint, contentType models.ContentType) (bool, error)
	// ActiveKinds reports which toggleable kinds the user currently has
	// active rows for on the given content.
	ActiveKinds(ctx context.Context, userID, contentID uint, contentType models.ContentType) (map[models.Kind]bool, error)
	// Ranked aggregates the ledger into a descending (score, last_at)
	// ordering. A zero since means all-time; an empty contentType spans all
	// catalogs.
	Ranked(ctx context.Context, kind models.Kind, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) Toggle(ctx context.Context, userID, contentID uint, contentType models.ContentType, kind models.Kind) (bool, error) {
	defer observability.ObserveQuery("toggle", "engagements", time.Now())

	// INSERT ... ON CONFLICT DO NOTHING is atomic against concurrent toggles
	// on the same tuple; the application never does a read-check-then-write.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO engagements (user_id, content_id, content_type, kind, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		userID, contentID, contentType, kind, time.Now().UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidateContent(ctx, contentType, contentID)
		return true, nil
	}

	// Row already existed: this call is a toggle-off.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND content_type = ? AND kind = ?",
			userID, contentID, contentType, kind).
		Delete(&models.Engagement{}).Error
	if err != nil {
		return false, err
	}
	cache.InvalidateContent(ctx, contentType, contentID)
	return false, nil
}

func (r *engagementRepository) Append(ctx context.Context, record *models.Engagement) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err == nil {
		cache.InvalidateContent(ctx, record.ContentType, record.ContentID)
	}
	return err
}

func (r *engagementRepository) Count(ctx context.Context, contentID uint, contentType models.ContentType, kind models.Kind) (int64, error) {
	var count int64
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Engagement{}).
			Where("content_id = ? AND content_type = ? AND kind = ?", contentID, contentType, kind).
			Count(&count).Error
	})
	return count, err
}

func (r *engagementRepository) CountableViews(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error) {
	var count int64
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Engagement{}).
			Where("content_id = ? AND content_type = ? AND kind = ? AND countable = ?",
				contentID, contentType, models.KindView, true).
			Count(&count).Error
	})
	return count, err
}

func (r *engagementRepository) HasViewed(ctx context.Context, userID, contentID uint, contentType models.ContentType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Engagement{}).
		Where("user_id = ? AND content_id = ? AND content_type = ? AND kind = ?",
			userID, contentID, contentType, models.KindView).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *engagementRepository) ActiveKinds(ctx context.Context, userID, contentID uint, contentType models.ContentType) (map[models.Kind]bool, error) {
	var kinds []models.Kind
	err := r.db.WithContext(ctx).
		Model(&models.Engagement{}).
		Where("user_id = ? AND content_id = ? AND content_type = ? AND kind IN ?",
			userID, contentID, contentType, models.ToggleableKinds).
		Pluck("kind", &kinds).Error
	if err != nil {
		return nil, err
	}

	active := make(map[models.Kind]bool, len(models.ToggleableKinds))
	for _, k := range models.ToggleableKinds {
		active[k] = false
	}
	for _, k := range kinds {
		active[k] = true
	}
	return active, nil
}

func (r *engagementRepository) Ranked(ctx context.Context, kind models.Kind, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error) {
	defer observability.ObserveQuery("ranked", "engagements", time.Now())

	query := r.db.WithContext(ctx).
		Model(&models.Engagement{}).
		Select("content_id, content_type, COUNT(*) AS score, MAX(created_at) AS last_at").
		Where("kind = ?", kind)

	// Trending by views only counts qualifying views.
	if kind == models.KindView {
		query = query.Where("countable = ?", true)
	}
	if contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var ranked []models.RankedContent
	err := withReadRetry(ctx, func() error {
		return query.
			Group("content_id, content_type").
			Order("score DESC, last_at DESC").
			Limit(limit).
			Scan(&ranked).Error
	})
	return ranked, err
}

// withReadRetry retries a read exactly once on transient storage errors.
// Mutations are never retried here; the toggle contract makes caller-level
// retry safe instead.
func withReadRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return fn()
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
