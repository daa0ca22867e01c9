// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"koinonia/internal/cache"
	"koinonia/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByContent returns one page of top-level comments, newest first,
	// with replies attached, plus the total top-level count.
	ListByContent(ctx context.Context, contentID uint, contentType models.ContentType, page, limit int) ([]*models.Comment, int64, error)
	CountByContent(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	Ranked(ctx context.Context, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		cache.InvalidateContent(ctx, comment.ContentType, comment.ContentID)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByContent(ctx context.Context, contentID uint, contentType models.ContentType, page, limit int) ([]*models.Comment, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("content_id = ? AND content_type = ? AND parent_id IS NULL", contentID, contentType)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("content_id = ? AND content_type = ? AND parent_id IS NULL", contentID, contentType).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	if len(comments) == 0 {
		return comments, total, nil
	}

	// Attach replies in a single query; records are stored flat and the tree
	// is rebuilt here. The UI flattens to one level, so only direct children
	// of this page are fetched.
	parentIDs := make([]uint, 0, len(comments))
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		parentIDs = append(parentIDs, c.ID)
		byID[c.ID] = c
	}

	var replies []*models.Comment
	err = r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, 0, err
	}
	for _, reply := range replies {
		if parent, ok := byID[*reply.ParentID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}

	return comments, total, nil
}

func (r *commentRepository) CountByContent(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("content_id = ? AND content_type = ?", contentID, contentType).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) Ranked(ctx context.Context, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("content_id, content_type, COUNT(*) AS score, MAX(created_at) AS last_at")

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
