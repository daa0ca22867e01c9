// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"koinonia/internal/cache"
	"koinonia/internal/models"

	"gorm.io/gorm"
)

// ContentRepository is the content registry: the store of engageable catalog
// items. The engagement layer consults Exists/OwnerOf before every mutation.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id uint, contentType models.ContentType) (*models.Content, error)
	List(ctx context.Context, contentType models.ContentType, limit, offset int) ([]*models.Content, error)
	Exists(ctx context.Context, id uint, contentType models.ContentType) (bool, error)
	// OwnerOf returns the owning user's ID, or 0 if the content does not exist.
	OwnerOf(ctx context.Context, id uint, contentType models.ContentType) (uint, error)
	Delete(ctx context.Context, id uint, contentType models.ContentType) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) GetByID(ctx context.Context, id uint, contentType models.ContentType) (*models.Content, error) {
	var content models.Content
	err := cache.Aside(ctx, cache.ContentKey(contentType, id), &content, cache.ContentTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Owner").
			Where("type = ?", contentType).
			First(&content, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) List(ctx context.Context, contentType models.ContentType, limit, offset int) ([]*models.Content, error) {
	var contents []*models.Content
	q := r.db.WithContext(ctx).Preload("Owner").Where("published = ?", true)
	if contentType != "" {
		q = q.Where("type = ?", contentType)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&contents).Error
	return contents, err
}

func (r *contentRepository) Exists(ctx context.Context, id uint, contentType models.ContentType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Content{}).
		Where("id = ? AND type = ?", id, contentType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contentRepository) OwnerOf(ctx context.Context, id uint, contentType models.ContentType) (uint, error) {
	var content models.Content
	err := r.db.WithContext(ctx).
		Select("owner_id").
		Where("id = ? AND type = ?", id, contentType).
		First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return content.OwnerID, nil
}

func (r *contentRepository) Delete(ctx context.Context, id uint, contentType models.ContentType) error {
	err := r.db.WithContext(ctx).
		Where("type = ?", contentType).
		Delete(&models.Content{}, id).Error
	if err == nil {
		cache.InvalidateContent(ctx, contentType, id)
	}
	return err
}
