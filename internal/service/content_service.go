package service

import (
	"context"
	"errors"
	"strings"

	"koinonia/internal/models"
	"koinonia/internal/repository"

	"gorm.io/gorm"
)

// ContentService manages the catalog of engageable items.
type ContentService struct {
	contentRepo repository.ContentRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateContentInput struct {
	OwnerID     uint
	Type        models.ContentType
	Title       string
	Description string
	MediaURL    string
	Published   bool
}

func NewContentService(contentRepo repository.ContentRepository, isAdmin func(ctx context.Context, userID uint) (bool, error)) *ContentService {
	return &ContentService{contentRepo: contentRepo, isAdmin: isAdmin}
}

func (s *ContentService) CreateContent(ctx context.Context, in CreateContentInput) (*models.Content, error) {
	if !models.ValidContentType(in.Type) {
		return nil, models.NewValidationError("Unknown content type")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > 200 {
		return nil, models.NewValidationError("Title is too long")
	}

	content := &models.Content{
		Type:        in.Type,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		MediaURL:    strings.TrimSpace(in.MediaURL),
		OwnerID:     in.OwnerID,
		Published:   in.Published,
	}
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *ContentService) GetContent(ctx context.Context, id uint, contentType models.ContentType) (*models.Content, error) {
	if !models.ValidContentType(contentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	content, err := s.contentRepo.GetByID(ctx, id, contentType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Content", id)
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// ListContent returns published items, newest first. An empty contentType
// spans all catalogs.
func (s *ContentService) ListContent(ctx context.Context, contentType models.ContentType, page, limit int) ([]*models.Content, error) {
	if contentType != "" && !models.ValidContentType(contentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.contentRepo.List(ctx, contentType, limit, (page-1)*limit)
}

// DeleteContent removes a catalog item. The owner or an admin may delete.
func (s *ContentService) DeleteContent(ctx context.Context, id uint, contentType models.ContentType, userID uint) error {
	if !models.ValidContentType(contentType) {
		return models.NewValidationError("Unknown content type")
	}

	ownerID, err := s.contentRepo.OwnerOf(ctx, id, contentType)
	if err != nil {
		return err
	}
	if ownerID == 0 {
		return models.NewNotFoundError("Content", id)
	}

	if ownerID != userID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, userID)
			if err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own content")
		}
	}

	return s.contentRepo.Delete(ctx, id, contentType)
}
