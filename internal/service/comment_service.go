package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"koinonia/internal/middleware"
	"koinonia/internal/models"
	"koinonia/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLength = 10000

// CommentService implements comment creation, listing, removal, and reactions.
// Removal is owner-only; moderation tooling goes through a separate surface.
type CommentService struct {
	commentRepo repository.CommentRepository
	contentRepo repository.ContentRepository
	notify      Notify
}

type CreateCommentInput struct {
	UserID      uint
	ContentID   uint
	ContentType models.ContentType
	Content     string
	ParentID    *uint
}

// CommentPage is one page of top-level comments with replies attached.
type CommentPage struct {
	Comments []*models.Comment `json:"comments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func NewCommentService(commentRepo repository.CommentRepository, contentRepo repository.ContentRepository, notify Notify) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		contentRepo: contentRepo,
		notify:      notify,
	}
}

// CreateComment appends a comment. Text is trimmed first; empty or oversized
// text is rejected, and a reply's parent must exist on the same content.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if !models.ValidContentType(in.ContentType) {
		return nil, models.NewValidationError("Unknown content type")
	}

	text := strings.TrimSpace(in.Content)
	if text == "" {
		return nil, models.NewValidationError("Comment content cannot be empty")
	}
	if len(text) > maxCommentLength {
		return nil, models.NewValidationError("Comment content is too long")
	}

	exists, err := s.contentRepo.Exists(ctx, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
		if err != nil {
			return nil, err
		}
		if parent.ContentID != in.ContentID || parent.ContentType != in.ContentType {
			return nil, models.NewValidationError("Parent comment belongs to different content")
		}
	}

	comment := &models.Comment{
		UserID:      in.UserID,
		ContentID:   in.ContentID,
		ContentType: in.ContentType,
		Content:     text,
		ParentID:    in.ParentID,
		Reactions:   models.ReactionSet{},
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	middleware.EngagementAppends.WithLabelValues(string(models.KindComment), "true").Inc()
	s.notifyCommented(ctx, comment)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns one page of top-level comments, newest first, with
// replies attached. Page defaults to 1 and limit to 20, capped at 100.
func (s *CommentService) ListComments(ctx context.Context, contentID uint, contentType models.ContentType, page, limit int) (*CommentPage, error) {
	if !models.ValidContentType(contentType) {
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

	exists, err := s.contentRepo.Exists(ctx, contentID, contentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", contentID)
	}

	comments, total, err := s.commentRepo.ListByContent(ctx, contentID, contentType, page, limit)
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: comments, Total: total, Page: page, Limit: limit}, nil
}

// DeleteComment removes a comment. Only the author may remove it; there is no
// admin override on this path.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Comment", commentID)
	}
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	return nil
}

// ReactToComment toggles the user's reaction tag on a comment and returns the
// updated comment.
func (s *CommentService) ReactToComment(ctx context.Context, commentID, userID uint, tag string) (*models.Comment, error) {
	tag = strings.TrimSpace(strings.ToLower(tag))
	if tag == "" || len(tag) > 32 {
		return nil, models.NewValidationError("Invalid reaction tag")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if err != nil {
		return nil, err
	}

	comment.Reactions.Toggle(tag, userID)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) notifyCommented(ctx context.Context, comment *models.Comment) {
	if s.notify == nil {
		return
	}
	ownerID, err := s.contentRepo.OwnerOf(ctx, comment.ContentID, comment.ContentType)
	if err != nil || ownerID == 0 || ownerID == comment.UserID {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":        "engagement.comment",
		"actor_id":     comment.UserID,
		"content_id":   comment.ContentID,
		"content_type": comment.ContentType,
		"comment_id":   comment.ID,
		"created_at":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal comment notification", "error", err)
		return
	}
	s.notify(ctx, ownerID, string(payload))
}
