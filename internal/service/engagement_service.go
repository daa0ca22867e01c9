package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"koinonia/internal/middleware"
	"koinonia/internal/models"
	"koinonia/internal/repository"
)

// Notify is a fire-and-forget callback informing a user of an engagement
// event. Failures are logged and never affect the mutation result.
type Notify func(ctx context.Context, userID uint, payload string)

// EngagementService implements the engagement ledger operations: idempotent
// toggles, append-only events, and count reads.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	commentRepo    repository.CommentRepository
	contentRepo    repository.ContentRepository
	viewPolicy     ViewPolicy
	notify         Notify
}

type ToggleInput struct {
	UserID      uint
	ContentID   uint
	ContentType models.ContentType
	Kind        models.Kind
}

type ViewInput struct {
	UserID          uint
	ContentID       uint
	ContentType     models.ContentType
	DurationSeconds int
	IsComplete      bool
}

type ShareInput struct {
	UserID      uint
	ContentID   uint
	ContentType models.ContentType
	Platform    string
}

func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	commentRepo repository.CommentRepository,
	contentRepo repository.ContentRepository,
	viewPolicy ViewPolicy,
	notify Notify,
) *EngagementService {
	if viewPolicy == nil {
		viewPolicy = DefaultViewPolicy(30)
	}
	return &EngagementService{
		engagementRepo: engagementRepo,
		commentRepo:    commentRepo,
		contentRepo:    contentRepo,
		viewPolicy:     viewPolicy,
		notify:         notify,
	}
}

// Toggle flips the actor's state for a toggleable kind and returns the new
// state plus the content's post-mutation count, recomputed from the ledger.
func (s *EngagementService) Toggle(ctx context.Context, in ToggleInput) (*models.ToggleResult, error) {
	if !models.ValidContentType(in.ContentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	if !in.Kind.Toggleable() {
		return nil, models.NewValidationError("Kind is not toggleable")
	}

	exists, err := s.contentRepo.Exists(ctx, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	ownerID, err := s.contentRepo.OwnerOf(ctx, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}
	if in.Kind == models.KindFollow && ownerID == in.UserID {
		return nil, models.NewInvalidOperationError("You cannot follow your own content")
	}

	active, err := s.engagementRepo.Toggle(ctx, in.UserID, in.ContentID, in.ContentType, in.Kind)
	if err != nil {
		return nil, err
	}

	count, err := s.engagementRepo.Count(ctx, in.ContentID, in.ContentType, in.Kind)
	if err != nil {
		return nil, err
	}

	state := "off"
	if active {
		state = "on"
	}
	middleware.EngagementToggles.WithLabelValues(string(in.Kind), state).Inc()

	if active && ownerID != 0 && ownerID != in.UserID {
		s.dispatch(ctx, ownerID, in.Kind, in.ContentID, in.ContentType, in.UserID)
	}

	return &models.ToggleResult{Active: active, Count: count}, nil
}

// RecordView appends a view event. Whether the event counts toward the view
// total is decided here, by the pluggable policy, and frozen on the record.
func (s *EngagementService) RecordView(ctx context.Context, in ViewInput) (*models.Engagement, error) {
	if !models.ValidContentType(in.ContentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	if in.DurationSeconds < 0 {
		return nil, models.NewValidationError("Duration must not be negative")
	}

	exists, err := s.contentRepo.Exists(ctx, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	prior, err := s.engagementRepo.HasViewed(ctx, in.UserID, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}

	record := &models.Engagement{
		UserID:          in.UserID,
		ContentID:       in.ContentID,
		ContentType:     in.ContentType,
		Kind:            models.KindView,
		DurationSeconds: in.DurationSeconds,
		IsComplete:      in.IsComplete,
		Countable:       s.viewPolicy(prior, in.DurationSeconds, in.IsComplete),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.engagementRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	middleware.EngagementAppends.WithLabelValues(string(models.KindView), strconv.FormatBool(record.Countable)).Inc()
	return record, nil
}

// RecordShare appends a share event for a named platform.
func (s *EngagementService) RecordShare(ctx context.Context, in ShareInput) (*models.Engagement, error) {
	if !models.ValidContentType(in.ContentType) {
		return nil, models.NewValidationError("Unknown content type")
	}
	platform := strings.TrimSpace(in.Platform)
	if platform == "" {
		return nil, models.NewValidationError("Platform is required")
	}

	exists, err := s.contentRepo.Exists(ctx, in.ContentID, in.ContentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", in.ContentID)
	}

	record := &models.Engagement{
		UserID:      in.UserID,
		ContentID:   in.ContentID,
		ContentType: in.ContentType,
		Kind:        models.KindShare,
		Platform:    platform,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.engagementRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	middleware.EngagementAppends.WithLabelValues(string(models.KindShare), "true").Inc()
	return record, nil
}

// Count returns the committed ledger count for one kind. Views report only
// countable events; comments are counted from their own table.
func (s *EngagementService) Count(ctx context.Context, contentID uint, contentType models.ContentType, kind models.Kind) (int64, error) {
	if !models.ValidContentType(contentType) {
		return 0, models.NewValidationError("Unknown content type")
	}
	if !models.ValidKind(kind) {
		return 0, models.NewValidationError("Unknown kind")
	}

	switch kind {
	case models.KindComment:
		return s.commentRepo.CountByContent(ctx, contentID, contentType)
	case models.KindView:
		return s.engagementRepo.CountableViews(ctx, contentID, contentType)
	default:
		return s.engagementRepo.Count(ctx, contentID, contentType, kind)
	}
}

// Summary returns per-kind counts for a content item plus the viewer's active
// state per toggleable kind. userID 0 means an anonymous caller.
func (s *EngagementService) Summary(ctx context.Context, contentID uint, contentType models.ContentType, userID uint) (*models.EngagementSummary, error) {
	if !models.ValidContentType(contentType) {
		return nil, models.NewValidationError("Unknown content type")
	}

	exists, err := s.contentRepo.Exists(ctx, contentID, contentType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Content", contentID)
	}

	summary := &models.EngagementSummary{
		ContentID:   contentID,
		ContentType: contentType,
		Counts:      make(map[models.Kind]int64, 6),
		ViewerState: make(map[models.Kind]bool, len(models.ToggleableKinds)),
	}

	for _, kind := range []models.Kind{
		models.KindLike, models.KindBookmark, models.KindFollow,
		models.KindView, models.KindComment, models.KindShare,
	} {
		count, err := s.Count(ctx, contentID, contentType, kind)
		if err != nil {
			return nil, err
		}
		summary.Counts[kind] = count
	}

	if userID != 0 {
		active, err := s.engagementRepo.ActiveKinds(ctx, userID, contentID, contentType)
		if err != nil {
			return nil, err
		}
		summary.ViewerState = active
	} else {
		for _, k := range models.ToggleableKinds {
			summary.ViewerState[k] = false
		}
	}

	return summary, nil
}

func (s *EngagementService) dispatch(ctx context.Context, ownerID uint, kind models.Kind, contentID uint, contentType models.ContentType, actorID uint) {
	if s.notify == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":        "engagement." + string(kind),
		"actor_id":     actorID,
		"content_id":   contentID,
		"content_type": contentType,
		"created_at":   time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal engagement notification", "error", err)
		return
	}
	s.notify(ctx, ownerID, string(payload))
}
