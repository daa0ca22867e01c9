package service

import (
	"context"
	"testing"
	"time"

	"koinonia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engagementRepoStub is a stub for repository.EngagementRepository.
type engagementRepoStub struct {
	toggleFn         func(context.Context, uint, uint, models.ContentType, models.Kind) (bool, error)
	appendFn         func(context.Context, *models.Engagement) error
	countFn          func(context.Context, uint, models.ContentType, models.Kind) (int64, error)
	countableViewsFn func(context.Context, uint, models.ContentType) (int64, error)
	hasViewedFn      func(context.Context, uint, uint, models.ContentType) (bool, error)
	activeKindsFn    func(context.Context, uint, uint, models.ContentType) (map[models.Kind]bool, error)
	rankedFn         func(context.Context, models.Kind, models.ContentType, time.Time, int) ([]models.RankedContent, error)
}

func (s *engagementRepoStub) Toggle(ctx context.Context, userID, contentID uint, contentType models.ContentType, kind models.Kind) (bool, error) {
	return s.toggleFn(ctx, userID, contentID, contentType, kind)
}
func (s *engagementRepoStub) Append(ctx context.Context, record *models.Engagement) error {
	return s.appendFn(ctx, record)
}
func (s *engagementRepoStub) Count(ctx context.Context, contentID uint, contentType models.ContentType, kind models.Kind) (int64, error) {
	return s.countFn(ctx, contentID, contentType, kind)
}
func (s *engagementRepoStub) CountableViews(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error) {
	return s.countableViewsFn(ctx, contentID, contentType)
}
func (s *engagementRepoStub) HasViewed(ctx context.Context, userID, contentID uint, contentType models.ContentType) (bool, error) {
	return s.hasViewedFn(ctx, userID, contentID, contentType)
}
func (s *engagementRepoStub) ActiveKinds(ctx context.Context, userID, contentID uint, contentType models.ContentType) (map[models.Kind]bool, error) {
	return s.activeKindsFn(ctx, userID, contentID, contentType)
}
func (s *engagementRepoStub) Ranked(ctx context.Context, kind models.Kind, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error) {
	return s.rankedFn(ctx, kind, contentType, since, limit)
}

func noopEngagementRepo() *engagementRepoStub {
	return &engagementRepoStub{
		toggleFn: func(_ context.Context, _, _ uint, _ models.ContentType, _ models.Kind) (bool, error) {
			return true, nil
		},
		appendFn: func(_ context.Context, _ *models.Engagement) error { return nil },
		countFn: func(_ context.Context, _ uint, _ models.ContentType, _ models.Kind) (int64, error) {
			return 0, nil
		},
		countableViewsFn: func(_ context.Context, _ uint, _ models.ContentType) (int64, error) {
			return 0, nil
		},
		hasViewedFn: func(_ context.Context, _, _ uint, _ models.ContentType) (bool, error) {
			return false, nil
		},
		activeKindsFn: func(_ context.Context, _, _ uint, _ models.ContentType) (map[models.Kind]bool, error) {
			return map[models.Kind]bool{}, nil
		},
		rankedFn: func(_ context.Context, _ models.Kind, _ models.ContentType, _ time.Time, _ int) ([]models.RankedContent, error) {
			return nil, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uint) (*models.Comment, error)
	listByContentFn  func(context.Context, uint, models.ContentType, int, int) ([]*models.Comment, int64, error)
	countByContentFn func(context.Context, uint, models.ContentType) (int64, error)
	updateFn         func(context.Context, *models.Comment) error
	deleteFn         func(context.Context, uint) error
	rankedFn         func(context.Context, models.ContentType, time.Time, int) ([]models.RankedContent, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByContent(ctx context.Context, contentID uint, contentType models.ContentType, page, limit int) ([]*models.Comment, int64, error) {
	return s.listByContentFn(ctx, contentID, contentType, page, limit)
}
func (s *commentRepoStub) CountByContent(ctx context.Context, contentID uint, contentType models.ContentType) (int64, error) {
	return s.countByContentFn(ctx, contentID, contentType)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Ranked(ctx context.Context, contentType models.ContentType, since time.Time, limit int) ([]models.RankedContent, error) {
	return s.rankedFn(ctx, contentType, since, limit)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByContentFn: func(_ context.Context, _ uint, _ models.ContentType, _, _ int) ([]*models.Comment, int64, error) {
			return nil, 0, nil
		},
		countByContentFn: func(_ context.Context, _ uint, _ models.ContentType) (int64, error) {
			return 0, nil
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		rankedFn: func(_ context.Context, _ models.ContentType, _ time.Time, _ int) ([]models.RankedContent, error) {
			return nil, nil
		},
	}
}

// contentRepoStub is a stub for repository.ContentRepository.
type contentRepoStub struct {
	createFn  func(context.Context, *models.Content) error
	getByIDFn func(context.Context, uint, models.ContentType) (*models.Content, error)
	listFn    func(context.Context, models.ContentType, int, int) ([]*models.Content, error)
	existsFn  func(context.Context, uint, models.ContentType) (bool, error)
	ownerOfFn func(context.Context, uint, models.ContentType) (uint, error)
	deleteFn  func(context.Context, uint, models.ContentType) error
}

func (s *contentRepoStub) Create(ctx context.Context, content *models.Content) error {
	return s.createFn(ctx, content)
}
func (s *contentRepoStub) GetByID(ctx context.Context, id uint, contentType models.ContentType) (*models.Content, error) {
	return s.getByIDFn(ctx, id, contentType)
}
func (s *contentRepoStub) List(ctx context.Context, contentType models.ContentType, limit, offset int) ([]*models.Content, error) {
	return s.listFn(ctx, contentType, limit, offset)
}
func (s *contentRepoStub) Exists(ctx context.Context, id uint, contentType models.ContentType) (bool, error) {
	return s.existsFn(ctx, id, contentType)
}
func (s *contentRepoStub) OwnerOf(ctx context.Context, id uint, contentType models.ContentType) (uint, error) {
	return s.ownerOfFn(ctx, id, contentType)
}
func (s *contentRepoStub) Delete(ctx context.Context, id uint, contentType models.ContentType) error {
	return s.deleteFn(ctx, id, contentType)
}

func noopContentRepo() *contentRepoStub {
	return &contentRepoStub{
		createFn: func(_ context.Context, _ *models.Content) error { return nil },
		getByIDFn: func(_ context.Context, id uint, ct models.ContentType) (*models.Content, error) {
			return &models.Content{ID: id, Type: ct}, nil
		},
		listFn: func(_ context.Context, _ models.ContentType, _, _ int) ([]*models.Content, error) {
			return nil, nil
		},
		existsFn:  func(_ context.Context, _ uint, _ models.ContentType) (bool, error) { return true, nil },
		ownerOfFn: func(_ context.Context, _ uint, _ models.ContentType) (uint, error) { return 99, nil },
		deleteFn:  func(_ context.Context, _ uint, _ models.ContentType) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertInvalidOperationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeInvalidOperation)
}
