package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"koinonia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopContentRepo(), nil)
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia})
		assertValidationError(t, err)
	})

	t.Run("whitespace-only content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "   \n\t ",
		})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia,
			Content: strings.Repeat("x", maxCommentLength+1),
		})
		assertValidationError(t, err)
	})

	t.Run("unknown content type", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID: 1, ContentID: 1, ContentType: "mixtape", Content: "hi",
		})
		assertValidationError(t, err)
	})

	t.Run("content not found", func(t *testing.T) {
		t.Parallel()
		contentRepo := noopContentRepo()
		contentRepo.existsFn = func(_ context.Context, _ uint, _ models.ContentType) (bool, error) {
			return false, nil
		}
		svc2 := NewCommentService(noopCommentRepo(), contentRepo, nil)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{
			UserID: 1, ContentID: 404, ContentType: models.ContentTypeMedia, Content: "hi",
		})
		assertNotFoundError(t, err)
	})
}

func TestCommentService_CreateComment_ParentChecks(t *testing.T) {
	t.Parallel()

	parentID := uint(10)

	t.Run("missing parent", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "hi", ParentID: &parentID,
		})
		assertNotFoundError(t, err)
	})

	t.Run("parent on different content", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, ContentID: 2, ContentType: models.ContentTypeMedia}, nil
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "hi", ParentID: &parentID,
		})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_Success(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{
			ID: id, Content: "hello", UserID: 1,
			ContentID: 1, ContentType: models.ContentTypeDevotional,
		}, nil
	}

	svc := NewCommentService(commentRepo, noopContentRepo(), nil)
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, ContentID: 1, ContentType: models.ContentTypeDevotional, Content: "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, "hello", comment.Content)
}

func TestCommentService_ListComments_Defaults(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	var gotPage, gotLimit int
	commentRepo.listByContentFn = func(_ context.Context, _ uint, _ models.ContentType, page, limit int) ([]*models.Comment, int64, error) {
		gotPage, gotLimit = page, limit
		return []*models.Comment{{ID: 1}}, 1, nil
	}

	svc := NewCommentService(commentRepo, noopContentRepo(), nil)
	page, err := svc.ListComments(context.Background(), 1, models.ContentTypeMedia, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.ListComments(context.Background(), 1, models.ContentTypeMedia, 3, 500)
	require.NoError(t, err)
	assert.Equal(t, 3, gotPage)
	assert.Equal(t, 100, gotLimit)
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 5}, nil
		}
		deleted := false
		commentRepo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)
		require.NoError(t, svc.DeleteComment(context.Background(), 1, 5))
		assert.True(t, deleted)
	})

	t.Run("non-author rejected", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 5}, nil
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)
		err := svc.DeleteComment(context.Background(), 1, 6)
		assertUnauthorizedError(t, err)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)
		err := svc.DeleteComment(context.Background(), 404, 5)
		assertNotFoundError(t, err)
	})
}

func TestCommentService_ReactToComment(t *testing.T) {
	t.Parallel()

	t.Run("blank tag rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopContentRepo(), nil)
		_, err := svc.ReactToComment(context.Background(), 1, 1, "  ")
		assertValidationError(t, err)
	})

	t.Run("toggle on then off", func(t *testing.T) {
		t.Parallel()
		stored := &models.Comment{ID: 1, UserID: 2, Reactions: models.ReactionSet{}}
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return stored, nil
		}
		commentRepo.updateFn = func(_ context.Context, c *models.Comment) error {
			stored = c
			return nil
		}
		svc := NewCommentService(commentRepo, noopContentRepo(), nil)

		comment, err := svc.ReactToComment(context.Background(), 1, 9, "Amen")
		require.NoError(t, err)
		assert.Contains(t, comment.Reactions["amen"], uint(9))

		comment, err = svc.ReactToComment(context.Background(), 1, 9, "amen")
		require.NoError(t, err)
		assert.NotContains(t, comment.Reactions["amen"], uint(9))
	})
}

func TestCommentService_CreateComment_NotifiesContentOwner(t *testing.T) {
	t.Parallel()

	var notified uint
	notify := func(_ context.Context, userID uint, _ string) { notified = userID }

	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 7
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "hi"}, nil
	}

	svc := NewCommentService(commentRepo, noopContentRepo(), notify)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(99), notified)
}

func TestCommentService_CreateComment_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("insert failed")
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, _ *models.Comment) error { return repoErr }

	svc := NewCommentService(commentRepo, noopContentRepo(), nil)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Content: "hi",
	})
	assert.ErrorIs(t, err, repoErr)
}
