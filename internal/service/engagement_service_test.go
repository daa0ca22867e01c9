package service

import (
	"context"
	"errors"
	"testing"

	"koinonia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_Toggle_Validation(t *testing.T) {
	t.Parallel()

	svc := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), noopContentRepo(), nil, nil)
	ctx := context.Background()

	t.Run("unknown content type", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Toggle(ctx, ToggleInput{UserID: 1, ContentID: 1, ContentType: "mixtape", Kind: models.KindLike})
		assertValidationError(t, err)
	})

	t.Run("non-toggleable kind", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Toggle(ctx, ToggleInput{UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Kind: models.KindView})
		assertValidationError(t, err)
	})

	t.Run("content not found", func(t *testing.T) {
		t.Parallel()
		contentRepo := noopContentRepo()
		contentRepo.existsFn = func(_ context.Context, _ uint, _ models.ContentType) (bool, error) {
			return false, nil
		}
		svc2 := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), contentRepo, nil, nil)
		_, err := svc2.Toggle(ctx, ToggleInput{UserID: 1, ContentID: 404, ContentType: models.ContentTypeMedia, Kind: models.KindLike})
		assertNotFoundError(t, err)
	})
}

func TestEngagementService_Toggle_SelfFollow(t *testing.T) {
	t.Parallel()

	contentRepo := noopContentRepo()
	contentRepo.ownerOfFn = func(_ context.Context, _ uint, _ models.ContentType) (uint, error) {
		return 7, nil
	}
	svc := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), contentRepo, nil, nil)

	_, err := svc.Toggle(context.Background(), ToggleInput{
		UserID: 7, ContentID: 1, ContentType: models.ContentTypeArtist, Kind: models.KindFollow,
	})
	assertInvalidOperationError(t, err)

	// Liking your own content stays allowed.
	result, err := svc.Toggle(context.Background(), ToggleInput{
		UserID: 7, ContentID: 1, ContentType: models.ContentTypeArtist, Kind: models.KindLike,
	})
	require.NoError(t, err)
	assert.True(t, result.Active)
}

func TestEngagementService_Toggle_ReturnsRecomputedCount(t *testing.T) {
	t.Parallel()

	engagementRepo := noopEngagementRepo()
	engagementRepo.toggleFn = func(_ context.Context, _, _ uint, _ models.ContentType, _ models.Kind) (bool, error) {
		return true, nil
	}
	engagementRepo.countFn = func(_ context.Context, _ uint, _ models.ContentType, _ models.Kind) (int64, error) {
		return 12, nil
	}

	svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), nil, nil)
	result, err := svc.Toggle(context.Background(), ToggleInput{
		UserID: 1, ContentID: 5, ContentType: models.ContentTypeDevotional, Kind: models.KindBookmark,
	})
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, int64(12), result.Count)
}

func TestEngagementService_Toggle_NotifiesOwnerOnActivate(t *testing.T) {
	t.Parallel()

	t.Run("activation notifies owner", func(t *testing.T) {
		t.Parallel()
		var notified uint
		notify := func(_ context.Context, userID uint, _ string) { notified = userID }
		svc := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), noopContentRepo(), nil, notify)

		_, err := svc.Toggle(context.Background(), ToggleInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Kind: models.KindLike,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(99), notified)
	})

	t.Run("deactivation stays silent", func(t *testing.T) {
		t.Parallel()
		engagementRepo := noopEngagementRepo()
		engagementRepo.toggleFn = func(_ context.Context, _, _ uint, _ models.ContentType, _ models.Kind) (bool, error) {
			return false, nil
		}
		called := false
		notify := func(_ context.Context, _ uint, _ string) { called = true }
		svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), nil, notify)

		_, err := svc.Toggle(context.Background(), ToggleInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Kind: models.KindLike,
		})
		require.NoError(t, err)
		assert.False(t, called)
	})
}

func TestEngagementService_RecordView_Policy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		prior         bool
		duration      int
		complete      bool
		wantCountable bool
	}{
		{"first view always counts", false, 0, false, true},
		{"repeat short view does not count", true, 5, false, false},
		{"repeat complete view counts", true, 5, true, true},
		{"repeat long view counts", true, 45, false, true},
		{"repeat at threshold counts", true, 30, false, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engagementRepo := noopEngagementRepo()
			engagementRepo.hasViewedFn = func(_ context.Context, _, _ uint, _ models.ContentType) (bool, error) {
				return tc.prior, nil
			}
			var appended *models.Engagement
			engagementRepo.appendFn = func(_ context.Context, record *models.Engagement) error {
				appended = record
				return nil
			}

			svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), DefaultViewPolicy(30), nil)
			record, err := svc.RecordView(context.Background(), ViewInput{
				UserID: 1, ContentID: 1, ContentType: models.ContentTypePodcast,
				DurationSeconds: tc.duration, IsComplete: tc.complete,
			})
			require.NoError(t, err)
			require.NotNil(t, appended)
			assert.Equal(t, tc.wantCountable, record.Countable)
			assert.Equal(t, models.KindView, record.Kind)
		})
	}
}

func TestEngagementService_RecordView_Validation(t *testing.T) {
	t.Parallel()

	svc := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), noopContentRepo(), nil, nil)

	_, err := svc.RecordView(context.Background(), ViewInput{
		UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, DurationSeconds: -1,
	})
	assertValidationError(t, err)
}

func TestEngagementService_RecordShare(t *testing.T) {
	t.Parallel()

	t.Run("blank platform rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewEngagementService(noopEngagementRepo(), noopCommentRepo(), noopContentRepo(), nil, nil)
		_, err := svc.RecordShare(context.Background(), ShareInput{
			UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Platform: "   ",
		})
		assertValidationError(t, err)
	})

	t.Run("share appended with trimmed platform", func(t *testing.T) {
		t.Parallel()
		engagementRepo := noopEngagementRepo()
		var appended *models.Engagement
		engagementRepo.appendFn = func(_ context.Context, record *models.Engagement) error {
			appended = record
			return nil
		}
		svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), nil, nil)
		record, err := svc.RecordShare(context.Background(), ShareInput{
			UserID: 1, ContentID: 2, ContentType: models.ContentTypeEbook, Platform: " whatsapp ",
		})
		require.NoError(t, err)
		require.NotNil(t, appended)
		assert.Equal(t, "whatsapp", record.Platform)
		assert.Equal(t, models.KindShare, record.Kind)
	})
}

func TestEngagementService_Count_RoutesByKind(t *testing.T) {
	t.Parallel()

	engagementRepo := noopEngagementRepo()
	engagementRepo.countFn = func(_ context.Context, _ uint, _ models.ContentType, kind models.Kind) (int64, error) {
		require.Equal(t, models.KindLike, kind)
		return 3, nil
	}
	engagementRepo.countableViewsFn = func(_ context.Context, _ uint, _ models.ContentType) (int64, error) {
		return 7, nil
	}
	commentRepo := noopCommentRepo()
	commentRepo.countByContentFn = func(_ context.Context, _ uint, _ models.ContentType) (int64, error) {
		return 5, nil
	}

	svc := NewEngagementService(engagementRepo, commentRepo, noopContentRepo(), nil, nil)
	ctx := context.Background()

	likes, err := svc.Count(ctx, 1, models.ContentTypeMedia, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, int64(3), likes)

	views, err := svc.Count(ctx, 1, models.ContentTypeMedia, models.KindView)
	require.NoError(t, err)
	assert.Equal(t, int64(7), views)

	comments, err := svc.Count(ctx, 1, models.ContentTypeMedia, models.KindComment)
	require.NoError(t, err)
	assert.Equal(t, int64(5), comments)
}

func TestEngagementService_Summary(t *testing.T) {
	t.Parallel()

	engagementRepo := noopEngagementRepo()
	engagementRepo.countFn = func(_ context.Context, _ uint, _ models.ContentType, _ models.Kind) (int64, error) {
		return 2, nil
	}
	engagementRepo.activeKindsFn = func(_ context.Context, userID, _ uint, _ models.ContentType) (map[models.Kind]bool, error) {
		require.Equal(t, uint(4), userID)
		return map[models.Kind]bool{
			models.KindLike:     true,
			models.KindBookmark: false,
			models.KindFollow:   false,
		}, nil
	}

	svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), nil, nil)

	t.Run("authenticated viewer gets state", func(t *testing.T) {
		t.Parallel()
		summary, err := svc.Summary(context.Background(), 1, models.ContentTypeMedia, 4)
		require.NoError(t, err)
		assert.Len(t, summary.Counts, 6)
		assert.True(t, summary.ViewerState[models.KindLike])
		assert.False(t, summary.ViewerState[models.KindFollow])
	})

	t.Run("anonymous viewer gets all-false state", func(t *testing.T) {
		t.Parallel()
		summary, err := svc.Summary(context.Background(), 1, models.ContentTypeMedia, 0)
		require.NoError(t, err)
		for _, k := range models.ToggleableKinds {
			assert.False(t, summary.ViewerState[k])
		}
	})
}

func TestEngagementService_Toggle_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("connection reset")
	engagementRepo := noopEngagementRepo()
	engagementRepo.toggleFn = func(_ context.Context, _, _ uint, _ models.ContentType, _ models.Kind) (bool, error) {
		return false, repoErr
	}
	svc := NewEngagementService(engagementRepo, noopCommentRepo(), noopContentRepo(), nil, nil)

	_, err := svc.Toggle(context.Background(), ToggleInput{
		UserID: 1, ContentID: 1, ContentType: models.ContentTypeMedia, Kind: models.KindLike,
	})
	assert.ErrorIs(t, err, repoErr)
}
