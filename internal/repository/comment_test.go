package repository

import (
	"context"
	"testing"
	"time"

	"koinonia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentRepository_ListByContent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "list_owner")
	author := createTestUser(t, db, "list_author")
	content := createTestContent(t, db, owner, models.ContentTypeMedia)

	now := time.Now().UTC()
	var first *models.Comment
	for i := 0; i < 3; i++ {
		comment := &models.Comment{
			UserID:      author.ID,
			ContentID:   content.ID,
			ContentType: content.Type,
			Content:     "top-level",
			Reactions:   models.ReactionSet{},
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, comment))
		if i == 0 {
			first = comment
		}
	}

	// A reply to the oldest comment.
	reply := &models.Comment{
		UserID:      owner.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		ParentID:    &first.ID,
		Content:     "a reply",
		Reactions:   models.ReactionSet{},
	}
	require.NoError(t, repo.Create(ctx, reply))

	comments, total, err := repo.ListByContent(ctx, content.ID, content.Type, 1, 10)
	require.NoError(t, err)

	// Replies do not count toward the top-level total.
	assert.Equal(t, int64(3), total)
	require.Len(t, comments, 3)

	// Newest first; the reply hangs off its parent.
	assert.True(t, comments[0].CreatedAt.After(comments[2].CreatedAt))
	var parent *models.Comment
	for _, c := range comments {
		if c.ID == first.ID {
			parent = c
		}
	}
	require.NotNil(t, parent)
	require.Len(t, parent.Replies, 1)
	assert.Equal(t, "a reply", parent.Replies[0].Content)

	// Pagination.
	page2, total, err := repo.ListByContent(ctx, content.ID, content.Type, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)

	// CountByContent includes replies.
	all, err := repo.CountByContent(ctx, content.ID, content.Type)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all)
}

func TestCommentRepository_Delete(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "del_owner")
	content := createTestContent(t, db, owner, models.ContentTypeArtist)

	comment := &models.Comment{
		UserID:      owner.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		Content:     "to be removed",
		Reactions:   models.ReactionSet{},
	}
	require.NoError(t, repo.Create(ctx, comment))
	require.NoError(t, repo.Delete(ctx, comment.ID))

	_, err := repo.GetByID(ctx, comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_Ranked(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "crank_owner")
	author := createTestUser(t, db, "crank_author")
	busy := createTestContent(t, db, owner, models.ContentTypeMedia)
	quiet := createTestContent(t, db, owner, models.ContentTypeMedia)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Comment{
			UserID: author.ID, ContentID: busy.ID, ContentType: busy.Type,
			Content: "busy", Reactions: models.ReactionSet{},
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{
		UserID: author.ID, ContentID: quiet.ID, ContentType: quiet.Type,
		Content: "quiet", Reactions: models.ReactionSet{},
	}))

	ranked, err := repo.Ranked(ctx, models.ContentTypeMedia, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, busy.ID, ranked[0].ContentID)
	assert.Equal(t, int64(3), ranked[0].Score)
}

func TestCommentRepository_ReactionsRoundTrip(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "rx_owner")
	content := createTestContent(t, db, owner, models.ContentTypeDevotional)

	comment := &models.Comment{
		UserID:      owner.ID,
		ContentID:   content.ID,
		ContentType: content.Type,
		Content:     "react to me",
		Reactions:   models.ReactionSet{},
	}
	require.NoError(t, repo.Create(ctx, comment))

	comment.Reactions.Toggle("amen", 42)
	require.NoError(t, repo.Update(ctx, comment))

	got, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{42}, got.Reactions["amen"])
}
