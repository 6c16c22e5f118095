package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/testutil"
)

func highlightTestSetup(t *testing.T) (*SQLiteHighlightRepo, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	userRepo := NewSQLiteUserRepo(db)
	sessRepo := NewSQLiteSessionRepo(db)
	hlRepo := NewSQLiteHighlightRepo(db)

	user := testutil.NewTestUser("writer@example.com")
	require.NoError(t, userRepo.Create(ctx, user))
	sess := testutil.NewTestSession(user.ID, domain.TaskEssay, "Topic")
	require.NoError(t, sessRepo.Create(ctx, sess))

	return hlRepo, sess.ID
}

func TestHighlightRepo_CreateAndList(t *testing.T) {
	repo, sessID := highlightTestSetup(t)
	ctx := context.Background()

	h1 := testutil.NewTestHighlight(sessID, 0, 10, 25, domain.SentimentLike, testutil.WithLabel("punchy"))
	h2 := testutil.NewTestHighlight(sessID, 1, 0, 12, domain.SentimentFlag, testutil.WithNote("too vague"))
	require.NoError(t, repo.Create(ctx, h1))
	require.NoError(t, repo.Create(ctx, h2))

	list, err := repo.ListBySession(ctx, sessID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 10, list[0].Start)
	assert.Equal(t, 25, list[0].End)
	assert.Equal(t, "punchy", list[0].Label)
	assert.Equal(t, domain.SentimentFlag, list[1].Sentiment)
	assert.Equal(t, "too vague", list[1].Note)
}

func TestHighlightRepo_Update(t *testing.T) {
	repo, sessID := highlightTestSetup(t)
	ctx := context.Background()

	h := testutil.NewTestHighlight(sessID, 0, 5, 15, domain.SentimentLike)
	require.NoError(t, repo.Create(ctx, h))

	h.Sentiment = domain.SentimentFlag
	h.Label = "cliche"
	require.NoError(t, repo.Update(ctx, h))

	list, err := repo.ListBySession(ctx, sessID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.SentimentFlag, list[0].Sentiment)
	assert.Equal(t, "cliche", list[0].Label)
}

func TestHighlightRepo_Update_NotFound(t *testing.T) {
	repo, sessID := highlightTestSetup(t)
	ctx := context.Background()

	h := testutil.NewTestHighlight(sessID, 0, 0, 5, domain.SentimentLike)
	h.ID = "missing"
	err := repo.Update(ctx, h)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHighlightRepo_Delete(t *testing.T) {
	repo, sessID := highlightTestSetup(t)
	ctx := context.Background()

	h := testutil.NewTestHighlight(sessID, 0, 0, 5, domain.SentimentLike)
	require.NoError(t, repo.Create(ctx, h))
	require.NoError(t, repo.Delete(ctx, h.ID))

	list, err := repo.ListBySession(ctx, sessID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.Delete(ctx, h.ID), ErrNotFound)
}

func TestHighlightRepo_DeleteBySession(t *testing.T) {
	repo, sessID := highlightTestSetup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestHighlight(sessID, 0, 0, 5, domain.SentimentLike)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestHighlight(sessID, 1, 3, 9, domain.SentimentFlag)))

	require.NoError(t, repo.DeleteBySession(ctx, sessID))

	list, err := repo.ListBySession(ctx, sessID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
