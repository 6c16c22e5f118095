package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/testutil"
)

// sessionTestSetup creates the user scaffolding needed by session tests.
func sessionTestSetup(t *testing.T) (*SQLiteSessionRepo, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	userRepo := NewSQLiteUserRepo(db)
	sessRepo := NewSQLiteSessionRepo(db)

	user := testutil.NewTestUser("writer@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	return sessRepo, user.ID
}

func TestSessionRepo_CreateAndGetByID(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, domain.TaskEssay, "Why cities need trees")
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, fetched.ID)
	assert.Equal(t, userID, fetched.UserID)
	assert.Equal(t, domain.TaskEssay, fetched.TaskType)
	assert.Equal(t, "Why cities need trees", fetched.Topic)
	assert.Equal(t, domain.StatusInterview, fetched.Status)
	assert.Equal(t, -1, fetched.SelectedDraftIndex)
	assert.Empty(t, fetched.KeyMaterial)
	assert.Empty(t, fetched.Outline)
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_ListByUser(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	older := testutil.NewTestSession(userID, domain.TaskEssay, "First",
		testutil.WithCreatedAt(time.Now().UTC().Add(-2*time.Hour)))
	newer := testutil.NewTestSession(userID, domain.TaskReview, "Second",
		testutil.WithCreatedAt(time.Now().UTC().Add(-1*time.Hour)))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestSessionRepo_UpdateStatus(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, domain.TaskBlogPost, "Topic")
	require.NoError(t, repo.Create(ctx, sess))

	require.NoError(t, repo.UpdateStatus(ctx, sess.ID, domain.StatusDrafting))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDrafting, fetched.Status)
}

func TestSessionRepo_UpdateMaterial_RoundTripsJSON(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, domain.TaskNewsletter, "Topic")
	require.NoError(t, repo.Create(ctx, sess))

	sess.InterviewSummary = "A summary of the interview."
	sess.KeyMaterial = []string{"point one", "point two"}
	sess.Outline = []domain.OutlineNode{
		{ID: "n1", NodeType: "hook", Description: "Open with the anecdote"},
		{ID: "n2", NodeType: "body", Description: "Develop the argument"},
	}
	sess.Status = domain.StatusDrafting
	require.NoError(t, repo.UpdateMaterial(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "A summary of the interview.", fetched.InterviewSummary)
	assert.Equal(t, []string{"point one", "point two"}, fetched.KeyMaterial)
	require.Len(t, fetched.Outline, 2)
	assert.Equal(t, "hook", fetched.Outline[0].NodeType)
	assert.Equal(t, "Develop the argument", fetched.Outline[1].Description)
	assert.Equal(t, domain.StatusDrafting, fetched.Status)
}

func TestSessionRepo_UpdateSelectedDraft(t *testing.T) {
	repo, userID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, domain.TaskEssay, "Topic")
	require.NoError(t, repo.Create(ctx, sess))

	require.NoError(t, repo.UpdateSelectedDraft(ctx, sess.ID, 2))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.SelectedDraftIndex)
}
