package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/testutil"
)

func TestPreferenceRepo_SetGetAndOverwrite(t *testing.T) {
	db := testutil.NewTestDB(t)
	userRepo := NewSQLiteUserRepo(db)
	repo := NewSQLitePreferenceRepo(db)
	ctx := context.Background()

	user := testutil.NewTestUser("writer@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	require.NoError(t, repo.Set(ctx, user.ID, "last_style", "style-1"))

	pref, err := repo.Get(ctx, user.ID, "last_style")
	require.NoError(t, err)
	assert.Equal(t, "style-1", pref.Value)

	// Last write wins.
	require.NoError(t, repo.Set(ctx, user.ID, "last_style", "style-2"))
	pref, err = repo.Get(ctx, user.ID, "last_style")
	require.NoError(t, err)
	assert.Equal(t, "style-2", pref.Value)
}

func TestPreferenceRepo_Get_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	userRepo := NewSQLiteUserRepo(db)
	repo := NewSQLitePreferenceRepo(db)
	ctx := context.Background()

	user := testutil.NewTestUser("writer@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	_, err := repo.Get(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
