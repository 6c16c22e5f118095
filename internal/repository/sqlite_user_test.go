package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/testutil"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	user := testutil.NewTestUser("Writer@Example.COM", testutil.WithPlan(domain.PlanPro))
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "writer@example.com", byID.Email)
	assert.Equal(t, domain.PlanPro, byID.Plan)

	// Lookup normalizes case.
	byEmail, err := repo.GetByEmail(ctx, "WRITER@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestUser("dup@example.com")))
	err := repo.Create(ctx, testutil.NewTestUser("dup@example.com"))
	assert.Error(t, err)
}

func TestUserRepo_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
