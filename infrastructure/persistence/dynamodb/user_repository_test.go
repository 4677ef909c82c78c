package dynamodb

import (
	"context"
	"testing"

	"userdir-backend/domain/user"
	appErrors "userdir-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Before Initialize confirms connectivity, every operation must fail with
// NotReady without issuing any request. The client is nil here, so reaching
// the store would panic the test.
func TestUserRepository_NotReadyGate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(nil, "USERS", "LOGIN", zap.NewNop())

	assert.False(t, repo.Ready())

	err := repo.Create(ctx, &user.User{UID: "u-1"})
	assert.True(t, appErrors.IsNotReady(err))

	_, err = repo.GetByUID(ctx, "u-1")
	assert.True(t, appErrors.IsNotReady(err))

	_, err = repo.GetByUsername(ctx, "alice")
	assert.True(t, appErrors.IsNotReady(err))

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set("x", "displayName"))
	err = repo.Update(ctx, "u-1", changes)
	assert.True(t, appErrors.IsNotReady(err))

	err = repo.UpdatePassword(ctx, "u-1", "hash")
	assert.True(t, appErrors.IsNotReady(err))

	err = repo.Delete(ctx, "u-1")
	assert.True(t, appErrors.IsNotReady(err))

	err = repo.CreateTable(ctx)
	assert.True(t, appErrors.IsNotReady(err))

	err = repo.DeleteTable(ctx)
	assert.True(t, appErrors.IsNotReady(err))
}

// Without a probe, readiness is assumed immediately. The weak guarantee is
// intentional.
func TestUserRepository_InitializeWithoutProbe(t *testing.T) {
	repo := NewUserRepository(nil, "USERS", "LOGIN", zap.NewNop())

	require.NoError(t, repo.Initialize(context.Background(), false))
	assert.True(t, repo.Ready())
}

func TestUserRepository_EmptySelectorsNeverReachTheStore(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(nil, "USERS", "LOGIN", zap.NewNop())
	require.NoError(t, repo.Initialize(ctx, false))

	_, err := repo.GetByUID(ctx, "")
	assert.True(t, appErrors.IsInvalidSelector(err))

	_, err = repo.GetByUsername(ctx, "")
	assert.True(t, appErrors.IsInvalidSelector(err))

	assert.True(t, appErrors.IsMissingKey(repo.Delete(ctx, "")))
	assert.True(t, appErrors.IsMissingKey(repo.UpdatePassword(ctx, "", "hash")))
	assert.True(t, appErrors.IsMissingKey(repo.Update(ctx, "", user.NewChangeSet())))
}
