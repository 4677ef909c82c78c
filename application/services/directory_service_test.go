package services

import (
	"context"
	"testing"

	"userdir-backend/domain/user"
	appErrors "userdir-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a testify mock for ports.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Initialize(ctx context.Context, probe bool) error {
	args := m.Called(ctx, probe)
	return args.Error(0)
}

func (m *MockUserRepository) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid string) (*user.User, error) {
	args := m.Called(ctx, uid)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*user.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, uid string, changes *user.ChangeSet) error {
	args := m.Called(ctx, uid, changes)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, uid, hashedPassword string) error {
	args := m.Called(ctx, uid, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func newTestService(t *testing.T, repo *MockUserRepository) *DirectoryService {
	t.Helper()

	hasher, err := user.NewHasher("head", "tail")
	require.NoError(t, err)

	mapper := user.NewPolicyMapper(map[string][]string{
		"admin": {"manage_users"},
	})

	return NewDirectoryService(repo, hasher, mapper, nil, nil, zap.NewNop())
}

func TestDirectoryService_CreateUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	var saved *user.User
	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*user.User)
		}).
		Return(nil)

	u, err := svc.CreateUser(ctx, CreateUserInput{
		UID:      "u-1",
		Username: "alice",
		Password: "plaintext-pw",
		Roles:    []string{"admin"},
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, "u-1", u.UID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "plaintext-pw", u.Login.Password)
	assert.NotEmpty(t, u.Login.Password)
	assert.Greater(t, u.CreatedAt, int64(0))
	assert.Equal(t, map[string]bool{"manage_users": true}, u.Policies)
	assert.Same(t, u, saved)

	assert.True(t, svc.VerifyPassword(u, "plaintext-pw"))
	assert.False(t, svc.VerifyPassword(u, "anything-else"))

	repo.AssertExpectations(t)
}

func TestDirectoryService_CreateUser_GeneratesUID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

	u, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "bob",
		Password: "plaintext-pw",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
}

func TestDirectoryService_CreateUser_NotReady(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(appErrors.NewNotReadyError())

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Username: "carol",
		Password: "plaintext-pw",
	})
	assert.True(t, appErrors.IsNotReady(err))
}

func TestDirectoryService_FindUser_InvalidSelector(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	_, err := svc.FindUser(ctx, FindSelector{})
	assert.True(t, appErrors.IsInvalidSelector(err))

	_, err = svc.FindUser(ctx, FindSelector{Username: ""})
	assert.True(t, appErrors.IsInvalidSelector(err))

	repo.AssertNotCalled(t, "GetByUID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestDirectoryService_FindUser_NotFoundIsNil(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	repo.On("GetByUID", ctx, "missing").Return(nil, nil)

	u, err := svc.FindUser(ctx, FindSelector{UID: "missing"})
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestDirectoryService_FindUser_PrefersPrimaryKey(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	repo.On("GetByUID", ctx, "u-1").Return(&user.User{
		UID:   "u-1",
		Roles: []string{"admin"},
	}, nil)

	u, err := svc.FindUser(ctx, FindSelector{UID: "u-1", Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.UID)

	repo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestDirectoryService_FindUser_RecomputesPolicies(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	// Stored policies are stale; derivation from roles wins.
	repo.On("GetByUsername", ctx, "alice").Return(&user.User{
		UID:      "u-1",
		Username: "alice",
		Roles:    []string{"admin"},
		Policies: map[string]bool{"stale_policy": true},
	}, nil)

	u, err := svc.FindUser(ctx, FindSelector{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"manage_users": true}, u.Policies)
}

func TestDirectoryService_UpdateUser_Preconditions(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set("x", "displayName"))

	err := svc.UpdateUser(ctx, "", changes)
	assert.True(t, appErrors.IsMissingKey(err))

	err = svc.UpdateUser(ctx, "u-1", user.NewChangeSet())
	assert.True(t, appErrors.IsNoChanges(err))

	err = svc.UpdateUser(ctx, "u-1", nil)
	assert.True(t, appErrors.IsNoChanges(err))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectoryService_UpdateUser_PasswordPrecedence(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	hasher, err := user.NewHasher("head", "tail")
	require.NoError(t, err)
	expected, err := hasher.Hash("new-password")
	require.NoError(t, err)

	repo.On("UpdatePassword", ctx, "u-1", expected).Return(nil)

	changes := user.NewChangeSet()
	require.NoError(t, changes.SetPassword("new-password"))
	require.NoError(t, changes.Set(1, "anythingElse"))

	require.NoError(t, svc.UpdateUser(ctx, "u-1", changes))

	// The sibling field is never written.
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDirectoryService_UpdateUser_RejectsNonStringPassword(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set(12345, "login", "password"))

	err := svc.UpdateUser(ctx, "u-1", changes)
	assert.True(t, appErrors.IsValidation(err))

	// The raw value must never reach the store through either path.
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectoryService_UpdateUser_RejectsWholeCredentialObject(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set(map[string]interface{}{"password": "plaintext"}, "login"))

	err := svc.UpdateUser(ctx, "u-1", changes)
	assert.True(t, appErrors.IsValidation(err))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectoryService_UpdateUser_RejectsKeyChanges(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set("other-uid", user.KeyAttribute))

	err := svc.UpdateUser(ctx, "u-1", changes)
	assert.True(t, appErrors.IsValidation(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectoryService_UpdateUser_GeneralPath(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	changes := user.NewChangeSet()
	require.NoError(t, changes.Set("a@b.com", "profile", "email"))

	repo.On("Update", ctx, "u-1", changes).Return(nil)

	require.NoError(t, svc.UpdateUser(ctx, "u-1", changes))
	repo.AssertExpectations(t)
}

func TestDirectoryService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestService(t, repo)

	err := svc.DeleteUser(ctx, "")
	assert.True(t, appErrors.IsMissingKey(err))

	repo.On("Delete", ctx, "u-1").Return(nil)
	assert.NoError(t, svc.DeleteUser(ctx, "u-1"))
	repo.AssertExpectations(t)
}
