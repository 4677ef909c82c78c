// Package services contains the application-level orchestration between the
// HTTP surface and the user repository.
package services

import (
	"context"
	"time"

	"userdir-backend/application/ports"
	"userdir-backend/domain/user"
	"userdir-backend/pkg/errors"
	"userdir-backend/pkg/observability"
	"userdir-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FindSelector identifies a user for lookup: primary key or secondary key.
// Exactly one lookup strategy is chosen, with the primary key winning when
// both are supplied.
type FindSelector struct {
	UID      string
	Username string
}

// CreateUserInput carries the caller-supplied fields for a new user record.
type CreateUserInput struct {
	UID      string
	Username string
	Password string
	Roles    []string
}

// DirectoryService exposes the user directory operations. It enforces the
// lookup and update preconditions, hashes passwords, derives policies and
// routes password changes through their dedicated path. The repository is the
// sole arbiter of per-record atomicity.
type DirectoryService struct {
	repo     ports.UserRepository
	hasher   *user.Hasher
	policies *user.PolicyMapper
	events   ports.EventPublisher
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDirectoryService creates a directory service. events and metrics may be
// nil; both are best-effort.
func NewDirectoryService(
	repo ports.UserRepository,
	hasher *user.Hasher,
	policies *user.PolicyMapper,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		repo:     repo,
		hasher:   hasher,
		policies: policies,
		events:   events,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateUser stamps createdAt, hashes the password, derives the initial
// policy set and writes the record. The write is unconditional: the store's
// key uniqueness is the only collision guard.
func (s *DirectoryService) CreateUser(ctx context.Context, input CreateUserInput) (u *user.User, err error) {
	defer s.record(ctx, "CreateUser", time.Now(), &err)

	uid := input.UID
	if uid == "" {
		uid = uuid.New().String()
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	u = &user.User{
		UID:       uid,
		Username:  input.Username,
		Login:     user.Login{Password: hashed},
		Roles:     input.Roles,
		CreatedAt: utils.NowMillis(),
		Policies:  s.policies.Derive(input.Roles),
	}

	if err = s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("uid", u.UID),
		zap.String("username", u.Username),
		zap.Strings("roles", u.Roles),
	)

	if s.events != nil {
		if pubErr := s.events.PublishUserCreated(ctx, u); pubErr != nil {
			s.logger.Warn("Failed to publish UserCreated event",
				zap.String("uid", u.UID),
				zap.Error(pubErr),
			)
		}
	}

	return u, nil
}

// FindUser looks a user up by primary key or by username. A missing record is
// (nil, nil), never an error. On match the policy set is recomputed from the
// stored roles.
func (s *DirectoryService) FindUser(ctx context.Context, selector FindSelector) (u *user.User, err error) {
	defer s.record(ctx, "FindUser", time.Now(), &err)

	if selector.UID == "" && selector.Username == "" {
		return nil, errors.NewInvalidSelectorError("must specify uid or username")
	}

	if selector.UID != "" {
		u, err = s.repo.GetByUID(ctx, selector.UID)
	} else {
		u, err = s.repo.GetByUsername(ctx, selector.Username)
	}
	if err != nil || u == nil {
		return nil, err
	}

	u.Policies = s.policies.Derive(u.Roles)
	return u, nil
}

// UpdateUser applies a partial update to the record identified by uid.
//
// A change set carrying a plaintext login.password routes exclusively through
// the password path; every other field in the same call is ignored. Any other
// change addressing the credential attribute is rejected, so an unhashed
// value can never reach the store through the general path. Changes
// addressing the primary key attribute are rejected outright; key rotation is
// not an update.
func (s *DirectoryService) UpdateUser(ctx context.Context, uid string, changes *user.ChangeSet) (err error) {
	defer s.record(ctx, "UpdateUser", time.Now(), &err)

	if uid == "" {
		return errors.NewMissingKeyError()
	}
	if changes.Empty() {
		return errors.NewNoChangesError()
	}

	if plaintext, ok := changes.Password(); ok {
		if changes.Len() > 1 {
			s.logger.Debug("Password change takes precedence, ignoring other fields",
				zap.String("uid", uid),
				zap.Int("ignored", changes.Len()-1),
			)
		}
		return s.updatePassword(ctx, uid, plaintext)
	}

	if changes.Targets(user.CredentialAttribute) {
		return errors.NewValidationError("credential changes must supply a plaintext password string at login.password")
	}
	if changes.Targets(user.KeyAttribute) {
		return errors.NewValidationError("change set must not address the primary key")
	}

	return s.repo.Update(ctx, uid, changes)
}

// UpdatePassword rehashes plaintext and overwrites the stored credential.
func (s *DirectoryService) UpdatePassword(ctx context.Context, uid, plaintext string) (err error) {
	defer s.record(ctx, "UpdatePassword", time.Now(), &err)

	if uid == "" {
		return errors.NewMissingKeyError()
	}
	return s.updatePassword(ctx, uid, plaintext)
}

func (s *DirectoryService) updatePassword(ctx context.Context, uid, plaintext string) error {
	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, uid, hashed); err != nil {
		return err
	}
	s.logger.Info("Password updated", zap.String("uid", uid))
	return nil
}

// DeleteUser removes exactly the record matching uid. Deleting a nonexistent
// key succeeds, matching the store's delete semantics.
func (s *DirectoryService) DeleteUser(ctx context.Context, uid string) (err error) {
	defer s.record(ctx, "DeleteUser", time.Now(), &err)

	if uid == "" {
		return errors.NewMissingKeyError()
	}
	if err = s.repo.Delete(ctx, uid); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.String("uid", uid))

	if s.events != nil {
		if pubErr := s.events.PublishUserDeleted(ctx, uid); pubErr != nil {
			s.logger.Warn("Failed to publish UserDeleted event",
				zap.String("uid", uid),
				zap.Error(pubErr),
			)
		}
	}

	return nil
}

// VerifyPassword compares candidate against the stored hash under the current
// salt configuration. Pure; no store access, no side effects.
func (s *DirectoryService) VerifyPassword(u *user.User, candidate string) bool {
	return s.hasher.Verify(u.Login.Password, candidate)
}

// DerivePolicies maps role names to the granted policy flag set.
func (s *DirectoryService) DerivePolicies(roles []string) map[string]bool {
	return s.policies.Derive(roles)
}

// Ready reports whether the underlying store connection is usable.
func (s *DirectoryService) Ready() bool {
	return s.repo.Ready()
}

// record emits operation metrics keyed by the deferred error.
func (s *DirectoryService) record(ctx context.Context, operation string, start time.Time, err *error) {
	s.metrics.RecordOperation(ctx, operation, time.Since(start), *err == nil)
}
