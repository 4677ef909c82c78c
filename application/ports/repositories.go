// Package ports defines the interfaces the application layer depends on.
// Infrastructure packages provide the implementations.
package ports

import (
	"context"

	"userdir-backend/domain/user"
)

// UserRepository is the store-facing contract for user records. The DynamoDB
// implementation owns the readiness flag; every operation fails with a
// NotReady error until connectivity is confirmed (or assumed, in
// fire-and-forget mode).
type UserRepository interface {
	// Initialize establishes readiness. With probe set, connectivity is
	// verified against the store before readiness is granted; without it,
	// readiness is assumed immediately.
	Initialize(ctx context.Context, probe bool) error

	// Ready reports whether the repository accepts operations.
	Ready() bool

	// Create writes the full record as a new item. Unconditional;
	// last-write-wins on key collision.
	Create(ctx context.Context, u *user.User) error

	// GetByUID fetches a record by primary key. Returns (nil, nil) when no
	// record matches.
	GetByUID(ctx context.Context, uid string) (*user.User, error)

	// GetByUsername queries the secondary index. Returns (nil, nil) when no
	// record matches.
	GetByUsername(ctx context.Context, username string) (*user.User, error)

	// Update applies a compiled partial write for the given key. The change
	// set must not address the key attribute.
	Update(ctx context.Context, uid string, changes *user.ChangeSet) error

	// UpdatePassword overwrites login.password with an already-hashed value.
	UpdatePassword(ctx context.Context, uid, hashedPassword string) error

	// Delete removes the record with the given key. Deleting a nonexistent
	// key succeeds.
	Delete(ctx context.Context, uid string) error
}

// EventPublisher publishes user lifecycle events. Implementations must be
// safe to skip entirely; event delivery is best-effort.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, u *user.User) error
	PublishUserDeleted(ctx context.Context, uid string) error
}
