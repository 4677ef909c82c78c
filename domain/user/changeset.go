package user

import (
	"strings"

	"userdir-backend/pkg/errors"
)

// MaxChangeDepth is the deepest attribute path a partial update may address.
const MaxChangeDepth = 3

// Change is one desired field modification: an attribute path and the literal
// new value. Paths are explicit, so no runtime shape inspection of the value
// is ever needed downstream.
type Change struct {
	Path  []string
	Value interface{}
}

// ChangeSet is an ordered sequence of changes for one partial update.
// Insertion order is preserved, which makes compilation deterministic.
type ChangeSet struct {
	changes []Change
}

// NewChangeSet creates an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{}
}

// Set appends a change for the attribute path. Paths must have between one
// and MaxChangeDepth non-empty segments.
func (c *ChangeSet) Set(value interface{}, path ...string) error {
	if len(path) == 0 {
		return errors.NewValidationError("change path must not be empty")
	}
	if len(path) > MaxChangeDepth {
		return errors.NewValidationError("change path exceeds maximum depth")
	}
	for _, segment := range path {
		if segment == "" {
			return errors.NewValidationError("change path segment must not be empty")
		}
	}
	c.changes = append(c.changes, Change{Path: append([]string(nil), path...), Value: value})
	return nil
}

// SetPassword appends a password change. Password changes take precedence
// over every other change in the same set when routed.
func (c *ChangeSet) SetPassword(plaintext string) error {
	return c.Set(plaintext, CredentialAttribute, "password")
}

// Len returns the number of changes.
func (c *ChangeSet) Len() int {
	return len(c.changes)
}

// Empty reports whether the set carries no changes.
func (c *ChangeSet) Empty() bool {
	return c == nil || len(c.changes) == 0
}

// Changes returns the changes in insertion order.
func (c *ChangeSet) Changes() []Change {
	return c.changes
}

// Password returns the plaintext of a password change if the set contains
// one, searching in insertion order. Only a string value at login.password
// counts; credential changes of any other shape must be rejected by the
// caller, never applied.
func (c *ChangeSet) Password() (string, bool) {
	for _, ch := range c.changes {
		if len(ch.Path) == 2 && ch.Path[0] == CredentialAttribute && ch.Path[1] == "password" {
			if pw, ok := ch.Value.(string); ok {
				return pw, true
			}
		}
	}
	return "", false
}

// Targets reports whether any change addresses the given top-level attribute.
// Used to reject updates aimed at the primary key or the raw credential.
func (c *ChangeSet) Targets(attribute string) bool {
	for _, ch := range c.changes {
		if ch.Path[0] == attribute {
			return true
		}
	}
	return false
}

// String renders the change paths for logging. Values are omitted so
// credentials never reach log output.
func (c *ChangeSet) String() string {
	paths := make([]string, 0, len(c.changes))
	for _, ch := range c.changes {
		paths = append(paths, strings.Join(ch.Path, "."))
	}
	return strings.Join(paths, ",")
}
