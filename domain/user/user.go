// Package user holds the user record model and the pure logic attached to
// it: password hashing, policy derivation and typed change sets.
package user

// KeyAttribute is the primary key attribute of a user record. It is set once
// at creation and never targeted by the update path.
const KeyAttribute = "uid"

// CredentialAttribute is the top-level attribute holding the credential.
// Changes addressing it are only valid as a plaintext password replacement;
// anything else would let an unhashed value reach the store.
const CredentialAttribute = "login"

// Login carries the credential portion of a user record. The password is
// stored only as a salted hash, never as plaintext.
type Login struct {
	Password string `json:"-" dynamodbav:"password"`
}

// User represents a user record as stored in the directory.
type User struct {
	UID       string          `json:"uid" dynamodbav:"uid"`
	Username  string          `json:"username" dynamodbav:"username"`
	Login     Login           `json:"login" dynamodbav:"login"`
	Roles     []string        `json:"roles" dynamodbav:"roles"`
	CreatedAt int64           `json:"createdAt" dynamodbav:"createdAt"`
	Policies  map[string]bool `json:"policies" dynamodbav:"policies"`
}

// HasPolicy reports whether the user holds the named policy flag.
func (u *User) HasPolicy(name string) bool {
	return u.Policies[name]
}
