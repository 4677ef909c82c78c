package user

import "strings"

// PolicyMapper derives the policy flag set granted by a list of roles.
//
// The mapping is configuration-driven: each known role grants a fixed list of
// policy names, every granted policy maps to true. Unknown roles contribute
// nothing and are never an error. Derivation is a pure function of the roles
// at the time of computation; the persisted copy of a user's policies is not
// authoritative.
// Role names are matched case-insensitively.
type PolicyMapper struct {
	grants map[string][]string
}

// NewPolicyMapper creates a mapper from a role-to-policies table.
func NewPolicyMapper(grants map[string][]string) *PolicyMapper {
	normalized := make(map[string][]string, len(grants))
	for role, policies := range grants {
		normalized[strings.ToLower(role)] = policies
	}
	return &PolicyMapper{grants: normalized}
}

// Derive returns the union of policy flags granted by roles.
func (m *PolicyMapper) Derive(roles []string) map[string]bool {
	policies := make(map[string]bool)
	for _, role := range roles {
		for _, p := range m.grants[strings.ToLower(role)] {
			policies[p] = true
		}
	}
	return policies
}
