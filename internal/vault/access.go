package vault

import "github.com/operand/credvault/internal/policy"

// Authorize reports whether role grants perm under the policy table.  It is
// a pure function of its inputs: no repository or crypto work happens here,
// and an unknown role simply holds no permissions.
func Authorize(p *policy.Store, role policy.Role, perm policy.Permission) bool {
	granted := p.PermissionsFor(role)
	has := func(want policy.Permission) bool {
		for _, g := range granted {
			if g == want {
				return true
			}
		}
		return false
	}
	if has(perm) {
		return true
	}
	// reading credential metadata is also granted to principals that can
	// both read jobs and view data
	if perm == policy.CredentialRead && has(policy.JobRead) && has(policy.DataView) {
		return true
	}
	return false
}

// AuthorizeAny reports whether role grants at least one of perms.
func AuthorizeAny(p *policy.Store, role policy.Role, perms ...policy.Permission) bool {
	for _, perm := range perms {
		if Authorize(p, role, perm) {
			return true
		}
	}
	return false
}
