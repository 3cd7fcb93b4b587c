package policy

import "strings"

// Permission is a "resource:action" token owned by roles through the policy
// table.
type Permission string

const (
	CredentialManage Permission = "credential:manage"
	CredentialRead   Permission = "credential:read"
	CredentialUse    Permission = "credential:use"
	CredentialDelete Permission = "credential:delete"
	AuditRead        Permission = "audit:read"
	JobRead          Permission = "job:read"
	DataView         Permission = "data:view"
)

// permissionSet is the closed set of tokens the policy table may grant.
var permissionSet = map[Permission]struct{}{
	CredentialManage: {},
	CredentialRead:   {},
	CredentialUse:    {},
	CredentialDelete: {},
	AuditRead:        {},
	JobRead:          {},
	DataView:         {},
}

// IsValid reports whether p is a known permission token.
func (p Permission) IsValid() bool {
	_, ok := permissionSet[p]
	return ok
}

// Resource returns the resource part of the token.
func (p Permission) Resource() string {
	resource, _, _ := strings.Cut(string(p), ":")
	return resource
}

// Action returns the action part of the token.
func (p Permission) Action() string {
	_, action, _ := strings.Cut(string(p), ":")
	return action
}
