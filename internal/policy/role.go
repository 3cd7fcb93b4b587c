package policy

// Role is the closed set of principal roles.  Principals never hold
// permissions directly; they hold exactly one Role and the role's
// permissions come from the policy table.
type Role int

const (
	UnknownRole Role = 0
	Admin       Role = 1
	Operator    Role = 2
	Viewer      Role = 3
)

// RoleMap is used to resolve the role names that appear in policy
// configuration and transport-layer principal claims.  A name that isn't in
// the map resolves to UnknownRole, which holds no permissions.
var RoleMap = map[string]Role{
	"admin":    Admin,
	"operator": Operator,
	"viewer":   Viewer,
}

func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case Operator:
		return "operator"
	case Viewer:
		return "viewer"
	default:
		return "unknown"
	}
}
