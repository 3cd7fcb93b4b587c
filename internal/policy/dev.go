package policy

import "context"

const devPolicy = `
encryption_algorithm = "aes-256-gcm"
key_derivation = "pbkdf2"
key_iterations = 10000
session_timeout_seconds = 900
mfa_required = false

compliance {
	modes = ["SOC2"]
	audit_all_access = true
	retention_days = 365
	immutable_audit = true
	real_time_alerts = false
}

password_policy {
	min_length = 12
	require_upper = true
	require_lower = true
	require_digit = true
	require_symbol = false
	max_age_days = 90
	reuse_prevention = 5
}

rate_limit {
	window_seconds = 60
	max_requests = 1000
}

roles {
	admin = ["credential:manage", "credential:read", "credential:use", "credential:delete", "audit:read"]
	operator = ["credential:manage", "credential:read", "credential:use", "job:read", "data:view"]
	viewer = ["credential:read", "job:read", "data:view"]
}
`

// DevPolicy returns a Store suitable for dev mode and tests.  It panics on
// error since the document is a compile-time constant.
func DevPolicy(ctx context.Context) *Store {
	s, err := Parse(ctx, devPolicy)
	if err != nil {
		panic(err)
	}
	return s
}
