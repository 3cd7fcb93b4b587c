package vault

import (
	"context"
	"strings"
	"testing"

	"github.com/operand/credvault/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()
	p := policy.DevPolicy(context.Background())

	tests := []struct {
		name string
		role policy.Role
		perm policy.Permission
		want bool
	}{
		{name: "admin-manage", role: policy.Admin, perm: policy.CredentialManage, want: true},
		{name: "admin-delete", role: policy.Admin, perm: policy.CredentialDelete, want: true},
		{name: "admin-audit", role: policy.Admin, perm: policy.AuditRead, want: true},
		{name: "operator-manage", role: policy.Operator, perm: policy.CredentialManage, want: true},
		{name: "operator-no-delete", role: policy.Operator, perm: policy.CredentialDelete, want: false},
		{name: "operator-no-audit", role: policy.Operator, perm: policy.AuditRead, want: false},
		{name: "viewer-read", role: policy.Viewer, perm: policy.CredentialRead, want: true},
		{name: "viewer-no-manage", role: policy.Viewer, perm: policy.CredentialManage, want: false},
		{name: "viewer-no-use", role: policy.Viewer, perm: policy.CredentialUse, want: false},
		{name: "unknown-role-denied", role: policy.UnknownRole, perm: policy.CredentialRead, want: false},
		{name: "out-of-range-role-denied", role: policy.Role(99), perm: policy.CredentialRead, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// pure: same inputs, same answer, every time
			for i := 0; i < 3; i++ {
				assert.Equal(t, tt.want, Authorize(p, tt.role, tt.perm))
			}
		})
	}
}

func TestAuthorize_JobReadPlusDataView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// a role holding job:read and data:view but not credential:read can
	// still read credential metadata
	doc := strings.Replace(policy.TestPolicyDocument,
		`viewer = ["credential:read", "job:read", "data:view"]`,
		`viewer = ["job:read", "data:view"]`, 1)
	s, err := policy.Parse(ctx, doc)
	require.NoError(t, err)
	assert.True(t, Authorize(s, policy.Viewer, policy.CredentialRead))

	// job:read alone is not enough
	doc = strings.Replace(policy.TestPolicyDocument,
		`viewer = ["credential:read", "job:read", "data:view"]`,
		`viewer = ["job:read"]`, 1)
	s, err = policy.Parse(ctx, doc)
	require.NoError(t, err)
	assert.False(t, Authorize(s, policy.Viewer, policy.CredentialRead))
}

func TestAuthorizeAny(t *testing.T) {
	t.Parallel()
	p := policy.DevPolicy(context.Background())

	assert.True(t, AuthorizeAny(p, policy.Admin, policy.CredentialUse, policy.CredentialManage))
	assert.True(t, AuthorizeAny(p, policy.Operator, policy.CredentialDelete, policy.CredentialManage))
	assert.False(t, AuthorizeAny(p, policy.Viewer, policy.CredentialUse, policy.CredentialManage))
	assert.False(t, AuthorizeAny(p, policy.Viewer))
}
