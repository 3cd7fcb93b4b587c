// Package policy holds the process-wide static configuration for the vault:
// the role to permission table, password policy, compliance flags and
// session/rate-limit parameters.  A Store is parsed once at process start
// and is read-only afterwards, so its accessors are safe for concurrent use
// without locking.
package policy

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-secure-stdlib/strutil"
	"github.com/hashicorp/hcl"
	"github.com/operand/credvault/internal/crypto"
	"github.com/operand/credvault/internal/errors"
)

// ComplianceMode names a regulatory framework whose flags gate stricter
// encryption, audit and retention behavior.
type ComplianceMode string

const (
	PciDss ComplianceMode = "PCI-DSS"
	Gdpr   ComplianceMode = "GDPR"
	Soc2   ComplianceMode = "SOC2"
)

func (m ComplianceMode) isValid() bool {
	switch m {
	case PciDss, Gdpr, Soc2:
		return true
	}
	return false
}

// ComplianceFlags are the audit/retention obligations derived from the
// configured compliance modes.
type ComplianceFlags struct {
	Modes          []ComplianceMode
	AuditAllAccess bool
	RetentionDays  int
	ImmutableAudit bool
	RealTimeAlerts bool
}

type complianceConfig struct {
	Modes          []string `hcl:"modes"`
	AuditAllAccess bool     `hcl:"audit_all_access"`
	RetentionDays  int      `hcl:"retention_days"`
	ImmutableAudit bool     `hcl:"immutable_audit"`
	RealTimeAlerts bool     `hcl:"real_time_alerts"`
}

// PasswordPolicy is the policy applied to password-bearing credential
// payloads at store time.
type PasswordPolicy struct {
	MinLength       int  `hcl:"min_length"`
	RequireUpper    bool `hcl:"require_upper"`
	RequireLower    bool `hcl:"require_lower"`
	RequireDigit    bool `hcl:"require_digit"`
	RequireSymbol   bool `hcl:"require_symbol"`
	MaxAgeDays      int  `hcl:"max_age_days"`
	ReusePrevention int  `hcl:"reuse_prevention"`
}

// RateLimitConfig is the per-principal request quota.  MaxRequests is an
// int because hcl v1 has no uint64 decoder; Limits() converts it after the
// positive-value check.
type RateLimitConfig struct {
	WindowSeconds int `hcl:"window_seconds"`
	MaxRequests   int `hcl:"max_requests"`
}

type config struct {
	EncryptionAlgorithm   string              `hcl:"encryption_algorithm"`
	KeyDerivation         string              `hcl:"key_derivation"`
	KeyIterations         int                 `hcl:"key_iterations"`
	SessionTimeoutSeconds int                 `hcl:"session_timeout_seconds"`
	MfaRequired           bool                `hcl:"mfa_required"`
	AuditEnabled          *bool               `hcl:"audit_enabled"`
	Compliance            *complianceConfig   `hcl:"compliance"`
	PasswordPolicy        *PasswordPolicy     `hcl:"password_policy"`
	RateLimit             *RateLimitConfig    `hcl:"rate_limit"`
	Roles                 map[string][]string `hcl:"roles"`
}

// Store is the immutable policy configuration.
type Store struct {
	conf        config
	compliance  ComplianceFlags
	permissions map[Role][]Permission
}

// Parse parses and validates an HCL policy document.  Validation is strict:
// unknown role names, unknown permission tokens, unsupported algorithms and
// out-of-range numbers are load-time errors, not runtime surprises.
func Parse(ctx context.Context, d string) (*Store, error) {
	const op = "policy.Parse"
	if d == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing policy document")
	}
	var c config
	if err := hcl.Decode(&c, d); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration), errors.WithMsg("unable to decode policy"))
	}

	if c.EncryptionAlgorithm != "aes-256-gcm" {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("unsupported encryption algorithm %q", c.EncryptionAlgorithm))
	}
	if c.KeyDerivation != "pbkdf2" {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("unsupported key derivation %q", c.KeyDerivation))
	}
	if c.KeyIterations < crypto.MinIterations {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "key iterations below minimum")
	}
	if c.SessionTimeoutSeconds <= 0 {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "session timeout must be positive")
	}
	if c.Compliance == nil {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "missing compliance block")
	}
	modes := make([]ComplianceMode, 0, len(c.Compliance.Modes))
	for _, name := range c.Compliance.Modes {
		m := ComplianceMode(name)
		if !m.isValid() {
			return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("unknown compliance mode %q", name))
		}
		modes = append(modes, m)
	}
	if c.Compliance.RetentionDays <= 0 {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "audit retention days must be positive")
	}
	if c.PasswordPolicy == nil {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "missing password_policy block")
	}
	if c.PasswordPolicy.MinLength < 8 {
		return nil, errors.New(ctx, errors.PasswordInvalidConfiguration, op, "password min length must be at least 8")
	}
	if c.RateLimit == nil {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "missing rate_limit block")
	}
	if c.RateLimit.WindowSeconds <= 0 || c.RateLimit.MaxRequests <= 0 {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "rate limit window and max requests must be positive")
	}
	if len(c.Roles) == 0 {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "missing roles block")
	}

	permissions := make(map[Role][]Permission, len(c.Roles))
	for name, tokens := range c.Roles {
		role, ok := RoleMap[name]
		if !ok {
			return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("unknown role %q", name))
		}
		tokens = strutil.RemoveDuplicatesStable(tokens, false)
		perms := make([]Permission, 0, len(tokens))
		for _, token := range tokens {
			p := Permission(token)
			if !p.IsValid() {
				return nil, errors.New(ctx, errors.InvalidConfiguration, op, fmt.Sprintf("unknown permission %q for role %q", token, name))
			}
			perms = append(perms, p)
		}
		permissions[role] = perms
	}

	return &Store{
		conf: c,
		compliance: ComplianceFlags{
			Modes:          modes,
			AuditAllAccess: c.Compliance.AuditAllAccess,
			RetentionDays:  c.Compliance.RetentionDays,
			ImmutableAudit: c.Compliance.ImmutableAudit,
			RealTimeAlerts: c.Compliance.RealTimeAlerts,
		},
		permissions: permissions,
	}, nil
}

// Load reads and parses the policy document at path.
func Load(ctx context.Context, path string) (*Store, error) {
	const op = "policy.Load"
	if path == "" {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing path")
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration), errors.WithMsg(fmt.Sprintf("unable to read %q", path)))
	}
	return Parse(ctx, string(d))
}

// PermissionsFor returns the permission set for the role.  An unknown role
// isn't an error: it's simply a role with no permissions (deny-by-default).
func (s *Store) PermissionsFor(role Role) []Permission {
	perms, ok := s.permissions[role]
	if !ok {
		return nil
	}
	cp := make([]Permission, len(perms))
	copy(cp, perms)
	return cp
}

// PasswordPolicy returns the configured password policy.
func (s *Store) PasswordPolicy() PasswordPolicy {
	return *s.conf.PasswordPolicy
}

// ComplianceFlags returns the configured compliance flags.
func (s *Store) ComplianceFlags() ComplianceFlags {
	flags := s.compliance
	flags.Modes = append([]ComplianceMode(nil), s.compliance.Modes...)
	return flags
}

// SessionTimeout returns the configured session timeout.
func (s *Store) SessionTimeout() time.Duration {
	return time.Duration(s.conf.SessionTimeoutSeconds) * time.Second
}

// MfaRequired reports whether the deployment requires multi-factor
// authentication upstream of this core.
func (s *Store) MfaRequired() bool {
	return s.conf.MfaRequired
}

// AuditEnabled reports whether audit writes are enabled.  Defaults to true;
// disabling is only legitimate for throwaway dev deployments.
func (s *Store) AuditEnabled() bool {
	if s.conf.AuditEnabled == nil {
		return true
	}
	return *s.conf.AuditEnabled
}

// KeyIterations returns the configured PBKDF2 iteration count.
func (s *Store) KeyIterations() int {
	return s.conf.KeyIterations
}

// RateLimit returns the configured per-principal quota.
func (s *Store) RateLimit() RateLimitConfig {
	return *s.conf.RateLimit
}
