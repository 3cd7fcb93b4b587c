package cmd

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/policy"
)

// Config is the process configuration, read from CREDVAULT_* environment
// variables.  The policy document itself lives in an HCL file; everything
// here is deployment plumbing.
type Config struct {
	// DatabaseUrl is the connection string for the vault database.
	DatabaseUrl string `envconfig:"database_url" default:"file:credvault.db"`
	// DatabaseDialect selects the driver: sqlite or postgres.
	DatabaseDialect string `envconfig:"database_dialect" default:"sqlite"`
	// MasterSecret keys every derived credential encryption key.
	MasterSecret string `envconfig:"master_secret"`
	// PolicyPath points at the HCL policy document.  Empty selects the
	// built-in dev policy.
	PolicyPath string `envconfig:"policy_path"`
	// EventPath is an optional file to receive domain events; empty sends
	// them to stderr.
	EventPath string `envconfig:"event_path"`
	// Principal and Role identify the CLI caller for authorization and
	// auditing.
	Principal string `envconfig:"principal"`
	Role      string `envconfig:"role"`
	// LogLevel sets the hclog level: trace, debug, info, warn, error.
	LogLevel string `envconfig:"log_level" default:"info"`
	// RateLimitMaxEntries caps the limiter's quota table.
	RateLimitMaxEntries int `envconfig:"rate_limit_max_entries" default:"10000"`
}

// LoadConfig reads the environment and validates the result.
func LoadConfig(ctx context.Context) (*Config, error) {
	const op = "cmd.LoadConfig"
	var c Config
	if err := envconfig.Process("credvault", &c); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithCode(errors.InvalidConfiguration))
	}
	if c.MasterSecret == "" {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "CREDVAULT_MASTER_SECRET is not set")
	}
	if c.Principal == "" {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "CREDVAULT_PRINCIPAL is not set")
	}
	if _, ok := policy.RoleMap[c.Role]; !ok {
		return nil, errors.New(ctx, errors.InvalidConfiguration, op, "CREDVAULT_ROLE must be admin, operator or viewer")
	}
	return &c, nil
}
