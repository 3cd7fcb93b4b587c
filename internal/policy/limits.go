package policy

import (
	"time"

	"github.com/hashicorp/go-rate"
)

// vaultLimitPairs enumerates the resource/action pairs the vault asks the
// limiter about.  Quotas are tracked per principal; total and per-address
// dimensions are left unlimited since the transport layer in front of this
// core has its own connection limits.
var vaultLimitPairs = []struct {
	resource string
	actions  []string
}{
	{resource: "credential", actions: []string{"create", "read", "list", "update", "delete", "rotate"}},
	{resource: "audit", actions: []string{"read", "purge"}},
}

// Limits expands the policy's rate-limit configuration into the limit set a
// rate.Limiter needs: one quota per resource/action pair per principal.
func (s *Store) Limits() []rate.Limit {
	rl := s.RateLimit()
	period := time.Duration(rl.WindowSeconds) * time.Second

	var limits []rate.Limit
	for _, pair := range vaultLimitPairs {
		for _, a := range pair.actions {
			limits = append(limits,
				&rate.Limited{
					Resource:    pair.resource,
					Action:      a,
					Per:         rate.LimitPerAuthToken,
					MaxRequests: uint64(rl.MaxRequests),
					Period:      period,
				},
				&rate.Unlimited{
					Resource: pair.resource,
					Action:   a,
					Per:      rate.LimitPerTotal,
				},
				&rate.Unlimited{
					Resource: pair.resource,
					Action:   a,
					Per:      rate.LimitPerIPAddress,
				},
			)
		}
	}
	return limits
}
