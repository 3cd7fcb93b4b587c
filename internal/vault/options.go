package vault

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-rate"
	"github.com/operand/credvault/internal/event"
)

// getOpts iterates the inbound Options and returns a struct.
func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// Option is a function that takes in an option struct and sets values or
// overrides defaults.
type Option func(*options)

// options are the set of available options.
type options struct {
	withLimit       int
	withLogger      hclog.Logger
	withEventBroker *event.Broker
	withRateLimiter *rate.Limiter
}

func getDefaultOptions() options {
	return options{}
}

// WithLimit provides an optional maximum number of results.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.withLimit = limit
	}
}

// WithLogger provides an optional structured logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		o.withLogger = l
	}
}

// WithEventBroker wires domain event emission.  Without it events are
// dropped.
func WithEventBroker(b *event.Broker) Option {
	return func(o *options) {
		o.withEventBroker = b
	}
}

// WithRateLimiter enforces per-principal request quotas ahead of
// authorization.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *options) {
		o.withRateLimiter = l
	}
}
