package audit

import "time"

// getOpts iterates the inbound Options and returns a struct.
func getOpts(opt ...Option) options {
	opts := options{}
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
	withDetail      string
	withPrincipalId string
	withAction      Action
	withStartTime   *time.Time
	withEndTime     *time.Time
	withLimit       int
}

// WithDetail provides optional masked context for an entry.
func WithDetail(detail string) Option {
	return func(o *options) {
		o.withDetail = detail
	}
}

// WithPrincipalId filters a query to one principal.
func WithPrincipalId(id string) Option {
	return func(o *options) {
		o.withPrincipalId = id
	}
}

// WithAction filters a query to one action.
func WithAction(a Action) Option {
	return func(o *options) {
		o.withAction = a
	}
}

// WithStartTime filters a query to entries recorded at or after t.
func WithStartTime(t time.Time) Option {
	return func(o *options) {
		o.withStartTime = &t
	}
}

// WithEndTime filters a query to entries recorded before t.
func WithEndTime(t time.Time) Option {
	return func(o *options) {
		o.withEndTime = &t
	}
}

// WithLimit provides an optional maximum number of results.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.withLimit = limit
	}
}
