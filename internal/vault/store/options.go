package store

import "time"

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
	withDescription    string
	withTags           TagList
	withExpireTime     *time.Time
	withRotationPolicy RotationPolicy
}

func getDefaultOptions() options {
	return options{
		withRotationPolicy: ManualRotation,
	}
}

// WithDescription provides optional operator-facing text.
func WithDescription(desc string) Option {
	return func(o *options) {
		o.withDescription = desc
	}
}

// WithTags provides optional non-sensitive labels.
func WithTags(tags ...string) Option {
	return func(o *options) {
		o.withTags = TagList(tags)
	}
}

// WithExpireTime provides an optional expiration time.
func WithExpireTime(t time.Time) Option {
	return func(o *options) {
		o.withExpireTime = &t
	}
}

// WithRotationPolicy overrides the default manual rotation policy.
func WithRotationPolicy(p RotationPolicy) Option {
	return func(o *options) {
		o.withRotationPolicy = p
	}
}
