package errors

// GetOpts - iterate the inbound Options and return a struct
func GetOpts(opt ...Option) Options {
	opts := getDefaultOptions()
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// Option - how Options are passed as arguments
type Option func(*Options)

// Options - how Options are represented
type Options struct {
	withErrWrapped error
	withErrMsg     string
	withOp         Op
	withCode       Code
}

func getDefaultOptions() Options {
	return Options{}
}

// WithWrap provides an error to wrap
func WithWrap(e error) Option {
	return func(o *Options) {
		o.withErrWrapped = e
	}
}

// WithMsg provides an option to provide a message when the error is created
func WithMsg(msg string) Option {
	return func(o *Options) {
		o.withErrMsg = msg
	}
}

// WithOp provides an option to provide the operation that's raising/propagating
// the error
func WithOp(op Op) Option {
	return func(o *Options) {
		o.withOp = op
	}
}

// WithCode provides an option to provide a code when the error is created
func WithCode(code Code) Option {
	return func(o *Options) {
		o.withCode = code
	}
}
