package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Op represents an operation (package.function).
// For example iam.CreateRole
type Op string

// Err provides the ability to specify a Msg, Op, Code and Wrapped error.
// We've chosen Err over Error for the identifier to support the easy embedding of Errs.
// Errs can be embedded without a conflict between the embedded Err and Err.Error().
type Err struct {
	// Code is the error's code, which can be used to get the error's
	// errorCodeInfo, which contains the error's Kind and Message
	Code Code

	// Msg for the error
	Msg string

	// Op represents the operation raising/propagating an error and is optional.
	// Op should be formatted as "package.func" for functions, while methods should
	// include the receiver type in parentheses "package.(type).func"
	Op Op

	// Wrapped is the error which this Err wraps and will be nil if there's no
	// error to wrap.
	Wrapped error
}

// E creates a new Err with provided code and supports the options of:
//
// * WithOp() - allows you to specify an optional Op (operation).
//
// * WithMsg() - allows you to specify an optional error msg, if the default
// msg for the error Code is not sufficient.
//
// * WithWrap() - allows you to specify an error to wrap
func E(ctx context.Context, opt ...Option) error {
	opts := GetOpts(opt...)
	err := &Err{
		Code:    opts.withCode,
		Op:      opts.withOp,
		Wrapped: opts.withErrWrapped,
		Msg:     opts.withErrMsg,
	}
	return err
}

// New creates a new Err with provided code, op and msg.  It supports the
// options of WithWrap() which allows you to specify an error to wrap.
// The ctx is reserved for future use when raising errors also emits
// related error events.
func New(ctx context.Context, c Code, op Op, msg string, opt ...Option) error {
	opt = append(opt, WithOp(op))
	opt = append(opt, WithMsg(msg))
	opt = append(opt, WithCode(c))
	return E(ctx, opt...)
}

// Wrap creates a new Err from the provided err and op,  preserving the code
// from the originating error.  It supports the options of:
//
// * WithMsg() - allows you to specify an optional error msg
//
// * WithCode() - allows you to override the Code inherited from the wrapped
// error
func Wrap(ctx context.Context, e error, op Op, opt ...Option) error {
	opt = append(opt, WithOp(op))
	opt = append(opt, WithWrap(e))
	opts := GetOpts(opt...)
	if opts.withCode == Unknown {
		var err *Err
		if errors.As(e, &err) {
			opt = append(opt, WithCode(err.Code))
		}
	}
	return E(ctx, opt...)
}

// Convert will convert the error to an Err (if that's not possible, it just
// returns the error as is) and it will attempt to add a helpful error code.
// Conversion is intended for errors returned by the storage layer (go-dbw)
// which have no domain code yet.
func Convert(e error) *Err {
	if e == nil {
		return nil
	}
	var alreadyConverted *Err
	if errors.As(e, &alreadyConverted) {
		return alreadyConverted
	}
	for matching, code := range storageErrorCodes {
		if errors.Is(e, matching) {
			return E(context.Background(), WithCode(code), WithWrap(e)).(*Err)
		}
	}
	// unfortunately, we can't help.
	return nil
}

// Info about the Err
func (e *Err) Info() Info {
	if e == nil {
		return errorCodeInfo[Unknown]
	}
	return e.Code.Info()
}

// Error satisfies the error interface and returns a string representation of
// the Err
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	var msgs []string

	if e.Op != "" {
		msgs = append(msgs, string(e.Op))
	}
	if e.Msg != "" {
		msgs = append(msgs, e.Msg)
	}

	if info, ok := errorCodeInfo[e.Code]; ok {
		if e.Msg == "" {
			// provide a default.
			msgs = append(msgs, info.Message, info.Kind.String())
		} else {
			msgs = append(msgs, info.Kind.String())
		}
	}
	msgs = append(msgs, fmt.Sprintf("error #%d", e.Code))

	if e.Wrapped != nil {
		msgs = append(msgs, e.Wrapped.Error())
	}
	return strings.Join(msgs, ": ")
}

// Unwrap implements the errors.Unwrap interface and allows callers to use the
// errors.Is() and errors.As() functions effectively for any wrapped errors.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}
