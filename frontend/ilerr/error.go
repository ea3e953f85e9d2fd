package ilerr

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// Sink receives diagnostics as soon as they are found.
type Sink interface {
	Add(err IleError)
}

var _ Sink = (*Errors)(nil)

type Errors struct {
	errs []IleError
}

func (r *Errors) Add(err IleError) {
	r.errs = append(r.errs, err)
}

func (r *Errors) With(err ...IleError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	for _, err := range r.errs {
		if err.Severity() == SeverityError {
			return true
		}
	}
	return false
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}

// Failf aborts checking because of an internal inconsistency, as opposed to a problem
// with the program being checked. Checking entry points recover it with AsFailure.
func Failf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

// AsFailure turns a value recovered from a panic into an error.
func AsFailure(recovered any) error {
	if err, ok := recovered.(error); ok {
		return errors.Wrap(err, "internal error")
	}
	return errors.Errorf("internal error: %v", recovered)
}
