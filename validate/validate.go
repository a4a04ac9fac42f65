package validate

import "strings"

// Check is a single independent validation rule for a value of type T.
// A nil return means the value passed the rule.
type Check[T any] func(T) error

// Errors is an ordered list of validation failures produced by [All].
// It unwraps to its members, so errors.Is matches any contained sentinel.
type Errors []error

// Error joins the contained messages with "; " in check order.
func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return e[0].Error()
	}

	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	return e
}

// All runs every check against v and accumulates the failures, in check
// order, into a single [Errors] value. It returns nil only when all checks
// pass. Checks run independently; a failing check never short-circuits the
// ones after it.
func All[T any](v T, checks ...Check[T]) error {
	var errs Errors
	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := check(v); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// First runs the checks in order and returns the first failure, or nil when
// all pass. Use it for sequential preconditions where later checks are
// meaningless once an earlier one has failed.
func First[T any](v T, checks ...Check[T]) error {
	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := check(v); err != nil {
			return err
		}
	}
	return nil
}
