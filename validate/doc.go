// Package validate provides small error-accumulating and fail-fast check
// combinators. A check is any func(T) error; [All] runs every check against
// the same value and collects the failures into an [Errors] list, while
// [First] stops at the first failure.
//
// The token claim validators are the primary consumer, but nothing in this
// package is specific to tokens.
package validate
