// Package middleware adapts authkit token verification to net/http.
//
// [Guard] reads the Authorization bearer token, verifies it through
// the service and injects the resulting identity into the request
// context, where handlers retrieve it with
// authkit.AuthContextFromContext. [StatusFor] maps the service error
// taxonomy to HTTP status codes for handlers that call the service
// directly.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into service calls. It makes
// no authentication decisions of its own: every accept/reject comes
// from Service.Verify.
package middleware
