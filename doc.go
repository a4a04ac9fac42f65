// Package authkit is a token-based authentication core: issuance,
// verification, rotation, and revocation of paired access/refresh
// credentials, backed by signed claims and a persistence layer for
// refresh-token lifecycle state.
//
// The package is designed for concurrent server workloads: [Service] methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Service], [Builder], [Config],
// the sentinel error set, and value types (TokenPair, AuthContext,
// MetricsSnapshot). Claims and signing live in token/, the validation
// combinators in validate/, the access-token cache in cache/, and
// refresh-token persistence in store/; none of those import authkit back.
//
// # What this package must NOT do
//
//   - Treat the access-token cache as authoritative: every cache miss falls
//     through to full signature and claims validation.
//   - Leak raw store or cache errors to callers: everything maps onto the
//     closed sentinel set in errors.go.
//   - Roll back committed persistence writes on context cancellation; the
//     store's transaction boundary governs atomicity.
//
// # Performance contract
//
// Verify is the hot path. A cache hit must complete without signature
// verification or store access. Generate, Refresh, and Revoke are allowed
// one store round-trip (Rotate counts as one).
package authkit
