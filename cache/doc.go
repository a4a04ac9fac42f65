// Package cache provides the access-token cache: a mapping from signed
// access-token strings to already-verified identities, used to skip repeated
// signature and claims validation.
//
// The cache is a pure performance optimization and never a source of truth.
// A miss is resolved by full verification, whose result is written back, so
// entries are always derivable from the token itself. Losing an entry only
// costs a re-verification.
//
// Two implementations are provided: [Memory], an LRU bounded by total byte
// size with a per-entry TTL counted from write, and [Redis], which delegates
// bounds and expiry to a Redis server.
package cache
