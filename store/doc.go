// Package store persists the refresh-token lifecycle: one row per issued
// refresh token with an Active/Revoked status that never flips back.
//
// All status transitions are conditional updates guarded by the current
// status, so two concurrent callers racing on the same row see exactly one
// winner; the loser observes [ErrNothingWasChanged]. [Store.Rotate] bundles
// the conditional revoke of the old row and the insert of its replacement
// into one transaction, which is what makes refresh rotation at-most-once.
//
// [Postgres] is the durable implementation (pgx driver, goose-embedded
// schema); [Memory] mirrors its semantics for tests and embedded use.
package store
