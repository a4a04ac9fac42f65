// Package token implements the signed-token layer: the [Claims] value type,
// and a [Manager] that signs claims into compact JWT strings and extracts
// them back.
//
// # Architecture boundaries
//
// token knows nothing about persistence, caching, or the service layer; it
// deals only in claims and signed strings. Extraction is layered so that
// callers can tell the failure classes apart:
//
//  1. decode + signature verification — a cryptographic failure surfaces
//     [ErrTokenVerification] and nothing else runs;
//  2. structural validation of the raw claim set — every missing or
//     malformed claim contributes its own error, all reported at once;
//  3. typed conversion plus semantic validation — non-numeric subject and
//     expiry, also accumulated.
//
// # What this package must NOT do
//
//   - Touch the network or any store.
//   - Cache verification results; that is the service layer's concern.
//   - Let the JWT library's own expiry validation preempt the semantic
//     pass (expiry must always surface as [ErrTokenExpired]).
package token
