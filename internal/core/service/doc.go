// Package service provides the token store for TokStore.
//
// TokenStore sits between callers and a storage.Backend. It replaces
// plaintext secrets with salted hashes before anything is persisted,
// derives each entry's TTL from the token's absolute expiry, and strips
// secret material from every token it hands back.
//
// Failures are normalized: confirming an absent token and confirming with
// the wrong secret return the same domain.ErrTokenInvalid, while a
// read-only fetch of an absent key returns domain.ErrTokenNotFound.
// Backend errors pass through unchanged.
//
// When no backend is configured the store is degraded: every operation
// returns a Result with Degraded set and performs no I/O.
package service
