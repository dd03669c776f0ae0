// Package domain defines the core domain models for TokStore.
//
// Domain models are plain values without IO dependencies:
//
//   - Token: ephemeral credential record with an absolute expiry
//   - DerivedSecret: salted hash material that replaces a plaintext secret
//   - Errors: coded domain errors shared by every layer
package domain
