// Package secret derives and verifies salted hashes of token secrets.
//
// A Hasher turns a plaintext secret into a Derived pair (hex salt, hex
// derived key) and later checks a supplied plaintext against that pair in
// constant time. Two algorithms are provided:
//
//   - argon2id (default): memory-hard, tuned by memory, time and parallelism.
//   - pbkdf2: PBKDF2 with HMAC-SHA256, tuned by iteration count.
//
// The plaintext is used byte for byte; no Unicode normalization is applied.
package secret
