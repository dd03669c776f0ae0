// Package adaptive provides authenticated encryption with hardware-aware
// algorithm selection.
//
// Supported Algorithms:
//
//   - AES-256-GCM: preferred when hardware AES support is available
//   - ChaCha20-Poly1305: fallback for systems without AES acceleration
//
// Ciphertexts are self-describing: a one-byte algorithm tag precedes the
// nonce, so data sealed on one host can be opened on another that prefers
// the other algorithm, as long as both share the 32-byte key.
//
// Usage:
//
//	key, err := adaptive.ParseKey(cfg.EncryptionKey)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := c.Decrypt(sealed, aad)
package adaptive
