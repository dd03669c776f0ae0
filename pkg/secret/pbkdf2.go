package secret

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 hashes secrets with PBKDF2-HMAC-SHA256.
type PBKDF2 struct {
	config Config
}

var _ Hasher = (*PBKDF2)(nil)

// NewPBKDF2 returns a PBKDF2 hasher.
func NewPBKDF2(cfg Config) (*PBKDF2, error) {
	cfg.Algorithm = AlgorithmPBKDF2
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PBKDF2{config: cfg}, nil
}

// Algorithm returns "pbkdf2".
func (p *PBKDF2) Algorithm() string { return AlgorithmPBKDF2 }

// Hash derives a key from plaintext with a fresh random salt.
func (p *PBKDF2) Hash(plaintext string) (Derived, error) {
	if plaintext == "" {
		return Derived{}, ErrEmptySecret
	}

	salt, err := newSalt(p.config.SaltLength)
	if err != nil {
		return Derived{}, err
	}

	key := pbkdf2.Key([]byte(plaintext), salt, p.config.Iterations, int(p.config.KeyLength), sha256.New)
	return Derived{
		Salt:       hex.EncodeToString(salt),
		DerivedKey: hex.EncodeToString(key),
	}, nil
}

// Verify checks plaintext against d.
func (p *PBKDF2) Verify(d Derived, plaintext string) error {
	salt, want, err := decode(d)
	if err != nil {
		return err
	}

	got := pbkdf2.Key([]byte(plaintext), salt, p.config.Iterations, len(want), sha256.New)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}
