package secret

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Argon2 hashes secrets with argon2id.
type Argon2 struct {
	config Config
}

var _ Hasher = (*Argon2)(nil)

// NewArgon2 returns an argon2id hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	cfg.Algorithm = AlgorithmArgon2id
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Argon2{config: cfg}, nil
}

// Algorithm returns "argon2id".
func (a *Argon2) Algorithm() string { return AlgorithmArgon2id }

// Hash derives a key from plaintext with a fresh random salt.
func (a *Argon2) Hash(plaintext string) (Derived, error) {
	if plaintext == "" {
		return Derived{}, ErrEmptySecret
	}

	salt, err := newSalt(a.config.SaltLength)
	if err != nil {
		return Derived{}, err
	}

	key := a.derive([]byte(plaintext), salt, a.config.KeyLength)
	return Derived{
		Salt:       hex.EncodeToString(salt),
		DerivedKey: hex.EncodeToString(key),
	}, nil
}

// Verify checks plaintext against d. The derived key length stored in d is
// honored, so pairs produced under an older key_length still verify.
func (a *Argon2) Verify(d Derived, plaintext string) error {
	salt, want, err := decode(d)
	if err != nil {
		return err
	}

	got := a.derive([]byte(plaintext), salt, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

func (a *Argon2) derive(plaintext, salt []byte, keyLen uint32) []byte {
	return argon2.IDKey(
		plaintext,
		salt,
		a.config.Time,
		a.config.MemoryKB,
		a.config.Parallelism,
		keyLen,
	)
}
