package secret

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Algorithm names.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmPBKDF2   = "pbkdf2"
)

var (
	// ErrMismatch is returned by Verify when the plaintext does not match.
	ErrMismatch = errors.New("secret: mismatch")

	// ErrMalformed is returned by Verify when the derived pair cannot be decoded.
	ErrMalformed = errors.New("secret: malformed derived key")

	// ErrEmptySecret is returned by Hash for an empty plaintext.
	ErrEmptySecret = errors.New("secret: empty plaintext")
)

// Derived is the salted hash of a secret, hex encoded.
type Derived struct {
	Salt       string
	DerivedKey string
}

// Hasher produces and verifies Derived pairs.
//
// Implementations are safe for concurrent use.
type Hasher interface {
	Hash(plaintext string) (Derived, error)
	Verify(d Derived, plaintext string) error
	Algorithm() string
}

// Config selects and tunes a hasher.
type Config struct {
	// Algorithm is argon2id or pbkdf2.
	// Default: argon2id
	Algorithm string

	// SaltLength is the random salt size in bytes.
	// Default: 16
	SaltLength uint32

	// KeyLength is the derived key size in bytes.
	// Default: 32
	KeyLength uint32

	// MemoryKB is the argon2id memory cost in KiB.
	// Default: 65536
	MemoryKB uint32

	// Time is the argon2id pass count.
	// Default: 1
	Time uint32

	// Parallelism is the argon2id lane count.
	// Default: 4
	Parallelism uint8

	// Iterations is the pbkdf2 iteration count.
	// Default: 600000
	Iterations int
}

const (
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	minMemoryKB    uint32 = 8 * 1024
	minIterations         = 1000
	maxDerivedSize        = 1024
)

// DefaultConfig returns the default hasher configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm:   AlgorithmArgon2id,
		SaltLength:  16,
		KeyLength:   32,
		MemoryKB:    64 * 1024,
		Time:        1,
		Parallelism: 4,
		Iterations:  600000,
	}
}

// Validate checks the configuration for the selected algorithm.
func (c Config) Validate() error {
	if c.SaltLength < minSaltLength {
		return fmt.Errorf("salt_length must be >= %d", minSaltLength)
	}
	if c.KeyLength < minKeyLength {
		return fmt.Errorf("key_length must be >= %d", minKeyLength)
	}

	switch normalize(c.Algorithm) {
	case AlgorithmArgon2id:
		if c.MemoryKB < minMemoryKB {
			return fmt.Errorf("memory_kb must be >= %d", minMemoryKB)
		}
		if c.Time < 1 {
			return errors.New("time must be >= 1")
		}
		if c.Parallelism < 1 {
			return errors.New("parallelism must be >= 1")
		}
	case AlgorithmPBKDF2:
		if c.Iterations < minIterations {
			return fmt.Errorf("iterations must be >= %d", minIterations)
		}
	default:
		return fmt.Errorf("unknown hasher algorithm %q (want argon2id or pbkdf2)", c.Algorithm)
	}
	return nil
}

// New returns the hasher selected by cfg.Algorithm.
func New(cfg Config) (Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if normalize(cfg.Algorithm) == AlgorithmPBKDF2 {
		return &PBKDF2{config: cfg}, nil
	}
	return &Argon2{config: cfg}, nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AlgorithmArgon2id
	}
	return name
}

func newSalt(n uint32) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("secret: read salt: %w", err)
	}
	return salt, nil
}

func decode(d Derived) (salt, key []byte, err error) {
	if len(d.Salt) > maxDerivedSize || len(d.DerivedKey) > maxDerivedSize {
		return nil, nil, ErrMalformed
	}
	salt, err = hex.DecodeString(d.Salt)
	if err != nil || len(salt) == 0 {
		return nil, nil, ErrMalformed
	}
	key, err = hex.DecodeString(d.DerivedKey)
	if err != nil || len(key) == 0 {
		return nil, nil, ErrMalformed
	}
	return salt, key, nil
}
