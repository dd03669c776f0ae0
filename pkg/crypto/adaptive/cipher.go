// Package adaptive provides authenticated encryption with hardware-aware
// algorithm selection.
package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

const (
	tagAESGCM   byte = 1
	tagChaCha20 byte = 2
)

// Errors returned by Decrypt.
var (
	ErrCiphertextTooShort = errors.New("adaptive: ciphertext too short")
	ErrUnknownAlgorithm   = errors.New("adaptive: unknown algorithm tag")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	// Type returns the algorithm used by Encrypt.
	Type() CipherType

	// Encrypt seals plaintext bound to additionalData.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt opens a ciphertext produced by any supported algorithm.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	// Overhead returns the bytes added by Encrypt (tag byte, nonce, auth tag).
	Overhead() int
}

// New creates a cipher that encrypts with the hardware-preferred algorithm.
func New(key []byte) (Cipher, error) {
	if hasAESNI() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher that encrypts with the given algorithm.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("adaptive: invalid key size %d, must be %d bytes", len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	chacha, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	c := &aeadCipher{
		byTag: map[byte]cipher.AEAD{
			tagAESGCM:   gcm,
			tagChaCha20: chacha,
		},
	}

	switch cipherType {
	case CipherAESGCM:
		c.typ, c.tag = CipherAESGCM, tagAESGCM
	case CipherChaCha20:
		c.typ, c.tag = CipherChaCha20, tagChaCha20
	default:
		return nil, errors.New("adaptive: unknown cipher type: " + string(cipherType))
	}

	return c, nil
}

// ParseKey decodes a configured key: 64 hex characters or 32 raw bytes.
func ParseKey(s string) ([]byte, error) {
	if len(s) == 2*KeySize {
		key, err := hex.DecodeString(s)
		if err == nil {
			return key, nil
		}
	}
	if len(s) == KeySize {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("adaptive: key must be %d hex characters or %d bytes", 2*KeySize, KeySize)
}

// hasAESNI reports whether AES is likely hardware accelerated.
// Go uses AES-NI on amd64 and the ARMv8 crypto extensions on arm64.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

type aeadCipher struct {
	typ   CipherType
	tag   byte
	byTag map[byte]cipher.AEAD
}

func (c *aeadCipher) Type() CipherType {
	return c.typ
}

func (c *aeadCipher) Overhead() int {
	aead := c.byTag[c.tag]
	return 1 + aead.NonceSize() + aead.Overhead()
}

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	aead := c.byTag[c.tag]

	out := make([]byte, 1+aead.NonceSize(), c.Overhead()+len(plaintext))
	out[0] = c.tag
	nonce := out[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(out, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < 1 {
		return nil, ErrCiphertextTooShort
	}
	aead, ok := c.byTag[ciphertext[0]]
	if !ok {
		return nil, ErrUnknownAlgorithm
	}

	body := ciphertext[1:]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, sealed := body[:aead.NonceSize()], body[aead.NonceSize():]

	return aead.Open(nil, nonce, sealed, additionalData)
}
