// Package domain defines the core domain models for TokStore.
package domain

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Serialized field names. Claims may not use them.
const (
	FieldKey        = "key"
	FieldExpires    = "expires"
	FieldSecret     = "password"
	FieldSalt       = "salt"
	FieldDerivedKey = "derived_key"
)

// MaxKeyLength bounds caller-supplied token keys.
const MaxKeyLength = 256

var reservedFields = map[string]struct{}{
	FieldKey:        {},
	FieldExpires:    {},
	FieldSecret:     {},
	FieldSalt:       {},
	FieldDerivedKey: {},
}

// IsReservedField reports whether name is owned by the token record itself.
func IsReservedField(name string) bool {
	_, ok := reservedFields[name]
	return ok
}

// Token is an ephemeral credential record identified by Key.
//
// On the wire a token is a flat JSON object: key, expires, every claim at the
// top level, and "password" for the plaintext secret. The secret is accepted
// when decoding but never emitted when encoding.
type Token struct {
	// Key is the caller-supplied unique identifier.
	Key string

	// Expires is the absolute expiry instant in Unix milliseconds.
	Expires int64

	// Secret is plaintext credential material, present only at issuance.
	Secret string

	// Claims are pass-through fields, opaque to the store.
	Claims map[string]any
}

// DerivedSecret is the salted hash material that replaces a plaintext secret
// while a token is persisted.
type DerivedSecret struct {
	Salt       string `json:"salt"`
	DerivedKey string `json:"derived_key"`
}

// IsZero reports whether no derived material is present.
func (d DerivedSecret) IsZero() bool {
	return d.Salt == "" && d.DerivedKey == ""
}

// ExpiresAt returns Expires as a time.Time.
func (t *Token) ExpiresAt() time.Time {
	return time.UnixMilli(t.Expires)
}

// MaxTTL bounds TTL so that far-future expiries, such as math.MaxInt64 used
// as "never", do not overflow time.Duration. It is a whole number of seconds.
const MaxTTL = time.Duration(math.MaxInt64/int64(time.Second)) * time.Second

// TTL returns the remaining lifetime relative to now, truncated to whole
// milliseconds and clamped to [-MaxTTL, MaxTTL]. It is negative for an
// already expired token.
func (t *Token) TTL(now time.Time) time.Duration {
	nowMs := now.UnixMilli()
	maxMs := MaxTTL.Milliseconds()
	switch {
	case t.Expires > nowMs+maxMs:
		return MaxTTL
	case t.Expires < nowMs-maxMs:
		return -MaxTTL
	}
	return time.Duration(t.Expires-nowMs) * time.Millisecond
}

// HasSecret reports whether plaintext secret material is attached.
func (t *Token) HasSecret() bool {
	return t.Secret != ""
}

// Validate checks structural constraints on the token.
func (t *Token) Validate() error {
	if t.Key == "" {
		return ErrTokenValidation.WithDetails("key is required")
	}
	if len(t.Key) > MaxKeyLength {
		return ErrTokenValidation.WithDetails(fmt.Sprintf("key exceeds %d bytes", MaxKeyLength))
	}
	for name := range t.Claims {
		if IsReservedField(name) {
			return ErrTokenValidation.WithDetails("claim uses reserved field: " + name)
		}
	}
	return nil
}

// Clone returns a deep copy of the token's top-level fields.
// Claim values are shared; they are treated as immutable.
func (t *Token) Clone() *Token {
	clone := *t
	if t.Claims != nil {
		clone.Claims = make(map[string]any, len(t.Claims))
		for k, v := range t.Claims {
			clone.Claims[k] = v
		}
	}
	return &clone
}

// WithoutSecret returns a copy of the token with the plaintext secret removed.
func (t *Token) WithoutSecret() *Token {
	clone := t.Clone()
	clone.Secret = ""
	return clone
}

func (t Token) fields() map[string]any {
	m := make(map[string]any, len(t.Claims)+2)
	for k, v := range t.Claims {
		if !IsReservedField(k) {
			m[k] = v
		}
	}
	m[FieldKey] = t.Key
	m[FieldExpires] = t.Expires
	return m
}

// MarshalJSON encodes the token as a flat object. The secret is never written.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.fields())
}

// UnmarshalJSON decodes a flat token object. Unknown fields become claims;
// salt and derived_key are ignored.
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Token
	for name, value := range raw {
		switch name {
		case FieldKey:
			if err := json.Unmarshal(value, &out.Key); err != nil {
				return fmt.Errorf("decode %s: %w", FieldKey, err)
			}
		case FieldExpires:
			if err := json.Unmarshal(value, &out.Expires); err != nil {
				return fmt.Errorf("decode %s: %w", FieldExpires, err)
			}
		case FieldSecret:
			if err := json.Unmarshal(value, &out.Secret); err != nil {
				return fmt.Errorf("decode %s: %w", FieldSecret, err)
			}
		case FieldSalt, FieldDerivedKey:
		default:
			var claim any
			if err := json.Unmarshal(value, &claim); err != nil {
				return fmt.Errorf("decode claim %s: %w", name, err)
			}
			if out.Claims == nil {
				out.Claims = make(map[string]any)
			}
			out.Claims[name] = claim
		}
	}

	*t = out
	return nil
}

// EncodeRecord serializes a token for persistence, carrying derived in place
// of any secret. The plaintext secret is never part of the record.
func EncodeRecord(t *Token, derived DerivedSecret) ([]byte, error) {
	m := t.fields()
	if !derived.IsZero() {
		m[FieldSalt] = derived.Salt
		m[FieldDerivedKey] = derived.DerivedKey
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, ErrSerialization.WithCause(err)
	}
	return data, nil
}

// DecodeRecord parses a persisted record back into the token and its derived
// secret material. A plaintext secret found in the record is discarded.
func DecodeRecord(data []byte) (*Token, DerivedSecret, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, DerivedSecret{}, ErrSerialization.WithCause(err)
	}
	t.Secret = ""

	var derived DerivedSecret
	if err := json.Unmarshal(data, &derived); err != nil {
		return nil, DerivedSecret{}, ErrSerialization.WithCause(err)
	}
	return &t, derived, nil
}

// GenerateKey returns a new token key: lowercase ULID, sortable by issue time.
func GenerateKey() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return strings.ToLower(id.String()), nil
}

// timeNow is a hook for testing.
var timeNow = time.Now
