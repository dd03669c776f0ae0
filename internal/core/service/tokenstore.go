package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/pkg/secret"
)

// KeyPrefix namespaces token entries in the backend.
const KeyPrefix = "token:"

// Operation names reported to the Observer.
const (
	OpStore   = "store"
	OpDelete  = "delete"
	OpConfirm = "confirm"
	OpFetch   = "fetch"
)

// Outcome labels reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Observer receives one call per completed token operation.
type Observer interface {
	ObserveTokenOperation(op, outcome string, elapsed time.Duration)
}

// Result is the outcome of a store, confirm or fetch.
//
// When Degraded is true no backend is configured, Token is nil and no I/O
// took place. Callers are expected to fall back to the user directory.
type Result struct {
	Token    *domain.Token
	Degraded bool
}

// DeleteResult is the outcome of DeleteTokens.
type DeleteResult struct {
	Deleted  int
	Degraded bool
}

// TokenStore issues, confirms, fetches and revokes tokens against one
// backend chosen at construction.
//
// A nil backend puts the store in degraded mode: every operation resolves
// immediately with Degraded set. TokenStore is safe for concurrent use.
type TokenStore struct {
	backend  storage.Backend
	hasher   secret.Hasher
	now      func() time.Time
	logger   *slog.Logger
	observer Observer

	// decoy is verified against when there is no stored hash, so every
	// failed confirm pays the same hashing cost.
	decoy *secret.Derived
}

// Option configures the TokenStore.
type Option func(*TokenStore)

// WithClock sets the time source used for TTL computation.
func WithClock(now func() time.Time) Option {
	return func(s *TokenStore) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TokenStore) {
		s.logger = logger
	}
}

// WithObserver sets the operation observer.
func WithObserver(o Observer) Option {
	return func(s *TokenStore) {
		s.observer = o
	}
}

// NewTokenStore creates a TokenStore. backend may be nil (degraded mode);
// hasher may be nil only if no stored token will ever carry a secret.
func NewTokenStore(backend storage.Backend, hasher secret.Hasher, opts ...Option) *TokenStore {
	s := &TokenStore{
		backend: backend,
		hasher:  hasher,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if hasher != nil {
		if d, err := hasher.Hash(decoySecret); err == nil {
			s.decoy = &d
		} else {
			s.logger.Warn("decoy secret hash failed", "error", err)
		}
	}
	return s
}

const decoySecret = "tokstore-decoy-secret"

// verifyDecoy runs the hasher against the decoy and discards the result.
func (s *TokenStore) verifyDecoy(supplied string) {
	if s.hasher == nil || s.decoy == nil {
		return
	}
	_ = s.hasher.Verify(*s.decoy, supplied)
}

// Enabled reports whether a backend is configured.
func (s *TokenStore) Enabled() bool {
	return s.backend != nil
}

// ============================================================================
// Store
// ============================================================================

// StoreToken persists t until t.Expires.
//
// A plaintext secret is replaced by its salted hash before serialization.
// The returned token carries neither the secret nor the hash. The caller's
// token is not modified. Backend errors are returned unchanged.
func (s *TokenStore) StoreToken(ctx context.Context, t *domain.Token) (res Result, err error) {
	start := s.now()
	defer func() { s.observe(OpStore, outcomeOf(res.Degraded, err), start) }()

	if s.backend == nil {
		return Result{Degraded: true}, nil
	}

	// 1. Validate
	if t == nil {
		return Result{}, domain.ErrTokenValidation.WithDetails("token is required")
	}
	if err := t.Validate(); err != nil {
		return Result{}, err
	}

	// 2. Replace the secret with derived material
	var derived domain.DerivedSecret
	if t.HasSecret() {
		if s.hasher == nil {
			return Result{}, domain.ErrHashFailed.WithDetails("no secret hasher configured")
		}
		d, err := s.hasher.Hash(t.Secret)
		if err != nil {
			return Result{}, domain.ErrHashFailed.WithCause(err)
		}
		derived = domain.DerivedSecret(d)
	}

	// 3. Serialize and store; ttl is sampled once and passed through as is
	record, err := domain.EncodeRecord(t, derived)
	if err != nil {
		return Result{}, err
	}
	ttl := t.TTL(s.now())

	if err := s.backend.StoreKey(ctx, KeyPrefix+t.Key, ttl, record); err != nil {
		s.logger.Warn("store token failed", failureAttrs(err, "key", t.Key)...)
		return Result{}, err
	}

	s.logger.Debug("token stored", "key", t.Key, "expires_at", t.ExpiresAt(), "ttl", ttl, "has_secret", t.HasSecret())
	return Result{Token: t.WithoutSecret()}, nil
}

// ============================================================================
// Delete
// ============================================================================

// DeleteTokens revokes keys in one batched backend call.
func (s *TokenStore) DeleteTokens(ctx context.Context, keys ...string) (res DeleteResult, err error) {
	start := s.now()
	defer func() { s.observe(OpDelete, outcomeOf(res.Degraded, err), start) }()

	if s.backend == nil {
		return DeleteResult{Degraded: true}, nil
	}
	if len(keys) == 0 {
		return DeleteResult{}, nil
	}

	entries := make([]string, len(keys))
	for i, key := range keys {
		entries[i] = KeyPrefix + key
	}

	n, err := s.backend.DeleteKeys(ctx, entries)
	if err != nil {
		s.logger.Warn("delete tokens failed", failureAttrs(err, "count", len(keys))...)
		return DeleteResult{}, err
	}

	s.logger.Debug("tokens deleted", "requested", len(keys), "deleted", n)
	return DeleteResult{Deleted: n}, nil
}

// ============================================================================
// Confirm
// ============================================================================

// ConfirmToken verifies supplied against the secret stored with key.
//
// An absent token, a token stored without a secret and a mismatching secret
// all return domain.ErrTokenInvalid, so callers cannot tell them apart.
func (s *TokenStore) ConfirmToken(ctx context.Context, key, supplied string) (res Result, err error) {
	start := s.now()
	defer func() { s.observe(OpConfirm, outcomeOf(res.Degraded, err), start) }()

	if s.backend == nil {
		return Result{Degraded: true}, nil
	}

	// 1. Load
	data, found, err := s.backend.GetKey(ctx, KeyPrefix+key)
	if err != nil {
		s.logger.Warn("confirm token failed", failureAttrs(err, "key", key)...)
		return Result{}, err
	}
	if !found {
		s.verifyDecoy(supplied)
		return Result{}, domain.ErrTokenInvalid
	}

	t, derived, err := domain.DecodeRecord(data)
	if err != nil {
		return Result{}, err
	}

	// 2. Verify
	if derived.IsZero() || s.hasher == nil {
		s.verifyDecoy(supplied)
		return Result{}, domain.ErrTokenInvalid
	}
	if err := s.hasher.Verify(secret.Derived(derived), supplied); err != nil {
		return Result{}, domain.ErrTokenInvalid
	}

	s.logger.Debug("token confirmed", "key", key)
	return Result{Token: t}, nil
}

// ============================================================================
// Fetch
// ============================================================================

// FetchToken reads the token stored under key without verifying anything.
// An absent key returns domain.ErrTokenNotFound.
func (s *TokenStore) FetchToken(ctx context.Context, key string) (res Result, err error) {
	start := s.now()
	defer func() { s.observe(OpFetch, outcomeOf(res.Degraded, err), start) }()

	if s.backend == nil {
		return Result{Degraded: true}, nil
	}

	data, found, err := s.backend.GetKey(ctx, KeyPrefix+key)
	if err != nil {
		s.logger.Warn("fetch token failed", failureAttrs(err, "key", key)...)
		return Result{}, err
	}
	if !found {
		return Result{}, domain.ErrTokenNotFound
	}

	t, _, err := domain.DecodeRecord(data)
	if err != nil {
		return Result{}, err
	}
	return Result{Token: t}, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// Ping probes the backend when it supports probing. A store without a
// backend, or with one that cannot be probed, is always reachable.
func (s *TokenStore) Ping(ctx context.Context) error {
	p, ok := s.backend.(storage.Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

// Quit releases the backend. Without a backend it reports NothingToRelease.
func (s *TokenStore) Quit(ctx context.Context) (storage.Release, error) {
	if s.backend == nil {
		return storage.NothingToRelease, nil
	}

	rel, err := s.backend.Quit(ctx)
	if err != nil {
		s.logger.Warn("backend release failed", "error", err)
		return rel, err
	}
	s.logger.Info("token store closed", "release", rel.String())
	return rel, nil
}

func (s *TokenStore) observe(op, outcome string, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveTokenOperation(op, outcome, s.now().Sub(start))
}

// failureAttrs appends the domain error code, when err carries one, and
// err itself to attrs.
func failureAttrs(err error, attrs ...any) []any {
	if code := domain.GetErrorCode(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	return append(attrs, "error", err)
}

func outcomeOf(degraded bool, err error) string {
	switch {
	case degraded:
		return OutcomeDegraded
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrTokenInvalid):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrTokenNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
