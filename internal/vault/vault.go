// Package vault implements the authorization-bearing operations of PassGuard:
// signing in and out, managing accounts, and storing, listing and decrypting
// secrets for the account of the active session.
package vault

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/atinyakov/PassGuard/internal/crypto"
	"github.com/atinyakov/PassGuard/internal/models"
	"github.com/atinyakov/PassGuard/internal/session"
)

// Store defines the persistence operations required by the vault.
type Store interface {
	// UpsertAccount replaces the account with the same identity, or inserts it.
	UpsertAccount(ctx context.Context, account models.Account) (models.Account, error)
	// FindAccount returns models.ErrNotFound if the identity is unknown.
	FindAccount(ctx context.Context, identity string) (models.Account, error)
	// DeleteAccount removes the account without touching its secrets.
	DeleteAccount(ctx context.Context, identity string) error
	// UpsertSecret replaces the entry with the same ID, or inserts it.
	UpsertSecret(ctx context.Context, entry models.SecretEntry) (models.SecretEntry, error)
	// FindSecret returns models.ErrNotFound if the ID is unknown.
	FindSecret(ctx context.Context, id string) (models.SecretEntry, error)
	// DeleteSecret removes the entry with the given ID.
	DeleteSecret(ctx context.Context, id string) error
	// ListSecretsFor returns every entry owned by owner.
	ListSecretsFor(ctx context.Context, owner string) ([]models.SecretEntry, error)
}

// Crypto defines the cryptographic operations required by the vault.
type Crypto interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
	DeriveKey(identity string) (crypto.Key, error)
	Encrypt(key crypto.Key, plaintext string) (string, error)
	Decrypt(key crypto.Key, ciphertext string) (string, error)
}

// Vault composes storage, cryptography and the session into the vault commands.
// It is safe for concurrent use; the session is its only mutable state.
type Vault struct {
	store   Store
	crypto  Crypto
	session *session.Manager
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger used to record command outcomes.
func WithLogger(log *zap.Logger) Option {
	return func(v *Vault) { v.log = log }
}

// WithSignInLimit throttles SignIn to r attempts per second with the given burst.
func WithSignInLimit(r rate.Limit, burst int) Option {
	return func(v *Vault) { v.limiter = rate.NewLimiter(r, burst) }
}

// WithSession makes the vault use m instead of a fresh anonymous session.
func WithSession(m *session.Manager) Option {
	return func(v *Vault) { v.session = m }
}

// New constructs a Vault with an anonymous session.
func New(store Store, c Crypto, opts ...Option) *Vault {
	v := &Vault{
		store:   store,
		crypto:  c,
		session: session.New(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var errNoSession = fmt.Errorf("%w: no active session", models.ErrNotAuthorized)

// Current returns the identity of the active session, if any.
func (v *Vault) Current() (string, bool, error) {
	return v.session.Current()
}

// current returns the session identity or models.ErrNotAuthorized.
func (v *Vault) current() (string, error) {
	identity, ok, err := v.session.Current()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNoSession
	}
	return identity, nil
}

// requireAccount checks that the session account still exists.
func (v *Vault) requireAccount(ctx context.Context, identity string) error {
	_, err := v.store.FindAccount(ctx, identity)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: account %q no longer exists", models.ErrNotAuthorized, identity)
	}
	return err
}

// record logs the outcome of a command. Secrets never reach the log.
func (v *Vault) record(command, identity string, err *error) {
	fields := []zap.Field{zap.String("command", command), zap.String("user", identity)}
	if *err == nil {
		v.log.Info("command succeeded", fields...)
		return
	}
	fields = append(fields, zap.String("kind", models.Kind(*err)), zap.Error(*err))
	switch {
	case errors.Is(*err, models.ErrStorage), models.Kind(*err) == "Internal":
		v.log.Error("command failed", fields...)
	default:
		v.log.Warn("command rejected", fields...)
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, msg)
}
