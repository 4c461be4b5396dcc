// Package crypto implements credential hashing, per-account key derivation
// and authenticated encryption of stored secrets.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/atinyakov/PassGuard/internal/models"
)

// KeySize is the size of a derived secret key (256 bits).
const KeySize = 32

const keyInfo = "passguard secret key v1"

var (
	defaultPepper  = []byte("passguard/credential-hash/v1")
	defaultKeySalt = []byte("passguard/secret-key/v1")
)

// Key is a symmetric key derived from an account identity.
type Key [KeySize]byte

// HashParams configures the Argon2id digest of account passwords.
type HashParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultHashParams are the interactive-login parameters recommended by RFC 9106.
var DefaultHashParams = HashParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
}

// Options configures a Provider. Zero values fall back to defaults.
type Options struct {
	Algorithm Algorithm
	Hash      HashParams
	// Pepper is the fixed Argon2id salt. It keeps Hash deterministic.
	Pepper []byte
	// KeySalt is the HKDF salt used by DeriveKey.
	KeySalt []byte
}

// Provider performs all cryptographic operations of the vault.
type Provider struct {
	alg     Algorithm
	params  HashParams
	pepper  []byte
	keySalt []byte
}

// NewProvider creates a provider from opts.
func NewProvider(opts Options) *Provider {
	p := &Provider{
		alg:     opts.Algorithm,
		params:  opts.Hash,
		pepper:  opts.Pepper,
		keySalt: opts.KeySalt,
	}
	if p.alg == 0 {
		p.alg = AESGCM
	}
	if p.params == (HashParams{}) {
		p.params = DefaultHashParams
	}
	if len(p.pepper) == 0 {
		p.pepper = defaultPepper
	}
	if len(p.keySalt) == 0 {
		p.keySalt = defaultKeySalt
	}
	return p
}

// Hash returns the hex encoded Argon2id digest of secret.
// Equal secrets always produce equal digests for the same provider options.
func (p *Provider) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.Wrap(models.ErrInvalidInput, "password cannot be empty")
	}
	sum := argon2.IDKey([]byte(secret), p.pepper, p.params.Time, p.params.Memory, p.params.Threads, p.params.KeyLen)
	return hex.EncodeToString(sum), nil
}

// Verify reports whether secret hashes to digest. The comparison is constant time.
func (p *Provider) Verify(secret, digest string) bool {
	got, err := p.Hash(secret)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(digest)) == 1
}

// DeriveKey derives the secret key of identity with HKDF-SHA256.
// The same identity always yields the same key.
func (p *Provider) DeriveKey(identity string) (Key, error) {
	var key Key
	if identity == "" {
		return key, errors.Wrap(models.ErrInvalidInput, "identity cannot be empty")
	}
	r := hkdf.New(sha256.New, []byte(identity), p.keySalt, []byte(keyInfo))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, errors.Wrap(err, "cannot derive key")
	}
	return key, nil
}
