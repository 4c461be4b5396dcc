package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/atinyakov/PassGuard/internal/models"
)

// Algorithm identifies the AEAD a ciphertext was sealed with.
// Its value is stored as the first byte of every ciphertext.
type Algorithm byte

const (
	// AESGCM is AES-256 in Galois/Counter Mode.
	AESGCM Algorithm = 1
	// XChaCha20Poly1305 is XChaCha20-Poly1305 with 192-bit nonces.
	XChaCha20Poly1305 Algorithm = 2
)

// String returns the configuration name of a.
func (a Algorithm) String() string {
	switch a {
	case AESGCM:
		return "aes-gcm"
	case XChaCha20Poly1305:
		return "xchacha20poly1305"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a configuration name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "aes-gcm":
		return AESGCM, nil
	case "xchacha20poly1305":
		return XChaCha20Poly1305, nil
	default:
		return 0, errors.Errorf("unsupported cipher %q", name)
	}
}

func newAEAD(alg Algorithm, key Key) (cipher.AEAD, error) {
	switch alg {
	case AESGCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, errors.Wrap(err, "cannot create new aes block cipher")
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, errors.Wrap(err, "cannot create new gcm cipher")
		}
		return gcm, nil
	case XChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key[:])
		if err != nil {
			return nil, errors.Wrap(err, "cannot create new xchacha20poly1305 cipher")
		}
		return aead, nil
	default:
		return nil, errors.Wrapf(models.ErrDecryption, "unknown algorithm %d", alg)
	}
}

// Encrypt seals plaintext under key.
// The result is base64(algorithm || nonce || ciphertext+tag).
func (p *Provider) Encrypt(key Key, plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.Wrap(models.ErrInvalidInput, "password cannot be empty")
	}
	aead, err := newAEAD(p.alg, key)
	if err != nil {
		return "", err
	}

	out := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	out[0] = byte(p.alg)
	nonce := out[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "cannot generate nonce")
	}
	out = aead.Seal(out, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any malformed input or a
// key mismatch results in models.ErrDecryption.
func (p *Provider) Decrypt(key Key, ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(models.ErrDecryption, "malformed ciphertext encoding")
	}
	if len(data) < 1 {
		return "", errors.Wrap(models.ErrDecryption, "ciphertext is empty")
	}

	aead, err := newAEAD(Algorithm(data[0]), key)
	if err != nil {
		return "", err
	}
	data = data[1:]
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return "", errors.Wrap(models.ErrDecryption, "ciphertext too short")
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Wrap(models.ErrDecryption, "message authentication failed")
	}
	return string(plain), nil
}
