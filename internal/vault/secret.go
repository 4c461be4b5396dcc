package vault

import (
	"context"
	"fmt"

	"github.com/atinyakov/PassGuard/internal/models"
)

var errNotOwner = fmt.Errorf("%w: secret belongs to another account", models.ErrNotAuthorized)

// owner resolves the signed-in account and checks it still exists.
func (v *Vault) owner(ctx context.Context) (string, error) {
	identity, err := v.current()
	if err != nil {
		return "", err
	}
	if err := v.requireAccount(ctx, identity); err != nil {
		return "", err
	}
	return identity, nil
}

// ownedSecret loads the entry id and checks that owner may access it.
func (v *Vault) ownedSecret(ctx context.Context, owner, id string) (models.SecretEntry, error) {
	entry, err := v.store.FindSecret(ctx, id)
	if err != nil {
		return models.SecretEntry{}, err
	}
	if entry.OwnerIdentity != owner {
		return models.SecretEntry{}, errNotOwner
	}
	return entry, nil
}

// CreateSecret encrypts secret under the key of the signed-in account and
// stores it together with location.
func (v *Vault) CreateSecret(ctx context.Context, location, secret string) (entry models.SecretEntry, err error) {
	var owner string
	defer func() { v.record("createPassword", owner, &err) }()

	if owner, err = v.current(); err != nil {
		return models.SecretEntry{}, err
	}
	if location == "" {
		return models.SecretEntry{}, invalid("url required")
	}
	if secret == "" {
		return models.SecretEntry{}, invalid("password required")
	}
	if err := v.requireAccount(ctx, owner); err != nil {
		return models.SecretEntry{}, err
	}

	key, err := v.crypto.DeriveKey(owner)
	if err != nil {
		return models.SecretEntry{}, err
	}
	ciphertext, err := v.crypto.Encrypt(key, secret)
	if err != nil {
		return models.SecretEntry{}, err
	}

	return v.store.UpsertSecret(ctx, models.NewSecretEntry(owner, location, ciphertext))
}

// DeleteSecret removes the entry id if it belongs to the signed-in account.
func (v *Vault) DeleteSecret(ctx context.Context, id string) (deleted bool, err error) {
	var owner string
	defer func() { v.record("deletePassword", owner, &err) }()

	if owner, err = v.current(); err != nil {
		return false, err
	}
	if id == "" {
		return false, invalid("id required")
	}
	if err := v.requireAccount(ctx, owner); err != nil {
		return false, err
	}
	if _, err := v.ownedSecret(ctx, owner, id); err != nil {
		return false, err
	}

	if err := v.store.DeleteSecret(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// ListSecrets returns the entries of the signed-in account. Ciphertexts are
// returned as stored.
func (v *Vault) ListSecrets(ctx context.Context) (entries []models.SecretEntry, err error) {
	var owner string
	defer func() { v.record("getPasswords", owner, &err) }()

	if owner, err = v.owner(ctx); err != nil {
		return nil, err
	}
	return v.store.ListSecretsFor(ctx, owner)
}

// DecryptSecret returns the plaintext of entry id. Ownership is checked
// before any decryption is attempted.
func (v *Vault) DecryptSecret(ctx context.Context, id string) (plaintext string, err error) {
	var owner string
	defer func() { v.record("decrypt", owner, &err) }()

	if owner, err = v.current(); err != nil {
		return "", err
	}
	if id == "" {
		return "", invalid("id required")
	}
	if err := v.requireAccount(ctx, owner); err != nil {
		return "", err
	}

	entry, err := v.ownedSecret(ctx, owner, id)
	if err != nil {
		return "", err
	}
	key, err := v.crypto.DeriveKey(owner)
	if err != nil {
		return "", err
	}
	return v.crypto.Decrypt(key, entry.Ciphertext)
}
