// Package models defines the core data structures for accounts and secrets.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Account represents an authenticatable principal of the vault.
type Account struct {
	// Identity is the unique, immutable login of the account.
	Identity string `json:"username"`
	// CredentialHash is the one-way digest of the account password.
	CredentialHash string `json:"-"`
}

// Validate reports ErrInvalidInput if any field is empty.
func (a Account) Validate() error {
	if a.Identity == "" || a.CredentialHash == "" {
		return fmt.Errorf("%w: username or password is empty", ErrInvalidInput)
	}
	return nil
}

// SecretEntry holds an encrypted credential owned by exactly one account.
type SecretEntry struct {
	// ID is the generated unique identifier of the entry.
	ID string `json:"id"`
	// Location is a free-text resource locator, usually a URL.
	Location string `json:"url"`
	// Ciphertext is the secret encrypted under the owner's derived key.
	Ciphertext string `json:"password"`
	// OwnerIdentity references Account.Identity.
	OwnerIdentity string `json:"user_id"`
}

// NewSecretEntry builds an entry with a freshly generated ID.
func NewSecretEntry(owner, location, ciphertext string) SecretEntry {
	return SecretEntry{
		ID:            uuid.NewString(),
		Location:      location,
		Ciphertext:    ciphertext,
		OwnerIdentity: owner,
	}
}

// Validate reports ErrInvalidInput if the location or ciphertext is empty.
func (s SecretEntry) Validate() error {
	if s.Location == "" || s.Ciphertext == "" {
		return fmt.Errorf("%w: url or password is empty", ErrInvalidInput)
	}
	if s.ID == "" || s.OwnerIdentity == "" {
		return fmt.Errorf("%w: id or owner is empty", ErrInvalidInput)
	}
	return nil
}
