package repository

import (
	"context"

	"github.com/atinyakov/PassGuard/internal/models"
)

// UpsertAccount stores account, replacing any account with the same identity.
// Returns models.ErrInvalidInput if a field is empty.
func (s *SQLStore) UpsertAccount(ctx context.Context, account models.Account) (models.Account, error) {
	if err := account.Validate(); err != nil {
		return models.Account{}, err
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO accounts (identity, credential_hash) VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE SET credential_hash = EXCLUDED.credential_hash
	`), account.Identity, account.CredentialHash)
	if err != nil {
		return models.Account{}, storageErr("upsert account", err)
	}
	return account, nil
}

// FindAccount loads the account with the given identity.
// Returns models.ErrNotFound if no such account exists.
func (s *SQLStore) FindAccount(ctx context.Context, identity string) (models.Account, error) {
	var account models.Account
	err := s.DB.QueryRowContext(ctx, s.rebind(
		`SELECT identity, credential_hash FROM accounts WHERE identity = $1`,
	), identity).Scan(&account.Identity, &account.CredentialHash)
	if err != nil {
		return models.Account{}, lookupErr("account", identity, err)
	}
	return account, nil
}

// DeleteAccount removes the account. Secrets owned by it are left in place.
func (s *SQLStore) DeleteAccount(ctx context.Context, identity string) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM accounts WHERE identity = $1`), identity)
	if err != nil {
		return storageErr("delete account", err)
	}
	return nil
}
