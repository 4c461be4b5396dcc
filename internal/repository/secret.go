package repository

import (
	"context"

	"github.com/atinyakov/PassGuard/internal/models"
)

// UpsertSecret stores entry, replacing any entry with the same ID.
// Returns models.ErrInvalidInput if the location or ciphertext is empty.
func (s *SQLStore) UpsertSecret(ctx context.Context, entry models.SecretEntry) (models.SecretEntry, error) {
	if err := entry.Validate(); err != nil {
		return models.SecretEntry{}, err
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO secrets (id, location, ciphertext, owner_identity) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			location = EXCLUDED.location,
			ciphertext = EXCLUDED.ciphertext,
			owner_identity = EXCLUDED.owner_identity
	`), entry.ID, entry.Location, entry.Ciphertext, entry.OwnerIdentity)
	if err != nil {
		return models.SecretEntry{}, storageErr("upsert secret", err)
	}
	return entry, nil
}

// FindSecret retrieves a single entry by ID regardless of its owner.
// Returns models.ErrNotFound if no such entry exists.
func (s *SQLStore) FindSecret(ctx context.Context, id string) (models.SecretEntry, error) {
	var entry models.SecretEntry
	err := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT id, location, ciphertext, owner_identity FROM secrets WHERE id = $1
	`), id).Scan(&entry.ID, &entry.Location, &entry.Ciphertext, &entry.OwnerIdentity)
	if err != nil {
		return models.SecretEntry{}, lookupErr("secret", id, err)
	}
	return entry, nil
}

// DeleteSecret removes the entry with the given ID.
func (s *SQLStore) DeleteSecret(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM secrets WHERE id = $1`), id)
	if err != nil {
		return storageErr("delete secret", err)
	}
	return nil
}

// ListSecretsFor fetches all entries owned by owner. The order is unspecified.
func (s *SQLStore) ListSecretsFor(ctx context.Context, owner string) ([]models.SecretEntry, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(`
		SELECT id, location, ciphertext, owner_identity FROM secrets WHERE owner_identity = $1
	`), owner)
	if err != nil {
		return nil, storageErr("list secrets", err)
	}
	defer rows.Close()

	entries := make([]models.SecretEntry, 0)
	for rows.Next() {
		var entry models.SecretEntry
		if err := rows.Scan(&entry.ID, &entry.Location, &entry.Ciphertext, &entry.OwnerIdentity); err != nil {
			return nil, storageErr("scan secret", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate secrets", err)
	}
	return entries, nil
}

// DeleteOrphanSecrets removes entries whose owner account no longer exists
// and returns how many were removed.
func (s *SQLStore) DeleteOrphanSecrets(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM secrets
		 WHERE owner_identity NOT IN (SELECT identity FROM accounts)
	`)
	if err != nil {
		return 0, storageErr("delete orphan secrets", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete orphan secrets", err)
	}
	return removed, nil
}
