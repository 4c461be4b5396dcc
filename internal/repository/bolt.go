package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/atinyakov/PassGuard/internal/models"
)

var (
	accountsBucket = []byte("accounts")
	secretsBucket  = []byte("secrets")
)

// accountRecord is the stored form of an account. models.Account hides its
// hash from JSON, so it cannot be stored directly.
type accountRecord struct {
	Identity       string `json:"identity"`
	CredentialHash string `json:"credential_hash"`
}

type secretRecord struct {
	ID            string `json:"id"`
	Location      string `json:"location"`
	Ciphertext    string `json:"ciphertext"`
	OwnerIdentity string `json:"owner_identity"`
}

// BoltStore implements account and secret persistence on an embedded bbolt file.
// Accounts and secrets live in two buckets keyed by their primary key; each
// call runs in its own bbolt transaction.
type BoltStore struct {
	DB *bbolt.DB
}

// NewBoltStore wraps db and creates the buckets if needed.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{accountsBucket, secretsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("init bolt", err)
	}
	return &BoltStore{DB: db}, nil
}

// boltErr keeps lookup misses distinct from backend failures.
func boltErr(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return storageErr(op, err)
}

// UpsertAccount stores account, replacing any account with the same identity.
func (s *BoltStore) UpsertAccount(ctx context.Context, account models.Account) (models.Account, error) {
	if err := account.Validate(); err != nil {
		return models.Account{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Account{}, storageErr("upsert account", err)
	}
	data, err := json.Marshal(accountRecord(account))
	if err != nil {
		return models.Account{}, storageErr("encode account", err)
	}
	err = s.DB.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).Put([]byte(account.Identity), data)
	})
	if err != nil {
		return models.Account{}, storageErr("upsert account", err)
	}
	return account, nil
}

// FindAccount loads the account with the given identity.
func (s *BoltStore) FindAccount(ctx context.Context, identity string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, storageErr("find account", err)
	}
	var rec accountRecord
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(accountsBucket).Get([]byte(identity))
		if data == nil {
			return fmt.Errorf("account %q: %w", identity, models.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return models.Account{}, boltErr("find account", err)
	}
	return models.Account(rec), nil
}

// DeleteAccount removes the account. Secrets owned by it are left in place.
func (s *BoltStore) DeleteAccount(ctx context.Context, identity string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete account", err)
	}
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(accountsBucket).Delete([]byte(identity))
	})
	if err != nil {
		return storageErr("delete account", err)
	}
	return nil
}

// UpsertSecret stores entry, replacing any entry with the same ID.
func (s *BoltStore) UpsertSecret(ctx context.Context, entry models.SecretEntry) (models.SecretEntry, error) {
	if err := entry.Validate(); err != nil {
		return models.SecretEntry{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.SecretEntry{}, storageErr("upsert secret", err)
	}
	data, err := json.Marshal(secretRecord(entry))
	if err != nil {
		return models.SecretEntry{}, storageErr("encode secret", err)
	}
	err = s.DB.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(secretsBucket).Put([]byte(entry.ID), data)
	})
	if err != nil {
		return models.SecretEntry{}, storageErr("upsert secret", err)
	}
	return entry, nil
}

// FindSecret retrieves a single entry by ID regardless of its owner.
func (s *BoltStore) FindSecret(ctx context.Context, id string) (models.SecretEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.SecretEntry{}, storageErr("find secret", err)
	}
	var rec secretRecord
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(secretsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("secret %q: %w", id, models.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return models.SecretEntry{}, boltErr("find secret", err)
	}
	return models.SecretEntry(rec), nil
}

// DeleteSecret removes the entry with the given ID.
func (s *BoltStore) DeleteSecret(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete secret", err)
	}
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(secretsBucket).Delete([]byte(id))
	})
	if err != nil {
		return storageErr("delete secret", err)
	}
	return nil
}

// ListSecretsFor scans the secrets bucket for entries owned by owner.
func (s *BoltStore) ListSecretsFor(ctx context.Context, owner string) ([]models.SecretEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list secrets", err)
	}
	entries := make([]models.SecretEntry, 0)
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(secretsBucket).ForEach(func(_, v []byte) error {
			var rec secretRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.OwnerIdentity == owner {
				entries = append(entries, models.SecretEntry(rec))
			}
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("list secrets", err)
	}
	return entries, nil
}

// DeleteOrphanSecrets removes entries whose owner account no longer exists.
func (s *BoltStore) DeleteOrphanSecrets(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, storageErr("delete orphan secrets", err)
	}
	var removed int64
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(accountsBucket)
		secrets := tx.Bucket(secretsBucket)

		var orphans [][]byte
		err := secrets.ForEach(func(k, v []byte) error {
			var rec secretRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if accounts.Get([]byte(rec.OwnerIdentity)) == nil {
				orphans = append(orphans, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// bbolt forbids mutating a bucket while iterating it
		for _, k := range orphans {
			if err := secrets.Delete(k); err != nil {
				return err
			}
		}
		removed = int64(len(orphans))
		return nil
	})
	if err != nil {
		return 0, storageErr("delete orphan secrets", err)
	}
	return removed, nil
}
