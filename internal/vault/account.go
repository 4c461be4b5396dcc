package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/PassGuard/internal/models"
)

var errBadCredentials = fmt.Errorf("%w: invalid username or password", models.ErrNotAuthorized)

// SignIn authenticates name with secret and makes it the active session.
// The previous session is always cleared first. An unknown name and a wrong
// secret both yield the same models.ErrNotAuthorized.
func (v *Vault) SignIn(ctx context.Context, name, secret string) (identity string, err error) {
	defer v.record("signin", name, &err)

	if err := v.session.SignOut(); err != nil {
		return "", err
	}
	if name == "" {
		return "", invalid("username required")
	}
	if secret == "" {
		return "", invalid("password required")
	}
	if !v.limiter.Allow() {
		return "", models.ErrThrottled
	}

	account, err := v.store.FindAccount(ctx, name)
	if errors.Is(err, models.ErrNotFound) {
		// same hashing cost as a known account
		v.crypto.Verify(secret, "")
		return "", errBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !v.crypto.Verify(secret, account.CredentialHash) {
		return "", errBadCredentials
	}

	if err := v.session.SignIn(account.Identity); err != nil {
		return "", err
	}
	return account.Identity, nil
}

// SignOut ends the active session. It fails with models.ErrNotAuthorized
// when nobody is signed in.
func (v *Vault) SignOut(ctx context.Context) (err error) {
	var identity string
	defer func() { v.record("signout", identity, &err) }()

	var signedIn bool
	err = v.session.Update(func(current string, ok bool) string {
		identity, signedIn = current, ok
		return ""
	})
	if err != nil {
		return err
	}
	if !signedIn {
		return errNoSession
	}
	return nil
}

// CreateAccount stores an account for name, replacing any account with the
// same identity, and signs it in. The returned account never carries the
// raw secret.
func (v *Vault) CreateAccount(ctx context.Context, name, secret string) (account models.Account, err error) {
	defer v.record("createUser", name, &err)

	if name == "" {
		return models.Account{}, invalid("username required")
	}
	if secret == "" {
		return models.Account{}, invalid("password required")
	}

	digest, err := v.crypto.Hash(secret)
	if err != nil {
		return models.Account{}, err
	}
	account, err = v.store.UpsertAccount(ctx, models.Account{Identity: name, CredentialHash: digest})
	if err != nil {
		return models.Account{}, err
	}

	if err := v.session.SignIn(account.Identity); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// DeleteAccount removes the account name. Only the account of the active
// session may delete itself; the session ends on success. Secrets owned by
// the account are not removed.
func (v *Vault) DeleteAccount(ctx context.Context, name string) (deleted bool, err error) {
	defer v.record("deleteUser", name, &err)

	owner, err := v.current()
	if err != nil {
		return false, err
	}
	if err := v.requireAccount(ctx, owner); err != nil {
		return false, err
	}
	if owner != name {
		return false, fmt.Errorf("%w: cannot delete another account", models.ErrNotAuthorized)
	}

	if err := v.store.DeleteAccount(ctx, name); err != nil {
		return false, err
	}

	err = v.session.Update(func(current string, _ bool) string {
		if current == name {
			return ""
		}
		return current
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
