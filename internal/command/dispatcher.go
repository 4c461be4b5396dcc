// Package command maps named requests onto vault operations. It is the only
// command surface of PassGuard; front ends marshal to and from Request and
// Response.
package command

import (
	"context"
	"fmt"

	"github.com/atinyakov/PassGuard/internal/models"
)

// Vault defines the operations the dispatcher forwards to.
type Vault interface {
	// SignIn authenticates a user and makes it the active session.
	SignIn(ctx context.Context, name, secret string) (string, error)
	// SignOut ends the active session.
	SignOut(ctx context.Context) error
	// CreateAccount registers (or replaces) a user and signs it in.
	CreateAccount(ctx context.Context, name, secret string) (models.Account, error)
	// DeleteAccount removes the signed-in user's own account.
	DeleteAccount(ctx context.Context, name string) (bool, error)
	CreateSecret(ctx context.Context, location, secret string) (models.SecretEntry, error)
	DeleteSecret(ctx context.Context, id string) (bool, error)
	ListSecrets(ctx context.Context) ([]models.SecretEntry, error)
	DecryptSecret(ctx context.Context, id string) (string, error)
}

// Method names accepted by Dispatch.
const (
	MethodSignIn         = "signin"
	MethodSignOut        = "signout"
	MethodCreateUser     = "createUser"
	MethodDeleteUser     = "deleteUser"
	MethodCreatePassword = "createPassword"
	MethodDeletePassword = "deletePassword"
	MethodGetPasswords   = "getPasswords"
	MethodDecrypt        = "decrypt"
)

// Request names a method and carries its positional arguments.
type Request struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

// Failure describes a failed request.
type Failure struct {
	// Kind is one of the error kind tags reported by models.Kind.
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is the structured result of a request: exactly one of Result and
// Error is meaningful.
type Response struct {
	Result any      `json:"result"`
	Error  *Failure `json:"error,omitempty"`
}

// UserResult is returned by the signin and createUser methods.
type UserResult struct {
	Username string `json:"username"`
}

// Dispatcher routes requests to a Vault.
type Dispatcher struct {
	Vault Vault
}

// New returns a dispatcher bound to v.
func New(v Vault) *Dispatcher {
	return &Dispatcher{Vault: v}
}

// param returns the i-th argument or an invalid input error naming it.
func param(req Request, i int, name string) (string, error) {
	if i >= len(req.Params) || req.Params[i] == "" {
		return "", fmt.Errorf("%w: %s required", models.ErrInvalidInput, name)
	}
	return req.Params[i], nil
}

// Dispatch executes req and returns its raw result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case MethodSignIn:
		name, err := param(req, 0, "username")
		if err != nil {
			return nil, err
		}
		secret, err := param(req, 1, "password")
		if err != nil {
			return nil, err
		}
		identity, err := d.Vault.SignIn(ctx, name, secret)
		if err != nil {
			return nil, err
		}
		return UserResult{Username: identity}, nil

	case MethodSignOut:
		if err := d.Vault.SignOut(ctx); err != nil {
			return nil, err
		}
		return true, nil

	case MethodCreateUser:
		name, err := param(req, 0, "username")
		if err != nil {
			return nil, err
		}
		secret, err := param(req, 1, "password")
		if err != nil {
			return nil, err
		}
		account, err := d.Vault.CreateAccount(ctx, name, secret)
		if err != nil {
			return nil, err
		}
		return UserResult{Username: account.Identity}, nil

	case MethodDeleteUser:
		name, err := param(req, 0, "username")
		if err != nil {
			return nil, err
		}
		return d.Vault.DeleteAccount(ctx, name)

	case MethodCreatePassword:
		location, err := param(req, 0, "url")
		if err != nil {
			return nil, err
		}
		secret, err := param(req, 1, "password")
		if err != nil {
			return nil, err
		}
		if _, err := d.Vault.CreateSecret(ctx, location, secret); err != nil {
			return nil, err
		}
		return true, nil

	case MethodDeletePassword:
		id, err := param(req, 0, "id")
		if err != nil {
			return nil, err
		}
		return d.Vault.DeleteSecret(ctx, id)

	case MethodGetPasswords:
		return d.Vault.ListSecrets(ctx)

	case MethodDecrypt:
		id, err := param(req, 0, "id")
		if err != nil {
			return nil, err
		}
		return d.Vault.DecryptSecret(ctx, id)

	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownEntrypoint, req.Method)
	}
}

// Handle executes req and wraps the outcome in a Response.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Response {
	result, err := d.Dispatch(ctx, req)
	if err != nil {
		return Response{Error: &Failure{Kind: models.Kind(err), Message: err.Error()}}
	}
	return Response{Result: result}
}
