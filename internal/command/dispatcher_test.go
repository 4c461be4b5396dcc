package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/atinyakov/PassGuard/internal/models"
)

var errUnexpectedCall = errors.New("unexpected call")

type mockVault struct {
	SignInFunc        func(ctx context.Context, name, secret string) (string, error)
	SignOutFunc       func(ctx context.Context) error
	CreateAccountFunc func(ctx context.Context, name, secret string) (models.Account, error)
	DeleteAccountFunc func(ctx context.Context, name string) (bool, error)
	CreateSecretFunc  func(ctx context.Context, location, secret string) (models.SecretEntry, error)
	DeleteSecretFunc  func(ctx context.Context, id string) (bool, error)
	ListSecretsFunc   func(ctx context.Context) ([]models.SecretEntry, error)
	DecryptSecretFunc func(ctx context.Context, id string) (string, error)
}

func (m *mockVault) SignIn(ctx context.Context, name, secret string) (string, error) {
	if m.SignInFunc == nil {
		return "", errUnexpectedCall
	}
	return m.SignInFunc(ctx, name, secret)
}
func (m *mockVault) SignOut(ctx context.Context) error {
	if m.SignOutFunc == nil {
		return errUnexpectedCall
	}
	return m.SignOutFunc(ctx)
}
func (m *mockVault) CreateAccount(ctx context.Context, name, secret string) (models.Account, error) {
	if m.CreateAccountFunc == nil {
		return models.Account{}, errUnexpectedCall
	}
	return m.CreateAccountFunc(ctx, name, secret)
}
func (m *mockVault) DeleteAccount(ctx context.Context, name string) (bool, error) {
	if m.DeleteAccountFunc == nil {
		return false, errUnexpectedCall
	}
	return m.DeleteAccountFunc(ctx, name)
}
func (m *mockVault) CreateSecret(ctx context.Context, location, secret string) (models.SecretEntry, error) {
	if m.CreateSecretFunc == nil {
		return models.SecretEntry{}, errUnexpectedCall
	}
	return m.CreateSecretFunc(ctx, location, secret)
}
func (m *mockVault) DeleteSecret(ctx context.Context, id string) (bool, error) {
	if m.DeleteSecretFunc == nil {
		return false, errUnexpectedCall
	}
	return m.DeleteSecretFunc(ctx, id)
}
func (m *mockVault) ListSecrets(ctx context.Context) ([]models.SecretEntry, error) {
	if m.ListSecretsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.ListSecretsFunc(ctx)
}
func (m *mockVault) DecryptSecret(ctx context.Context, id string) (string, error) {
	if m.DecryptSecretFunc == nil {
		return "", errUnexpectedCall
	}
	return m.DecryptSecretFunc(ctx, id)
}

func TestDispatch_Methods(t *testing.T) {
	entries := []models.SecretEntry{{ID: "1", Location: "a.com", Ciphertext: "ct", OwnerIdentity: "alice"}}
	v := &mockVault{
		SignInFunc: func(_ context.Context, name, secret string) (string, error) {
			if name != "alice" || secret != "pw" {
				t.Errorf("SignIn got (%q, %q)", name, secret)
			}
			return name, nil
		},
		SignOutFunc: func(context.Context) error { return nil },
		CreateAccountFunc: func(_ context.Context, name, _ string) (models.Account, error) {
			return models.Account{Identity: name, CredentialHash: "h"}, nil
		},
		DeleteAccountFunc: func(_ context.Context, name string) (bool, error) {
			return name == "alice", nil
		},
		CreateSecretFunc: func(_ context.Context, location, _ string) (models.SecretEntry, error) {
			return models.NewSecretEntry("alice", location, "ct"), nil
		},
		DeleteSecretFunc: func(context.Context, string) (bool, error) { return true, nil },
		ListSecretsFunc:  func(context.Context) ([]models.SecretEntry, error) { return entries, nil },
		DecryptSecretFunc: func(_ context.Context, id string) (string, error) {
			return "plain-" + id, nil
		},
	}
	d := New(v)

	tests := []struct {
		name string
		req  Request
		want any
	}{
		{"signin", Request{Method: MethodSignIn, Params: []string{"alice", "pw"}}, UserResult{Username: "alice"}},
		{"signout", Request{Method: MethodSignOut}, true},
		{"createUser", Request{Method: MethodCreateUser, Params: []string{"bob", "x"}}, UserResult{Username: "bob"}},
		{"deleteUser", Request{Method: MethodDeleteUser, Params: []string{"alice"}}, true},
		{"deleteUser other", Request{Method: MethodDeleteUser, Params: []string{"bob"}}, false},
		{"createPassword", Request{Method: MethodCreatePassword, Params: []string{"a.com", "s"}}, true},
		{"deletePassword", Request{Method: MethodDeletePassword, Params: []string{"1"}}, true},
		{"getPasswords", Request{Method: MethodGetPasswords}, entries},
		{"decrypt", Request{Method: MethodDecrypt, Params: []string{"1"}}, "plain-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Dispatch(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Dispatch returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dispatch = %#v; want %#v", got, tt.want)
			}
		})
	}
}

func TestDispatch_MissingParams(t *testing.T) {
	d := New(&mockVault{})

	tests := []struct {
		req     Request
		wantMsg string
	}{
		{Request{Method: MethodSignIn}, "username required"},
		{Request{Method: MethodSignIn, Params: []string{"alice"}}, "password required"},
		{Request{Method: MethodSignIn, Params: []string{"", "pw"}}, "username required"},
		{Request{Method: MethodCreateUser, Params: []string{"alice"}}, "password required"},
		{Request{Method: MethodDeleteUser}, "username required"},
		{Request{Method: MethodCreatePassword}, "url required"},
		{Request{Method: MethodCreatePassword, Params: []string{"a.com"}}, "password required"},
		{Request{Method: MethodDeletePassword}, "id required"},
		{Request{Method: MethodDecrypt}, "id required"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.req.Method, len(tt.req.Params)), func(t *testing.T) {
			_, err := d.Dispatch(context.Background(), tt.req)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Fatalf("Dispatch error = %v; want ErrInvalidInput", err)
			}
			if err.Error() != "invalid input: "+tt.wantMsg {
				t.Errorf("Dispatch error = %q; want message %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDispatch_UnknownMethod(t *testing.T) {
	d := New(&mockVault{})

	for _, method := range []string{"", "rename", "SIGNIN"} {
		_, err := d.Dispatch(context.Background(), Request{Method: method})
		if !errors.Is(err, models.ErrUnknownEntrypoint) {
			t.Errorf("Dispatch(%q) error = %v; want ErrUnknownEntrypoint", method, err)
		}
	}
}

func TestDispatch_PropagatesVaultErrors(t *testing.T) {
	storageErr := fmt.Errorf("%w: connection reset", models.ErrStorage)
	d := New(&mockVault{
		SignInFunc: func(context.Context, string, string) (string, error) { return "", storageErr },
	})

	_, err := d.Dispatch(context.Background(), Request{Method: MethodSignIn, Params: []string{"a", "b"}})
	if !errors.Is(err, models.ErrStorage) {
		t.Fatalf("Dispatch error = %v; want ErrStorage", err)
	}
	if errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("storage failure must not read as an authorization denial")
	}
}

func TestHandle(t *testing.T) {
	d := New(&mockVault{
		SignOutFunc: func(context.Context) error {
			return fmt.Errorf("%w: no active session", models.ErrNotAuthorized)
		},
		DecryptSecretFunc: func(context.Context, string) (string, error) { return "s3cret", nil },
	})

	t.Run("success", func(t *testing.T) {
		resp := d.Handle(context.Background(), Request{Method: MethodDecrypt, Params: []string{"1"}})
		if resp.Error != nil {
			t.Fatalf("Handle error = %+v", resp.Error)
		}
		b, err := json.Marshal(resp)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != `{"result":"s3cret"}` {
			t.Errorf("Handle JSON = %s", b)
		}
	})

	t.Run("failure", func(t *testing.T) {
		resp := d.Handle(context.Background(), Request{Method: MethodSignOut})
		if resp.Error == nil {
			t.Fatal("Handle returned no error")
		}
		if resp.Error.Kind != "NotAuthorized" {
			t.Errorf("Kind = %q; want NotAuthorized", resp.Error.Kind)
		}
		if resp.Result != nil {
			t.Errorf("Result = %v; want nil", resp.Result)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := d.Handle(context.Background(), Request{Method: "nope"})
		if resp.Error == nil || resp.Error.Kind != "UnknownEntrypoint" {
			t.Errorf("Handle = %+v; want UnknownEntrypoint", resp.Error)
		}
	})

	t.Run("request json", func(t *testing.T) {
		var req Request
		if err := json.Unmarshal([]byte(`{"method":"decrypt","params":["1"]}`), &req); err != nil {
			t.Fatal(err)
		}
		resp := d.Handle(context.Background(), req)
		if resp.Result != "s3cret" {
			t.Errorf("Result = %v; want s3cret", resp.Result)
		}
	})
}
