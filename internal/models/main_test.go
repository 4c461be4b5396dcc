package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestAccount_Validate(t *testing.T) {
	cases := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{"valid", Account{Identity: "alice", CredentialHash: "abc"}, false},
		{"empty identity", Account{CredentialHash: "abc"}, true},
		{"empty hash", Account{Identity: "alice"}, true},
		{"both empty", Account{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.account.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v; want ErrInvalidInput", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() = %v; want nil", err)
			}
		})
	}
}

func TestNewSecretEntry(t *testing.T) {
	a := NewSecretEntry("alice", "example.com", "ct")
	b := NewSecretEntry("alice", "example.com", "ct")

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected generated IDs")
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs, got %q twice", a.ID)
	}
	if a.OwnerIdentity != "alice" || a.Location != "example.com" || a.Ciphertext != "ct" {
		t.Errorf("unexpected entry: %+v", a)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() = %v; want nil", err)
	}
}

func TestSecretEntry_Validate(t *testing.T) {
	cases := []struct {
		name  string
		entry SecretEntry
	}{
		{"empty location", SecretEntry{ID: "1", Ciphertext: "ct", OwnerIdentity: "a"}},
		{"empty ciphertext", SecretEntry{ID: "1", Location: "l", OwnerIdentity: "a"}},
		{"empty id", SecretEntry{Location: "l", Ciphertext: "ct", OwnerIdentity: "a"}},
		{"empty owner", SecretEntry{ID: "1", Location: "l", Ciphertext: "ct"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.entry.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() = %v; want ErrInvalidInput", err)
			}
		})
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidInput, "InvalidInput"},
		{fmt.Errorf("find: %w", ErrNotFound), "NotFound"},
		{fmt.Errorf("owner mismatch: %w", ErrNotAuthorized), "NotAuthorized"},
		{fmt.Errorf("open: %w", ErrDecryption), "DecryptionError"},
		{fmt.Errorf("query: %w: %w", ErrStorage, errors.New("conn refused")), "StorageError"},
		{ErrUnknownEntrypoint, "UnknownEntrypoint"},
		{ErrThrottled, "Throttled"},
		{errors.New("boom"), "Internal"},
	}

	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q; want %q", tc.err, got, tc.want)
		}
	}
}
