package models

import "errors"

// Error kinds shared by every layer of the vault. Callers match them with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrDecryption        = errors.New("decryption failed")
	ErrStorage           = errors.New("storage failure")
	ErrUnknownEntrypoint = errors.New("entrypoint not recognized")
	ErrThrottled         = errors.New("too many sign-in attempts")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotAuthorized, "NotAuthorized"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrNotFound, "NotFound"},
	{ErrDecryption, "DecryptionError"},
	{ErrStorage, "StorageError"},
	{ErrUnknownEntrypoint, "UnknownEntrypoint"},
	{ErrThrottled, "Throttled"},
}

// Kind returns the tag of the first known error kind err wraps,
// or "Internal" when err matches none of them.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
