// Package session tracks the single authenticated identity of the vault.
package session

import (
	"fmt"
	"sync"

	"github.com/atinyakov/PassGuard/internal/models"
)

// ErrPoisoned is returned once a panic escaped while the session lock was held.
// It wraps models.ErrStorage.
var ErrPoisoned = fmt.Errorf("%w: session lock poisoned", models.ErrStorage)

// Manager holds at most one authenticated identity.
// The zero value is an anonymous, ready to use session.
type Manager struct {
	mu       sync.Mutex
	identity string
	active   bool
	poisoned bool
}

// New returns an anonymous session.
func New() *Manager {
	return &Manager{}
}

// withLock runs fn under the lock. A panic inside fn poisons the manager
// before it propagates.
func (m *Manager) withLock(fn func()) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return ErrPoisoned
	}

	completed := false
	defer func() {
		if !completed {
			m.poisoned = true
		}
	}()
	fn()
	completed = true
	return nil
}

// SignIn makes identity the active session. Calling it again replaces the identity.
func (m *Manager) SignIn(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity is empty", models.ErrInvalidInput)
	}
	return m.withLock(func() {
		m.identity = identity
		m.active = true
	})
}

// SignOut clears the session. It is idempotent.
func (m *Manager) SignOut() error {
	return m.withLock(func() {
		m.identity = ""
		m.active = false
	})
}

// Current returns a snapshot of the active identity.
func (m *Manager) Current() (identity string, ok bool, err error) {
	err = m.withLock(func() {
		identity, ok = m.identity, m.active
	})
	return identity, ok, err
}

// Update runs fn with the current identity under the lock and stores the
// identity it returns. An empty result signs out. fn must not call back
// into the manager.
func (m *Manager) Update(fn func(identity string, ok bool) string) error {
	return m.withLock(func() {
		next := fn(m.identity, m.active)
		m.identity = next
		m.active = next != ""
	})
}
