// Package session owns the live carts, one per register. A register is
// a single terminal working sequentially, so the cart itself needs no
// locking; the manager's mutex only guards the register map.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	cartdomain "github.com/smallbiznis/kasira/internal/cart/domain"
)

var ErrInvalidRegister = errors.New("invalid_register")

type entry struct {
	cart      *cartdomain.Cart
	sessionID string
	openedAt  time.Time
}

type Manager struct {
	mu        sync.Mutex
	registers map[string]*entry
}

func NewManager() *Manager {
	return &Manager{
		registers: make(map[string]*entry),
	}
}

// Cart returns the live cart for a register, opening an empty session
// on first use.
func (m *Manager) Cart(registerID string) (*cartdomain.Cart, error) {
	registerID = strings.TrimSpace(registerID)
	if registerID == "" {
		return nil, ErrInvalidRegister
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.registers[registerID]
	if !ok {
		e = &entry{
			cart:      cartdomain.New(),
			sessionID: uuid.NewString(),
			openedAt:  time.Now().UTC(),
		}
		m.registers[registerID] = e
	}
	return e.cart, nil
}

// SessionID reports the identifier of the register's current session,
// if one is open.
func (m *Manager) SessionID(registerID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.registers[strings.TrimSpace(registerID)]
	if !ok {
		return "", false
	}
	return e.sessionID, true
}

// Close drops the register's session entirely; the next Cart call opens
// a fresh one.
func (m *Manager) Close(registerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.registers, strings.TrimSpace(registerID))
}
