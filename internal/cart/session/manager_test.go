package session

import (
	"testing"

	"github.com/smallbiznis/kasira/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartPerRegister(t *testing.T) {
	m := NewManager()

	a, err := m.Cart("reg-1")
	require.NoError(t, err)
	b, err := m.Cart("reg-2")
	require.NoError(t, err)

	_, err = a.AddLine(1, "espresso", money.FromCents(1000), 1, 0)
	require.NoError(t, err)

	// Registers are independent; no state leaks between them.
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())

	again, err := m.Cart("reg-1")
	require.NoError(t, err)
	assert.Same(t, a, again)
}

func TestCartRejectsBlankRegister(t *testing.T) {
	m := NewManager()
	_, err := m.Cart("  ")
	assert.ErrorIs(t, err, ErrInvalidRegister)
}

func TestCloseOpensFreshSession(t *testing.T) {
	m := NewManager()

	a, err := m.Cart("reg-1")
	require.NoError(t, err)
	first, ok := m.SessionID("reg-1")
	require.True(t, ok)

	m.Close("reg-1")
	_, ok = m.SessionID("reg-1")
	assert.False(t, ok)

	b, err := m.Cart("reg-1")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	second, ok := m.SessionID("reg-1")
	require.True(t, ok)
	assert.NotEqual(t, first, second)
}
