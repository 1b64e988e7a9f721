package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNeverRepeatsAUsedID(t *testing.T) {
	m := NewManager()
	id := m.Next()
	require.NoError(t, m.Use(id))

	for i := 0; i < 100; i++ {
		next := m.Next()
		assert.NotEqual(t, id, next)
		m.Release(next)
	}
}

func TestReserveThenUse(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Reserve(42))
	assert.True(t, m.IsReserved(42))
	require.NoError(t, m.Use(42))
	assert.True(t, m.IsUsed(42))
	assert.False(t, m.IsReserved(42))
}

func TestUseAlreadyUsedFails(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Use(1))
	require.Error(t, m.Use(1))
}

func TestReserveAlreadyUsedFails(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Use(1))
	require.Error(t, m.Reserve(1))
}

func TestReleaseUnusedReservations(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Reserve(5))
	require.NoError(t, m.Use(6))
	m.ReleaseUnusedReservations()
	assert.False(t, m.IsReserved(5))
	assert.True(t, m.IsUsed(6))
}

func TestNextAfterExplicitReserveSkipsIt(t *testing.T) {
	m := NewManager()
	_ = m.Next() // 1
	require.NoError(t, m.Reserve(2))
	got := m.Next()
	assert.NotEqual(t, ID(2), got)
}
