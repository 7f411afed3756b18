package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "cart:u1")
	assert.ErrorIs(t, err, ErrNoValue)

	require.NoError(t, m.Set(ctx, "cart:u1", `[{"name":"Lassi"}]`))
	v, err := m.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Lassi"}]`, v)

	require.NoError(t, m.Remove(ctx, "cart:u1"))
	_, err = m.Get(ctx, "cart:u1")
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestMemoryRemoveMissingKeyIsNoop(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Remove(context.Background(), "never-set"))
}
