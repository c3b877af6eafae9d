package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRegistry(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry()

	john := Claims{"sub": "john", "sid": "S1"}
	jane := Claims{"sub": "jane", "sid": "S2"}

	first, err := registry.Register(ctx, john, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)

	second, err := registry.Register(ctx, john, "tab-2")
	require.NoError(t, err)
	assert.Equal(t, "tab-2", second.SessionID)

	_, err = registry.Register(ctx, jane, "")
	require.NoError(t, err)

	principals, err := registry.AllPrincipals(ctx)
	require.NoError(t, err)
	assert.Len(t, principals, 2)

	sessions, err := registry.Sessions(ctx, john)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, registry.Expire(ctx, first.SessionID))
	assert.True(t, registry.IsExpired(first.SessionID))

	sessions, err = registry.Sessions(ctx, john)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	// expiring again or expiring the unknown is a no-op
	require.NoError(t, registry.Expire(ctx, first.SessionID))
	require.NoError(t, registry.Expire(ctx, "unknown"))
	assert.True(t, registry.IsExpired("unknown"))
}

func TestInMemoryRegistry_expireAllRemovesPrincipal(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry()

	john := Claims{"sub": "john", "sid": "S1"}
	info, err := registry.Register(ctx, john, "")
	require.NoError(t, err)

	require.NoError(t, registry.Expire(ctx, info.SessionID))

	principals, err := registry.AllPrincipals(ctx)
	require.NoError(t, err)
	assert.Empty(t, principals)
}

func TestInMemoryRegistry_concurrency(t *testing.T) {
	ctx := context.Background()
	registry := NewInMemoryRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := registry.Register(ctx, Claims{"sub": "john"}, "")
			assert.NoError(t, err)
			_, err = registry.AllPrincipals(ctx)
			assert.NoError(t, err)
			assert.NoError(t, registry.Expire(ctx, info.SessionID))
		}()
	}
	wg.Wait()

	principals, err := registry.AllPrincipals(ctx)
	require.NoError(t, err)
	assert.Empty(t, principals)
}
