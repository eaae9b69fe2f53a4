package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	t.Run("Should default the port and read the password from the URL", func(t *testing.T) {
		opts, err := options(Config{URL: "redis://:secret@cache.internal"})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6379", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Nil(t, opts.TLSConfig)
	})

	t.Run("Should prefer the explicit password and enable TLS for rediss", func(t *testing.T) {
		opts, err := options(Config{URL: "rediss://:inurl@cache.internal:6380", Password: "explicit"})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "explicit", opts.Password)
		assert.NotNil(t, opts.TLSConfig)
	})

	t.Run("Should reject other schemes", func(t *testing.T) {
		_, err := options(Config{URL: "http://cache.internal"})
		assert.Error(t, err)
	})
}

func TestNewClientNotConfigured(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
