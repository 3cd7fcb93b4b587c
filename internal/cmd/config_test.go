package cmd

import (
	"context"
	"testing"

	"github.com/operand/credvault/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		t.Setenv("CREDVAULT_MASTER_SECRET", "master-secret-0123456789")
		t.Setenv("CREDVAULT_PRINCIPAL", "alice")
		t.Setenv("CREDVAULT_ROLE", "admin")
		c, err := LoadConfig(ctx)
		require.NoError(err)
		assert.Equal("alice", c.Principal)
		assert.Equal("sqlite", c.DatabaseDialect)
		assert.Equal("file:credvault.db", c.DatabaseUrl)
		assert.Equal("info", c.LogLevel)
		assert.Equal(10000, c.RateLimitMaxEntries)
	})

	t.Run("missing-master-secret", func(t *testing.T) {
		t.Setenv("CREDVAULT_MASTER_SECRET", "")
		t.Setenv("CREDVAULT_PRINCIPAL", "alice")
		t.Setenv("CREDVAULT_ROLE", "admin")
		_, err := LoadConfig(ctx)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("missing-principal", func(t *testing.T) {
		t.Setenv("CREDVAULT_MASTER_SECRET", "master-secret-0123456789")
		t.Setenv("CREDVAULT_PRINCIPAL", "")
		t.Setenv("CREDVAULT_ROLE", "admin")
		_, err := LoadConfig(ctx)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})

	t.Run("bad-role", func(t *testing.T) {
		t.Setenv("CREDVAULT_MASTER_SECRET", "master-secret-0123456789")
		t.Setenv("CREDVAULT_PRINCIPAL", "alice")
		t.Setenv("CREDVAULT_ROLE", "superuser")
		_, err := LoadConfig(ctx)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidConfiguration), err))
	})
}
