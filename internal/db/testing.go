package db

import (
	"context"
	"testing"

	"github.com/hashicorp/go-dbw"
	"github.com/stretchr/testify/require"
)

// TestSetup opens a fresh in-memory sqlite database with the vault schema
// loaded.  The connection is closed via t.Cleanup.
func TestSetup(t *testing.T) *dbw.DB {
	t.Helper()
	ctx := context.Background()
	// a second pooled connection to an in-memory sqlite db would get its
	// own empty database, so pin the pool to one connection
	conn, err := dbw.Open(dbw.Sqlite, "file::memory:", dbw.WithMaxOpenConnections(1))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close(ctx)
	})
	require.NoError(t, CreateSchema(ctx, conn))
	return conn
}
