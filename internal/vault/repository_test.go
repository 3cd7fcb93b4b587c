package vault

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/operand/credvault/internal/db"
	"github.com/operand/credvault/internal/errors"
	"github.com/operand/credvault/internal/vault/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	conn := db.TestSetup(t)
	repo, err := NewRepository(context.Background(), conn)
	require.NoError(t, err)
	return repo
}

func testCredential(t *testing.T, typ store.CredentialType, opt ...store.Option) *store.Credential {
	t.Helper()
	c, err := store.NewCredential(context.Background(), typ, opt...)
	require.NoError(t, err)
	c.Ciphertext = []byte("opaque-blob")
	c.KeySalt = []byte("0123456789abcdef")
	c.KeyIterations = 10000
	return c
}

func TestRepository_CreateCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := testCredential(t, store.ApiKeyType, store.WithDescription("ci deploy key"), store.WithTags("ci"))
		got, err := repo.CreateCredential(ctx, c)
		require.NoError(err)
		assert.True(strings.HasPrefix(got.PublicId, "cred_"))
		assert.Equal(uint32(1), got.Version)
		assert.Equal(store.ApiKeyType, got.Type)

		found, err := repo.LookupCredential(ctx, got.PublicId)
		require.NoError(err)
		assert.Equal(got.PublicId, found.PublicId)
		assert.Equal([]byte("opaque-blob"), found.Ciphertext)
		assert.Equal(store.TagList{"ci"}, found.Tags)
	})
	t.Run("missing-credential", func(t *testing.T) {
		_, err := repo.CreateCredential(ctx, nil)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})
	t.Run("public-id-already-set", func(t *testing.T) {
		c := testCredential(t, store.ApiKeyType)
		c.PublicId = "cred_notallowed"
		_, err := repo.CreateCredential(ctx, c)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidParameter), err))
	})
}

func TestRepository_LookupCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	t.Run("not-found", func(t *testing.T) {
		_, err := repo.LookupCredential(ctx, "cred_0000000000")
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
	t.Run("missing-id", func(t *testing.T) {
		_, err := repo.LookupCredential(ctx, "")
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.InvalidPublicId), err))
	})
}

func TestRepository_ListCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateCredential(ctx, testCredential(t, store.DatabaseSecretType))
		require.NoError(t, err)
	}

	got, err := repo.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Empty(t, c.Ciphertext)
		assert.Empty(t, c.KeySalt)
		assert.Zero(t, c.KeyIterations)
		assert.NotEmpty(t, c.PublicId)
		assert.Equal(t, store.DatabaseSecretType, c.Type)
	}

	got, err = repo.ListCredentials(ctx, WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRepository_UpdateCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	orig, err := repo.CreateCredential(ctx, testCredential(t, store.ApiKeyType, store.WithDescription("before")))
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		uc := orig.Clone()
		uc.Description = "after"
		updated, rowsUpdated, err := repo.UpdateCredential(ctx, uc, orig.Version, []string{"Description"})
		require.NoError(err)
		assert.Equal(1, rowsUpdated)
		assert.Equal(uint32(2), updated.Version)
		assert.Equal("after", updated.Description)
	})
	t.Run("stale-version", func(t *testing.T) {
		uc := orig.Clone()
		uc.Description = "too late"
		_, _, err := repo.UpdateCredential(ctx, uc, orig.Version, []string{"Description"})
		require.Error(t, err)
		assert.True(t, errors.IsVersionMismatchError(err))
	})
	t.Run("unknown-credential", func(t *testing.T) {
		uc := orig.Clone()
		uc.PublicId = "cred_0000000000"
		_, _, err := repo.UpdateCredential(ctx, uc, 1, []string{"Description"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
	t.Run("immutable-field", func(t *testing.T) {
		uc := orig.Clone()
		for _, mask := range []string{"PublicId", "Type", "CreateTime", "Version"} {
			_, _, err := repo.UpdateCredential(ctx, uc, 2, []string{mask})
			require.Error(t, err)
			assert.True(t, errors.Match(errors.T(errors.InvalidFieldMask), err), "mask %q", mask)
		}
	})
	t.Run("empty-mask", func(t *testing.T) {
		_, _, err := repo.UpdateCredential(ctx, orig.Clone(), 2, nil)
		require.Error(t, err)
		assert.True(t, errors.Match(errors.T(errors.EmptyFieldMask), err))
	})
	t.Run("null-out-description", func(t *testing.T) {
		uc := orig.Clone()
		uc.Description = ""
		updated, _, err := repo.UpdateCredential(ctx, uc, 2, []string{"Description"})
		require.NoError(t, err)
		assert.Empty(t, updated.Description)
		found, err := repo.LookupCredential(ctx, orig.PublicId)
		require.NoError(t, err)
		assert.Empty(t, found.Description)
	})
}

func TestRepository_UpdateCredential_ConcurrentStaleVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	orig, err := repo.CreateCredential(ctx, testCredential(t, store.OtherType))
	require.NoError(t, err)

	// two writers race with the same expected version: exactly one wins
	const writers = 2
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			uc := orig.Clone()
			uc.Description = string(rune('a' + n))
			_, _, err := repo.UpdateCredential(ctx, uc, orig.Version, []string{"Description"})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.IsVersionMismatchError(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	found, err := repo.LookupCredential(ctx, orig.PublicId)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), found.Version)
}

func TestRepository_DeleteCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testRepository(t)

	c, err := repo.CreateCredential(ctx, testCredential(t, store.ApiKeyType))
	require.NoError(t, err)

	rowsDeleted, err := repo.DeleteCredential(ctx, c.PublicId)
	require.NoError(t, err)
	assert.Equal(t, 1, rowsDeleted)

	// the second delete is an error, not a no-op
	_, err = repo.DeleteCredential(ctx, c.PublicId)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.DeleteCredential(ctx, "")
	require.Error(t, err)
	assert.True(t, errors.Match(errors.T(errors.InvalidPublicId), err))
}

func TestDaysUntilExpiration(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expire *time.Time
		want   int
	}{
		{name: "no-expiry", expire: nil, want: -1},
		{name: "five-days", expire: ptrTime(now.Add(5 * 24 * time.Hour)), want: 5},
		{name: "partial-day-rounds-up", expire: ptrTime(now.Add(36 * time.Hour)), want: 2},
		{name: "already-expired", expire: ptrTime(now.Add(-48 * time.Hour)), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, daysUntilExpiration(now, tt.expire))
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
