package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestService(t *testing.T) {
	t.Parallel()

	key := manparse.DocumentKey{Name: "ls", Section: 1}

	t.Run("stores and finds an entry", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))
		ctx := context.Background()
		entry := &manparse.ManifestEntry{
			Key:          key,
			ContentHash:  "c1",
			RenderHash:   "r1",
			ParseVersion: manparse.ParseVersion,
			RunID:        "run-1",
			UpdatedAt:    time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		}

		require.NoError(t, svc.PutEntry(ctx, entry))

		found, err := svc.FindEntry(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, entry, found)
	})

	t.Run("replaces an existing entry", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.PutEntry(ctx, &manparse.ManifestEntry{Key: key, ContentHash: "c1", RunID: "run-1"}))
		require.NoError(t, svc.PutEntry(ctx, &manparse.ManifestEntry{Key: key, ContentHash: "c2", RunID: "run-2"}))

		found, err := svc.FindEntry(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "c2", found.ContentHash)
		assert.Equal(t, "run-2", found.RunID)
	})

	t.Run("sets UpdatedAt when zero", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))
		entry := &manparse.ManifestEntry{Key: key, ContentHash: "c1"}

		require.NoError(t, svc.PutEntry(context.Background(), entry))

		assert.False(t, entry.UpdatedAt.IsZero())
	})

	t.Run("returns ENOTFOUND for a missing entry", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))

		_, err := svc.FindEntry(context.Background(), key)

		assert.Equal(t, manparse.ENOTFOUND, manparse.ErrorCode(err))
	})

	t.Run("deletes an entry", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))
		ctx := context.Background()
		other := manparse.DocumentKey{Name: "ls", Section: 8}
		require.NoError(t, svc.PutEntry(ctx, &manparse.ManifestEntry{Key: key, ContentHash: "c1"}))
		require.NoError(t, svc.PutEntry(ctx, &manparse.ManifestEntry{Key: other, ContentHash: "c2"}))

		require.NoError(t, svc.DeleteEntry(ctx, key))

		_, err := svc.FindEntry(ctx, key)
		assert.Equal(t, manparse.ENOTFOUND, manparse.ErrorCode(err))
		_, err = svc.FindEntry(ctx, other)
		assert.NoError(t, err)
	})

	t.Run("deleting a missing entry succeeds", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))

		assert.NoError(t, svc.DeleteEntry(context.Background(), key))
	})

	t.Run("returns EINVALID without a content hash", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewManifestService(setupTestDB(t))

		err := svc.PutEntry(context.Background(), &manparse.ManifestEntry{Key: key})

		assert.Equal(t, manparse.EINVALID, manparse.ErrorCode(err))
	})
}
