package metadata

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docvault/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func testRecord(id, userID string) *core.FileRecord {
	return &core.FileRecord{
		ID:         id,
		UserID:     userID,
		Name:       "doc.txt",
		StoredName: id + "__doc.txt",
		Path:       "/uploads/" + userID + "/" + id + "__doc.txt",
		Size:       42,
		MimeType:   "text/plain",
		Status:     core.StatusProcessing,
		UploadedAt: time.Now().UTC(),
	}
}

func TestNewStore(t *testing.T) {
	t.Run("creates base directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "uploads")
		_, err := NewStore(dir)
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty base dir rejected", func(t *testing.T) {
		_, err := NewStore("")
		assert.ErrorIs(t, err, ErrBaseDirRequired)
	})
}

func TestLoadFirstAccessReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	records, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := map[string]*core.FileRecord{
		"f1": testRecord("f1", "alice"),
		"f2": testRecord("f2", "alice"),
	}
	require.NoError(t, s.Save(ctx, "alice", records))

	loaded, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records["f1"].ID, loaded["f1"].ID)
	assert.Equal(t, records["f1"].StoredName, loaded["f1"].StoredName)
	assert.Equal(t, records["f2"].Size, loaded["f2"].Size)
	assert.Equal(t, records["f2"].Status, loaded["f2"].Status)
}

func TestLoadCorruptContentReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dir, err := s.UserDir("alice")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFileName), []byte("{not json"), 0o644))

	records, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a valid record", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.CreateRecord(ctx, "alice", testRecord("f1", "alice")))

		rec, err := s.Record(ctx, "alice", "f1")
		require.NoError(t, err)
		assert.Equal(t, "f1", rec.ID)
		assert.False(t, rec.LastUpdated.IsZero())
	})

	t.Run("missing required fields leave the store unchanged", func(t *testing.T) {
		s := newTestStore(t)
		bad := testRecord("f1", "alice")
		bad.StoredName = ""

		err := s.CreateRecord(ctx, "alice", bad)
		require.ErrorIs(t, err, core.ErrInvalidRecord)

		records, err := s.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("does not mutate the caller's record", func(t *testing.T) {
		s := newTestStore(t)
		rec := testRecord("f1", "alice")
		require.NoError(t, s.CreateRecord(ctx, "alice", rec))
		assert.True(t, rec.LastUpdated.IsZero())
	})
}

func TestUpdateRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("merges partial updates and touches last_updated", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.CreateRecord(ctx, "alice", testRecord("f1", "alice")))

		before, err := s.Record(ctx, "alice", "f1")
		require.NoError(t, err)

		processed := time.Now().UTC()
		err = s.UpdateRecord(ctx, "alice", "f1", RecordUpdate{
			Status:      Ptr(core.StatusReady),
			ChunkCount:  Ptr(7),
			ProcessedAt: &processed,
		})
		require.NoError(t, err)

		after, err := s.Record(ctx, "alice", "f1")
		require.NoError(t, err)
		assert.Equal(t, core.StatusReady, after.Status)
		assert.Equal(t, 7, after.ChunkCount)
		require.NotNil(t, after.ProcessedAt)
		assert.Equal(t, before.Name, after.Name) // untouched fields survive
		assert.False(t, after.LastUpdated.Before(before.LastUpdated))
	})

	t.Run("unknown file id fails and leaves the store unchanged", func(t *testing.T) {
		s := newTestStore(t)
		err := s.UpdateRecord(ctx, "alice", "ghost", RecordUpdate{Status: Ptr(core.StatusReady)})
		require.ErrorIs(t, err, core.ErrNotFound)

		records, err := s.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateRecord(ctx, "alice", testRecord("f1", "alice")))
	require.NoError(t, s.DeleteRecord(ctx, "alice", "f1"))

	_, err := s.Record(ctx, "alice", "f1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Deleting an absent record is a no-op.
	assert.NoError(t, s.DeleteRecord(ctx, "alice", "f1"))
}

func TestRecordNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Record(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPerUserLocking(t *testing.T) {
	s := newTestStore(t)

	t.Run("same user shares one lock", func(t *testing.T) {
		assert.Same(t, s.userLock("alice"), s.userLock("alice"))
	})

	t.Run("different users get independent locks", func(t *testing.T) {
		assert.NotSame(t, s.userLock("alice"), s.userLock("bob"))
	})
}

func TestConcurrentUpdatesAcrossUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users := []string{"alice", "bob", "carol"}
	for _, u := range users {
		require.NoError(t, s.CreateRecord(ctx, u, testRecord("f1", u)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(users)*20)
	for _, u := range users {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(user string, n int) {
				defer wg.Done()
				errs <- s.UpdateRecord(ctx, user, "f1", RecordUpdate{ChunkCount: Ptr(n)})
			}(u, i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for _, u := range users {
		rec, err := s.Record(ctx, u, "f1")
		require.NoError(t, err)
		assert.Equal(t, core.StatusProcessing, rec.Status)
	}
}

func TestSaveSurvivesConcurrentReaders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRecord(ctx, "alice", testRecord("f1", "alice")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := s.Load(ctx, "alice")
			assert.NoError(t, err)
			// Readers only ever observe complete documents.
			if len(records) > 0 {
				assert.NotEmpty(t, records["f1"].ID)
			}
		}()
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.UpdateRecord(ctx, "alice", "f1", RecordUpdate{ChunkCount: Ptr(n)}))
		}(i)
	}
	wg.Wait()
}
