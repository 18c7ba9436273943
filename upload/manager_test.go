package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/metadata"
)

type fakeSubmitter struct {
	mu   sync.Mutex
	jobs []ingestion.Job
	err  error
}

func (f *fakeSubmitter) Submit(job ingestion.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeSubmitter) submitted() []ingestion.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ingestion.Job(nil), f.jobs...)
}

func newTestManager(t *testing.T) (*Manager, *metadata.Store, *fakeSubmitter) {
	t.Helper()
	store, err := metadata.NewStore(t.TempDir())
	require.NoError(t, err)

	jobs := &fakeSubmitter{}
	m, err := NewManager(store, jobs)
	require.NoError(t, err)
	return m, store, jobs
}

func TestSessionLifecycle(t *testing.T) {
	m, store, jobs := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Start(ctx, "alice", "Report Final.pdf", 11, "application/pdf")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	rec, err := store.Record(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusUploading, rec.Status)
	assert.True(t, strings.HasSuffix(rec.Path, ".part"), rec.Path)

	require.NoError(t, m.Append(ctx, "alice", sessionID, []byte("hello ")))
	require.NoError(t, m.Append(ctx, "alice", sessionID, []byte("world")))

	rec, err = store.Record(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), rec.Size)

	final, err := m.Complete(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, final.ID)
	assert.Equal(t, core.StatusProcessing, final.Status)
	assert.Equal(t, int64(11), final.Size)
	assert.Equal(t, sessionID+"__Report Final.pdf", final.StoredName)

	content, err := os.ReadFile(final.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	// Partial file is gone.
	_, err = os.Stat(filepath.Join(filepath.Dir(final.Path), sessionID+".part"))
	assert.True(t, os.IsNotExist(err))

	submitted := jobs.submitted()
	require.Len(t, submitted, 1)
	assert.Equal(t, sessionID, submitted[0].FileID)
	assert.Equal(t, "alice", submitted[0].UserID)
	assert.Equal(t, "application/pdf", submitted[0].MimeType)
}

func TestAppendUnknownSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.Append(context.Background(), "alice", "nope", []byte("x"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAppendAfterComplete(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Start(ctx, "alice", "doc.txt", 0, "text/plain")
	require.NoError(t, err)
	require.NoError(t, m.Append(ctx, "alice", sessionID, []byte("data")))
	_, err = m.Complete(ctx, "alice", sessionID)
	require.NoError(t, err)

	err = m.Append(ctx, "alice", sessionID, []byte("more"))
	assert.ErrorIs(t, err, ErrSessionNotUploading)

	_, err = m.Complete(ctx, "alice", sessionID)
	assert.ErrorIs(t, err, ErrSessionNotUploading)
}

func TestStartValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Start(context.Background(), "alice", "", 0, "text/plain")
	assert.ErrorIs(t, err, ErrFilenameRequired)
}

func TestCompleteSubmitFailureMarksError(t *testing.T) {
	m, store, jobs := newTestManager(t)
	jobs.err = errors.New("pool closed")
	ctx := context.Background()

	sessionID, err := m.Start(ctx, "alice", "doc.txt", 0, "text/plain")
	require.NoError(t, err)
	require.NoError(t, m.Append(ctx, "alice", sessionID, []byte("data")))

	_, err = m.Complete(ctx, "alice", sessionID)
	require.Error(t, err)

	rec, err := store.Record(ctx, "alice", sessionID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, rec.Status)
	assert.Contains(t, rec.Error, "pool closed")
}

func TestNewManagerValidation(t *testing.T) {
	store, err := metadata.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewManager(nil, &fakeSubmitter{})
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewManager(store, nil)
	assert.ErrorIs(t, err, ErrSubmitterRequired)
}
