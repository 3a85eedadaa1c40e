package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "test.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		Status:       "active",
		Cwd:          "/",
		CreatedAt:    now,
		ExpiresAt:    now.Add(5 * time.Minute),
		LastActivity: now,
	}
}

func TestCreateAndGetSession(t *testing.T) {
	st := newTestStore(t)
	sess := testSession("test-1")

	require.NoError(t, st.CreateSession(sess))

	got, err := st.GetSession("test-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Status, got.Status)
	assert.Equal(t, sess.Cwd, got.Cwd)
}

func TestGetSessionNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetSession("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.CreateSession(testSession("s1")))
	require.NoError(t, st.CreateSession(testSession("s2")))
	require.NoError(t, st.CreateSession(testSession("s3")))

	sessions, err := st.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestListSessionsEmpty(t *testing.T) {
	st := newTestStore(t)

	sessions, err := st.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestUpdateSessionStatus(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateSession(testSession("s1")))

	require.NoError(t, st.UpdateSessionStatus("s1", "destroying"))

	got, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "destroying", got.Status)
}

func TestUpdateSessionStatusNotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.UpdateSessionStatus("nope", "destroying")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSessionActivity(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateSession(testSession("s1")))

	newExpiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, st.UpdateSessionActivity("s1", "/new/cwd", newExpiry))

	got, err := st.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "/new/cwd", got.Cwd)
}

func TestListExpiredSessions(t *testing.T) {
	st := newTestStore(t)
	sess := testSession("s1")
	sess.LastActivity = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, st.CreateSession(sess))

	expired, err := st.ListExpiredSessions(time.Minute)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "s1", expired[0].ID)
}

func TestDeleteSessionCascadesSnapshots(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateSession(testSession("s1")))
	require.NoError(t, st.PutSnapshot(&Snapshot{SessionID: "s1", Name: "snap1", CreatedAt: time.Now(), BackingPath: "/x"}))

	require.NoError(t, st.DeleteSession("s1"))

	snaps, err := st.ListSnapshots("s1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSnapshotUpsert(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateSession(testSession("s1")))

	require.NoError(t, st.PutSnapshot(&Snapshot{SessionID: "s1", Name: "a", CreatedAt: time.Now(), BackingPath: "/one"}))
	require.NoError(t, st.PutSnapshot(&Snapshot{SessionID: "s1", Name: "a", CreatedAt: time.Now(), BackingPath: "/two"}))

	snaps, err := st.ListSnapshots("s1")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "/two", snaps[0].BackingPath)
}

func TestDeleteSnapshot(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateSession(testSession("s1")))
	require.NoError(t, st.PutSnapshot(&Snapshot{SessionID: "s1", Name: "a", CreatedAt: time.Now(), BackingPath: "/one"}))

	require.NoError(t, st.DeleteSnapshot("s1", "a"))

	snaps, err := st.ListSnapshots("s1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
