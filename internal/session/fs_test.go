package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadFile(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	require.NoError(t, r.WriteFile(sess.ID, "a.txt", []byte("hello")))

	content, truncated, err := r.ReadFile(sess.ID, "a.txt", 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, "hello", string(content))
}

func TestWriteFileCreatesParentDirs(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	require.NoError(t, r.WriteFile(sess.ID, "nested/dir/b.txt", []byte("x")))

	content, _, err := r.ReadFile(sess.ID, "nested/dir/b.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))
}

func TestWriteFilePathEscape(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	err = r.WriteFile(sess.ID, "../../../etc/passwd", []byte("x"))
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestReadFileTruncates(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	require.NoError(t, r.WriteFile(sess.ID, "big.txt", []byte("0123456789")))

	content, truncated, err := r.ReadFile(sess.ID, "big.txt", 4)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, "0123", string(content))
}

func TestReadFileMissing(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	_, _, err = r.ReadFile(sess.ID, "missing.txt", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReadFileRejectsDirectory(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	require.NoError(t, r.WriteFile(sess.ID, "dir/file.txt", []byte("x")))

	_, _, err = r.ReadFile(sess.ID, "dir", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListDirectory(t *testing.T) {
	r := newTestRegistry(t)
	sess, err := r.Create(context.Background(), CreateOpts{})
	require.NoError(t, err)

	require.NoError(t, r.WriteFile(sess.ID, "a.txt", []byte("1")))
	require.NoError(t, r.WriteFile(sess.ID, "sub/b.txt", []byte("2")))

	entries, err := r.ListDirectory(sess.ID, "/")
	require.NoError(t, err)

	names := map[string]bool{}
	var subIsDir bool
	for _, e := range entries {
		names[e.Name] = true
		if e.Name == "sub" {
			subIsDir = e.IsDir
		}
	}
	assert.True(t, names["a.txt"])
	assert.True(t, names["sub"])
	assert.True(t, subIsDir)
}

func TestListDirectoryUnknownSession(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.ListDirectory("missing", "/")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
