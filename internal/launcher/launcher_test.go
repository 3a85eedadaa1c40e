package launcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseLimits() Limits {
	return Limits{WallMs: 5000, MemKB: 262144, FsizeKB: 65536, NoFile: 64}
}

func TestRunEcho(t *testing.T) {
	res, err := Run(context.Background(), Request{
		Argv:   []string{"/bin/sh", "-c", "echo hello"},
		Cwd:    t.TempDir(),
		Env:    []string{"PATH=/usr/bin:/bin"},
		Limits: baseLimits(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.False(t, res.TimedOut)
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), Request{
		Argv:   []string{"/bin/sh", "-c", "exit 7"},
		Cwd:    t.TempDir(),
		Env:    []string{"PATH=/usr/bin:/bin"},
		Limits: baseLimits(),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestRunWallTimeout(t *testing.T) {
	lim := baseLimits()
	lim.WallMs = 100
	res, err := Run(context.Background(), Request{
		Argv:   []string{"/bin/sh", "-c", "sleep 5"},
		Cwd:    t.TempDir(),
		Env:    []string{"PATH=/usr/bin:/bin"},
		Limits: lim,
	})
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.NotZero(t, res.Signal)
}

func TestRunEmptyArgv(t *testing.T) {
	_, err := Run(context.Background(), Request{Argv: nil, Limits: baseLimits()})
	assert.Error(t, err)
}

func TestRunSpawnFailure(t *testing.T) {
	_, err := Run(context.Background(), Request{
		Argv:   []string{"/nonexistent/binary-does-not-exist"},
		Limits: baseLimits(),
	})
	assert.ErrorIs(t, err, ErrSpawnFailed)
}

func TestBoundedBufferTruncatesTail(t *testing.T) {
	var b boundedBuffer
	b.cap = 8
	_, _ = b.Write([]byte("0123456789ABCDEF"))
	assert.True(t, strings.HasSuffix(string(b.Bytes()), "89ABCDEF"))
	assert.Len(t, b.Bytes(), len(truncationMarker)+8)
}
