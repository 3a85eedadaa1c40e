package launcher

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartShellEchoesCommandOutput(t *testing.T) {
	sh, err := StartShell(ShellRequest{
		Cwd:  t.TempDir(),
		Env:  []string{"PATH=/usr/bin:/bin", "PS1=$ "},
		Cols: 80,
		Rows: 24,
	})
	require.NoError(t, err)
	defer sh.Close()

	_, err = sh.Ptmx.Write([]byte("echo hello-from-pty\n"))
	require.NoError(t, err)

	found := make(chan struct{})
	go func() {
		reader := bufio.NewReader(sh.Ptmx)
		for {
			line, readErr := reader.ReadString('\n')
			if strings.Contains(line, "hello-from-pty") {
				close(found)
				return
			}
			if readErr != nil {
				return
			}
		}
	}()

	select {
	case <-found:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pty output")
	}
}

func TestShellResize(t *testing.T) {
	sh, err := StartShell(ShellRequest{Cwd: t.TempDir(), Cols: 80, Rows: 24})
	require.NoError(t, err)
	defer sh.Close()

	assert.NoError(t, sh.Resize(40, 120))
}

func TestShellCloseIsIdempotent(t *testing.T) {
	sh, err := StartShell(ShellRequest{Cwd: t.TempDir(), Cols: 80, Rows: 24})
	require.NoError(t, err)

	assert.NoError(t, sh.Close())
	_ = sh.Close()
}

func TestStartShellDefaultsWindowSize(t *testing.T) {
	sh, err := StartShell(ShellRequest{Cwd: t.TempDir()})
	require.NoError(t, err)
	defer sh.Close()
}
