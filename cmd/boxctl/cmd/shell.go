package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandkasten-run/boxd/internal/rpc"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellCmd = &cobra.Command{
	Use:   "shell <session-id>",
	Short: "Attach an interactive shell to a session over the gRPC fast path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(args[0])
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(sessionID string) error {
	conn, err := rpc.Dial(grpcAddr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", grpcAddr, err)
	}
	defer conn.Close()

	fd := int(os.Stdin.Fd())
	cols, rows := 80, 24
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			cols, rows = w, h
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := rpc.AttachShell(ctx, conn, apiKey, sessionID, uint16(cols), uint16(rows))
	if err != nil {
		return fmt.Errorf("attach shell: %w", err)
	}

	var oldState *term.State
	if term.IsTerminal(fd) {
		oldState, err = term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, oldState)
		}
	}

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)
	defer signal.Stop(winchCh)
	go func() {
		for range winchCh {
			if w, h, err := term.GetSize(fd); err == nil {
				_ = stream.Resize(uint16(h), uint16(w))
			}
		}
	}()

	exitCode := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := stream.Recv()
			if err != nil {
				return
			}
			if len(msg.Stdout) > 0 {
				os.Stdout.Write(msg.Stdout)
			}
			if msg.Exited {
				exitCode = msg.ExitCode
				return
			}
		}
	}()

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				if sendErr := stream.Send(data); sendErr != nil {
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					return
				}
				_ = stream.CloseSend()
				return
			}
		}
	}()

	<-done
	if exitCode != 0 {
		return fmt.Errorf("shell exited with code %d", exitCode)
	}
	return nil
}
