package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sandkasten-run/boxd/internal/boxclient"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <session-id> -- <command> [args...]",
	Short: "Run a command inside a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		argv := args[1:]

		timeMs, _ := cmd.Flags().GetInt64("time-ms")
		memKB, _ := cmd.Flags().GetInt64("mem-kb")
		fsizeKB, _ := cmd.Flags().GetInt64("fsize-kb")
		nofile, _ := cmd.Flags().GetInt64("nofile")
		cwd, _ := cmd.Flags().GetString("cwd")

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeMs+30000)*time.Millisecond)
		defer cancel()

		result, err := c.Exec(ctx, sessionID, argv, boxclient.RunCommandOpts{
			TimeMs:  timeMs,
			MemKB:   memKB,
			FsizeKB: fsizeKB,
			NoFile:  nofile,
			Cwd:     cwd,
		})
		if err != nil {
			return fmt.Errorf("failed to run command: %w", err)
		}

		fmt.Print(result.Stdout)
		fmt.Fprint(os.Stderr, result.Stderr)

		if result.ExitCode != 0 || result.Signal != 0 {
			os.Exit(exitCodeOf(result))
		}
		return nil
	},
}

func exitCodeOf(result boxclient.CommandResult) int {
	if result.Signal != 0 {
		return 128 + result.Signal
	}
	return result.ExitCode
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().Int64("time-ms", 0, "wall-clock limit in milliseconds (daemon default if 0)")
	execCmd.Flags().Int64("mem-kb", 0, "memory limit in KB (daemon default if 0)")
	execCmd.Flags().Int64("fsize-kb", 0, "file size limit in KB (daemon default if 0)")
	execCmd.Flags().Int64("nofile", 0, "open file descriptor limit (daemon default if 0)")
	execCmd.Flags().String("cwd", "", "override the session's cwd for this command")
}
