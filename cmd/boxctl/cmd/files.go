package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sandkasten-run/boxd/internal/boxclient"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "fs",
	Short: "Move files in and out of a session's workspace",
}

var catCmd = &cobra.Command{
	Use:   "cat <session-id> <path>",
	Short: "Read a file from a session's workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxBytes, _ := cmd.Flags().GetInt64("max-bytes")

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		content, truncated, err := c.ReadFile(ctx, args[0], args[1], maxBytes)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		os.Stdout.Write(content)
		if truncated {
			fmt.Fprintln(os.Stderr, "(output truncated)")
		}
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <session-id> <path> [content]",
	Short: "Write content to a file in a session's workspace",
	Long: `Write content to a file. Omit content, or use -, to read from stdin.
Example: boxctl fs write abc123 /workspace/test.txt "hello world"
         echo "hello" | boxctl fs write abc123 /workspace/test.txt`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, path := args[0], args[1]

		var content []byte
		if len(args) == 3 && args[2] != "-" {
			content = []byte(args[2])
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read from stdin: %w", err)
			}
			content = data
		}

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.WriteFile(ctx, sessionID, path, content); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		fmt.Printf("File written: %s\n", path)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <session-id> <path>",
	Short: "List files in a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		entries, err := c.ListDirectory(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to list directory: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("(empty directory)")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, e := range entries {
			typ := "-"
			if e.IsDir {
				typ = "d"
			}
			fmt.Fprintf(w, "%s\t%s\n", typ, e.Name)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.AddCommand(catCmd)
	filesCmd.AddCommand(writeCmd)
	filesCmd.AddCommand(lsCmd)

	catCmd.Flags().Int64("max-bytes", 0, "truncate output to this many bytes (0 = daemon's configured cap)")
}
