package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sandkasten-run/boxd/internal/boxclient"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage workspace snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create <session-id> <name>",
	Short: "Capture the session's workspace as a named snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := c.CreateSnapshot(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}

		fmt.Printf("Snapshot created: %s\n", args[1])
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:     "list <session-id>",
	Aliases: []string{"ls"},
	Short:   "List snapshots for a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		infos, err := c.ListSnapshots(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		if len(infos) == 0 {
			fmt.Println("No snapshots found")
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%s\t%s\n", info.Name, info.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:     "delete <session-id> <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a snapshot",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.DeleteSnapshot(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}

		fmt.Printf("Snapshot %s deleted\n", args[1])
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <session-id> <name>",
	Short: "Restore the session's workspace from a snapshot",
	Long:  "Fails if commands are currently running in the session.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := c.RestoreSnapshot(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to restore snapshot: %w", err)
		}

		fmt.Printf("Restored %s from snapshot %s\n", args[0], args[1])
		return nil
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <session-id> <name> <output-file>",
	Short: "Export a snapshot to a gzip-tar file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[2])
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := c.ExportSnapshot(ctx, args[0], args[1], f); err != nil {
			return fmt.Errorf("failed to export snapshot: %w", err)
		}

		fmt.Printf("Exported snapshot %s to %s\n", args[1], args[2])
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <session-id> <name> <input-file>",
	Short: "Import a gzip-tar file as a named snapshot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[2])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := c.ImportSnapshot(ctx, args[0], args[1], f); err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}

		fmt.Printf("Imported snapshot %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
}
