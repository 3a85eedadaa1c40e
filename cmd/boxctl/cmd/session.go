package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sandkasten-run/boxd/internal/boxclient"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sess"},
	Short:   "Manage sessions",
	Long:    `Create, list, inspect, and destroy sessions.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _ := cmd.Flags().GetStringToString("env")

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		id, err := c.CreateSession(ctx, env)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		fmt.Printf("Session created: %s\n", id)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sessions, err := c.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATE\tCWD\tLAST USED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.State, s.Cwd, s.LastUsed.Format(time.RFC3339))
		}
		w.Flush()

		return nil
	},
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Get session details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		info, err := c.GetSession(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		fmt.Printf("Session: %s\n", info.ID)
		fmt.Printf("  State: %s\n", info.State)
		fmt.Printf("  Cwd:   %s\n", info.Cwd)
		fmt.Printf("  Last used: %s\n", info.LastUsed.Format(time.RFC3339))
		return nil
	},
}

var sessionDestroyCmd = &cobra.Command{
	Use:     "destroy <session-id>",
	Aliases: []string{"rm"},
	Short:   "Destroy a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.DestroySession(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}

		fmt.Printf("Session %s destroyed\n", args[0])
		return nil
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set-env <session-id>",
	Short: "Set environment variables for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, _ := cmd.Flags().GetStringToString("env")
		if len(env) == 0 {
			return fmt.Errorf("at least one --env KEY=VALUE is required")
		}

		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.SetEnv(ctx, args[0], env); err != nil {
			return fmt.Errorf("failed to set env: %w", err)
		}

		fmt.Println("Environment updated")
		return nil
	},
}

var cwdSetCmd = &cobra.Command{
	Use:   "set-cwd <session-id> <path>",
	Short: "Set the persistent working directory for a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.SetCwd(ctx, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set cwd: %w", err)
		}

		fmt.Printf("Cwd set to %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionGetCmd)
	sessionCmd.AddCommand(sessionDestroyCmd)
	sessionCmd.AddCommand(envSetCmd)
	sessionCmd.AddCommand(cwdSetCmd)

	sessionCreateCmd.Flags().StringToString("env", nil, "initial environment variables (KEY=VALUE)")
	envSetCmd.Flags().StringToString("env", nil, "environment variables to set (KEY=VALUE)")
}
