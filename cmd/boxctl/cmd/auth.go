package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sandkasten-run/boxd/internal/boxclient"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage access tokens",
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange the configured API key for a short-lived access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := boxclient.NewClient(baseURL, apiKey)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		token, expiresAt, err := c.IssueAccessToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to issue access token: %w", err)
		}

		fmt.Println(token)
		fmt.Printf("# expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd)
}
