package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	baseURL  string
	apiKey   string
	grpcAddr string
)

var rootCmd = &cobra.Command{
	Use:   "boxctl",
	Short: "boxctl is a command-line client for a boxd sandbox daemon",
	Long: `boxctl manages sessions against a running boxd daemon.

It creates and inspects sessions, runs commands inside them, moves files in
and out, and takes and restores workspace snapshots.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", getEnvOrDefault("BOXD_URL", "http://localhost:8080"), "boxd API base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("BOXD_API_KEY"), "boxd API key")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc-addr", getEnvOrDefault("BOXD_GRPC_ADDR", "localhost:8090"), "boxd gRPC front door address, used by shell")
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
