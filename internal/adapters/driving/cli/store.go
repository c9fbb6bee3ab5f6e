package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/httpapi"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

var storeFlags struct {
	addr  string
	token string
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Document store commands",
}

var storeServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Share the configured store over HTTP",
	Long: `Serve the configured store as the REST document store that the http
backend talks to. Other workstations point store.http_base_url at it.

Examples:
  refeel store serve --addr :8080 --token secret`,
	Args: cobra.NoArgs,
	RunE: runStoreServe,
}

func init() {
	storeServeCmd.Flags().StringVar(&storeFlags.addr, "addr", ":8080", "listen address")
	storeServeCmd.Flags().StringVar(&storeFlags.token, "token", "", "bearer token clients must send")

	storeCmd.AddCommand(storeServeCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStoreServe(cmd *cobra.Command, _ []string) error {
	if gateway == nil {
		return errors.New("store not configured")
	}

	srv := httpapi.NewServer(storeFlags.addr, gateway, storeFlags.token)
	cmd.Printf("Store listening on %s\n", storeFlags.addr)
	logger.Info("store server on %s (auth: %t)", storeFlags.addr, storeFlags.token != "")
	if err := httpapi.Serve(commandContext(cmd), srv); err != nil {
		return fmt.Errorf("store server: %w", err)
	}
	return nil
}
