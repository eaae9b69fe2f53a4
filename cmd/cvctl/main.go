// Command cvctl runs CV maintenance and extraction tasks outside the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"talent-hub-backend/config"
	"talent-hub-backend/internal/audit"
	"talent-hub-backend/pkg/database"
	"talent-hub-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "cvctl",
	Short: "CV maintenance tools",
	Long:  "cvctl repairs active CV flags, suggests version numbers and runs CV extraction from the command line.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		logger.InitTo(os.Stderr, cfg.LogLevel)
		// zap's production logger writes to stderr.
		z, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to build audit logger: %w", err)
		}
		auditLog = audit.New(z, "cvctl", cfg.Environment)
		return nil
	},
}

var (
	appConfig *config.Config
	auditLog  *audit.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	if appConfig.DBUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return database.NewPostgresConnection(ctx, appConfig.DBUrl)
}
