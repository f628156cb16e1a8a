package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/platform/database"
	"storefront/internal/platform/logging"
	"storefront/internal/repository/postgres"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront API server and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			ServiceName: "storefront",
			Environment: cfg.Environment,
			Level:       cfg.LogLevel,
		})
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperAdminCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

func openStore(ctx context.Context) (*postgres.Store, *gorm.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(connectCtx, database.Options{DSN: cfg.DB_DSN, LogSQL: cfg.DBLogSQL})
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(db), db, nil
}
