package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"purchases-api/cmd/config"
	migration "purchases-api/cmd/database/migrate"
	"purchases-api/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var runMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := config.ConnectDB(utils.GetConfig("DATABASE_URL"))
		if err != nil {
			return err
		}
		if runMigrations {
			if err := migration.Migrate(db); err != nil {
				return err
			}
		}

		appCfg, err := config.LoadAppConfig(ctx)
		if err != nil {
			return err
		}
		app, err := config.NewApp(db, appCfg)
		if err != nil {
			return err
		}

		go func() {
			<-ctx.Done()
			log.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Errorw("shutdown failed", "error", err)
			}
		}()

		port := utils.GetConfig("APP_PORT")
		log.Infow("http serving", "port", port)
		return app.Listen(":" + port)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&runMigrations, "migrate", false, "run migrations before serving")
}
