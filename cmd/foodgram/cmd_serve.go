package main

import (
	"Foodgram-Backend/cmd/config"
	migration "Foodgram-Backend/cmd/database/migrate"
	"Foodgram-Backend/internal/utils"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API on PORT.

Examples:
  foodgram serve
  foodgram serve --migrate
  foodgram serve -c /etc/foodgram/config.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "run migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, db, err := bootstrap()
	if err != nil {
		return err
	}

	if serveMigrate {
		if err := migration.Migrate(db, log); err != nil {
			return err
		}
	}

	app, err := config.NewApp(db, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + utils.GetConfig("PORT")
		log.WithField("addr", addr).Info("starting server")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
