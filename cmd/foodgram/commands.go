package main

import (
	"Foodgram-Backend/cmd/config"
	migration "Foodgram-Backend/cmd/database/migrate"
	"Foodgram-Backend/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "foodgram",
	Short:         "Foodgram recipe sharing backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.LoadConfig(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", utils.DefaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
}

// bootstrap builds the logger and opens the database shared by every command.
func bootstrap() (*logrus.Logger, *gorm.DB, error) {
	log := utils.NewLogger(utils.GetConfig("LOG_LEVEL"))
	db, err := config.ConnectDB(log)
	if err != nil {
		return nil, nil, err
	}
	return log, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, db, err := bootstrap()
		if err != nil {
			return err
		}
		return migration.Migrate(db, log)
	},
}
