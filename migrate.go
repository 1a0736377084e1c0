package main

import (
	"strings"

	"github.com/spf13/cobra"

	"cricket-booking/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Close()

			if cfg.Database.Driver != "mysql" {
				log.Warn("MIGRATE", "DB_DRIVER is "+cfg.Database.Driver+", nothing to migrate")
				return nil
			}

			db, err := storage.OpenMySQL(cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			log.LogDatabase("MIGRATE", "mysql", "Creating tables: "+strings.Join(storage.Tables(), ", "))
			if err := storage.Migrate(cmd.Context(), db); err != nil {
				log.Error("MIGRATE", err.Error())
				return err
			}
			log.LogDatabase("SUCCESS", "mysql", "Migration completed successfully")
			return nil
		},
	}
}
