package initialize

import (
	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
)

func InitializeTables(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing advisor tables", "driver", config.DatabaseDriver)

	applied, err := db.Migrate(migrate.Up)
	if err != nil {
		return log.Err("failed to migrate tables", err)
	}

	log.Info("Table initialization complete", "applied", applied)
	return nil
}
