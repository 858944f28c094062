package database

import (
	"embed"

	logg "advisorapi/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

func dialect(driver string) string {
	if driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// Migrate applies the embedded migrations in the given direction and returns
// how many were applied. It is a no-op for the in-memory store.
func (s *DB) Migrate(direction migrate.MigrationDirection) (int, error) {
	log := logg.New("database").Function("Migrate")

	if s.SQL == nil {
		log.Info("No SQL database configured, skipping migrations")
		return 0, nil
	}

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return 0, log.Err("failed to get database from GORM", err)
	}

	applied, err := migrate.Exec(sqlDB, dialect(s.Driver), migrationSource(), direction)
	if err != nil {
		return applied, log.Err("failed to apply migrations", err, "driver", s.Driver)
	}

	log.Info("Migrations applied", "count", applied, "driver", s.Driver)
	return applied, nil
}
