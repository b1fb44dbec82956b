package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"otms/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	connectionString := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s&x-migrations-table=%s",
		config.DB.Postgres.Write.Username,
		config.DB.Postgres.Write.Password,
		net.JoinHostPort(config.DB.Postgres.Write.Host, config.DB.Postgres.Write.Port),
		getDBName(config, config.DB.Postgres.Write.Name),
		config.DB.Postgres.Write.SSLMode,
		config.DB.Postgres.MigrationTable,
	)

	mig, err := migrate.New(migrationSource, connectionString)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func run(config *config.Config, apply func(*migrate.Migrate) error, doneMsg string) error {
	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err := apply(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	log.Info().Msg(doneMsg)

	return nil
}

// Up applies all pending migrations.
func Up(config *config.Config) error {
	return run(config, func(m *migrate.Migrate) error { return m.Up() }, "Database migrations completed successfully")
}

// StepUp applies the next pending migration only.
func StepUp(config *config.Config) error {
	return run(config, func(m *migrate.Migrate) error { return m.Steps(1) }, "Database migrations completed successfully")
}

// Down rolls back the most recent migration.
func Down(config *config.Config) error {
	return run(config, func(m *migrate.Migrate) error { return m.Steps(-1) }, "Database migrations rolled back successfully")
}

// Drop rolls back every applied migration.
func Drop(config *config.Config) error {
	return run(config, func(m *migrate.Migrate) error { return m.Down() }, "Database migrations rolled back successfully")
}
