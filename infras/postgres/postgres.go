package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"otms/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnections = 10
	maxOpenConnections = 25
	connMaxLifetime    = 30 * time.Minute
)

// Connection holds the read and write database handles. Conflict checks and
// list queries go through Read; bookings and audit entries through Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	read := config.DB.Postgres.Read
	write := config.DB.Postgres.Write

	return &Connection{
		Read: connect("read", *config,
			read.Username, read.Password, read.Host, read.Port, read.Name, read.SSLMode),
		Write: connect("write", *config,
			write.Username, write.Password, write.Host, write.Port, write.Name, write.SSLMode),
	}
}

func getDBName(config config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func connect(name string, config config.Config, username, password, host, port, dbName, sslMode string) *sqlx.DB {
	descriptor := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		username,
		password,
		net.JoinHostPort(host, port),
		getDBName(config, dbName),
		sslMode,
	)

	maxRetry := config.DB.Postgres.MaxRetry
	waitTime := config.DB.Postgres.RetryWaitTime

	for retry := range maxRetry {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			log.
				Info().
				Str("name", name).
				Str("host", host).
				Str("port", port).
				Str("dbName", getDBName(config, dbName)).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(maxIdleConnections)
			sqlDB.SetMaxOpenConns(maxOpenConnections)
			sqlDB.SetConnMaxLifetime(connMaxLifetime)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", name).
			Str("host", host).
			Str("port", port).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}
