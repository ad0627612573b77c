// Package database opens the configured SQL store and prepares its schema.
//
// postgres:// and postgresql:// URLs use the pgx driver unless DATABASE_DRIVER
// selects lib/pq ("postgres"). libsql:// and wss:// URLs go to a remote libSQL
// server. Anything else is treated as a local SQLite DSN.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"                   // registers "pgx"
	_ "github.com/lib/pq"                                // registers "postgres"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // registers "libsql"
	_ "modernc.org/sqlite"                               // registers "sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB is an open pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Driver  string
	Dialect Dialect
}

// Resolve picks the database/sql driver name and dialect for a URL.
func Resolve(url, driverOverride string) (driver string, dialect Dialect, err error) {
	switch driverOverride {
	case "pgx", "postgres":
		return driverOverride, Postgres, nil
	case "sqlite", "libsql":
		return driverOverride, SQLite, nil
	case "":
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driverOverride)
	}

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", Postgres, nil
	case strings.HasPrefix(url, "libsql://"), strings.HasPrefix(url, "wss://"):
		return "libsql", SQLite, nil
	case url == "":
		return "", "", fmt.Errorf("database url is empty")
	default:
		return "sqlite", SQLite, nil
	}
}

// Open connects, verifies the connection and runs the schema migration.
func Open(ctx context.Context, url, driverOverride string) (*DB, error) {
	driver, dialect, err := Resolve(url, driverOverride)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if dialect == SQLite {
		// one writer at a time; also keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	if err := Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Driver: driver, Dialect: dialect}, nil
}
