// Package migrations embeds the SQL schema for every supported store.
package migrations

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var fs embed.FS

// Source returns the migration source for dialect.
func Source(dialect string) (source.Driver, error) {
	const op = "migrations.Source"

	switch dialect {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("%s: unknown dialect %q", op, dialect)
	}

	src, err := iofs.New(fs, dialect)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open %s migrations: %w", op, dialect, err)
	}

	return src, nil
}
