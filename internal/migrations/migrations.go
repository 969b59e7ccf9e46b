// Package migrations holds the schema as goose Go migrations, registered at init.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// NewProvider opens dsn with lib/pq and returns a goose provider over the
// compiled-in migrations. Callers close the returned db.
func NewProvider(dsn string) (*goose.Provider, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, nil)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, db, nil
}

// Up applies every pending migration and returns how many ran.
func Up(ctx context.Context, dsn string) (int, error) {
	provider, db, err := NewProvider(dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}
