package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePosts, downCreatePosts)
}

func upCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS posts (
		id            BIGSERIAL PRIMARY KEY,
		external_id   VARCHAR(64) NOT NULL,
		author_handle VARCHAR(64) NOT NULL,
		content       TEXT NOT NULL,
		created_at    TIMESTAMP WITH TIME ZONE NOT NULL,
		source_url    TEXT NOT NULL,
		likes         INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
		reshares      INTEGER NOT NULL DEFAULT 0 CHECK (reshares >= 0),
		replies       INTEGER NOT NULL DEFAULT 0 CHECK (replies >= 0),
		quotes        INTEGER NOT NULL DEFAULT 0 CHECK (quotes >= 0),
		processed     BOOLEAN NOT NULL DEFAULT FALSE,
		ingested_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		CONSTRAINT posts_external_id_key UNIQUE (external_id)
	);
	CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at);
	CREATE INDEX IF NOT EXISTS posts_unprocessed_created_at_idx ON posts (created_at) WHERE processed = FALSE;
	CREATE INDEX IF NOT EXISTS posts_author_handle_idx ON posts (author_handle);
	`)
	return err
}

func downCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS posts;`)
	return err
}
