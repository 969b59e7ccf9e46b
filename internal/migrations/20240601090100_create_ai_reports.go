package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAIReports, downCreateAIReports)
}

func upCreateAIReports(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS ai_reports (
		id          BIGSERIAL PRIMARY KEY,
		report_date DATE NOT NULL,
		summary     TEXT NOT NULL,
		post_ids    TEXT[] NOT NULL DEFAULT '{}',
		email_sent  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS ai_reports_report_date_idx ON ai_reports (report_date);
	`)
	return err
}

func downCreateAIReports(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS ai_reports;`)
	return err
}
