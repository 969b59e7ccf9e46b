package report

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories"
	"github.com/w3wave/social-digest/pkg/logger"
)

const table = "ai_reports"

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("ReportRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, report domain.Report) (int64, error) {
	postIDs := report.PostIDs
	if postIDs == nil {
		postIDs = []string{}
	}

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns("report_date", "summary", "post_ids", "email_sent", "created_at").
		Values(report.Date, report.Summary, postIDs, false, time.Now().UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Pgx) MarkEmailSent(ctx context.Context, id int64) error {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("email_sent", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Pgx) ListByDate(ctx context.Context, date string) ([]domain.Report, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "to_char(report_date, 'YYYY-MM-DD')", "summary", "post_ids", "email_sent", "created_at").
		From(table).
		Where(sq.Eq{"report_date": date}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.Date, &r.Summary, &r.PostIDs, &r.EmailSent, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
