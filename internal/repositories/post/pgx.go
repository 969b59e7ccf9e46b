package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/repositories"
	"github.com/w3wave/social-digest/pkg/logger"
)

const table = "posts"

var columns = []string{
	"id", "external_id", "author_handle", "content", "created_at", "source_url",
	"likes", "reshares", "replies", "quotes", "processed", "ingested_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) InsertIfAbsent(ctx context.Context, post domain.Post) (InsertResult, error) {
	ingestedAt := post.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns("external_id", "author_handle", "content", "created_at", "source_url",
			"likes", "reshares", "replies", "quotes", "processed", "ingested_at").
		Values(post.ExternalID, post.AuthorHandle, post.Content, post.CreatedAt.UTC(), post.SourceURL,
			post.Metrics.Likes, post.Metrics.Reshares, post.Metrics.Replies, post.Metrics.Quotes,
			false, ingestedAt).
		Suffix("ON CONFLICT (external_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	err = p.pg.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Duplicate, nil
	}
	if err != nil {
		return 0, err
	}
	return Inserted, nil
}

func (p *Pgx) GetByExternalID(ctx context.Context, externalID string) (domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"external_id": externalID}).
		ToSql()
	if err != nil {
		return domain.Post{}, repositories.ErrBadQuery
	}

	post, err := scanPost(p.pg.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, ErrNotFound
	}
	return post, err
}

func (p *Pgx) ListUnprocessed(ctx context.Context, window domain.Window) ([]domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"processed": false}).
		Where(sq.GtOrEq{"created_at": window.Start.UTC()}).
		Where(sq.Lt{"created_at": window.End.UTC()}).
		OrderBy("created_at ASC", "external_id ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *Pgx) MarkProcessed(ctx context.Context, externalIDs []string) error {
	ids := Distinct(externalIDs)
	if len(ids) == 0 {
		return nil
	}

	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("processed", true).
		Where(sq.Eq{"external_id": ids}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	tx, err := p.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mark transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != int64(len(ids)) {
		p.logger.Error("Mark matched fewer posts than requested, rolling back",
			"requested", len(ids), "matched", tag.RowsAffected())
		return fmt.Errorf("%w: matched %d of %d", ErrPartialMark, tag.RowsAffected(), len(ids))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit mark transaction: %w", err)
	}
	return nil
}

func (p *Pgx) ResetProcessed(ctx context.Context, from, to time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("processed", false).
		Where(sq.Eq{"processed": true}).
		Where(sq.GtOrEq{"created_at": from.UTC()}).
		Where(sq.Lt{"created_at": to.UTC()}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID, &post.ExternalID, &post.AuthorHandle, &post.Content, &post.CreatedAt, &post.SourceURL,
		&post.Metrics.Likes, &post.Metrics.Reshares, &post.Metrics.Replies, &post.Metrics.Quotes,
		&post.Processed, &post.IngestedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.IngestedAt = post.IngestedAt.UTC()
	return post, nil
}
