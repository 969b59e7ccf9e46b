package report

import (
	"context"
	"errors"

	"github.com/w3wave/social-digest/internal/domain"
)

var ErrNotFound = errors.New("report not found")

//go:generate go run go.uber.org/mock/mockgen -source=report.go -destination=mocks/mock.go
type Repository interface {
	// Create stores a new report with email_sent=false and returns its id
	Create(ctx context.Context, report domain.Report) (int64, error)

	// MarkEmailSent flags the report as delivered
	MarkEmailSent(ctx context.Context, id int64) error

	// ListByDate returns every report for a digest date, newest first
	ListByDate(ctx context.Context, date string) ([]domain.Report, error)
}
