package mailer

import (
	"context"
	"errors"

	"github.com/w3wave/social-digest/internal/domain"
)

var (
	ErrNotConfigured = errors.New("mailer is not configured")
	ErrNoRecipients  = errors.New("email has no recipients")
)

//go:generate go run go.uber.org/mock/mockgen -source=mailer.go -destination=mocks/mock.go
type Client interface {
	// Send delivers email. A nil error means the provider accepted it.
	Send(ctx context.Context, email domain.Email) error
}
