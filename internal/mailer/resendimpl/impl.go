package resendimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/mailer"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	HTTPClient *http.Client `optional:"true"`
}

type ResendImpl struct {
	client *resend.Client
	from   string
	retry  retry.Config
	logger logger.Logger
}

func New(opts Opts) (*ResendImpl, error) {
	cfg := opts.Config.Email

	var client *resend.Client
	if opts.HTTPClient != nil {
		client = resend.NewCustomClient(opts.HTTPClient, cfg.APIKey)
	} else {
		client = resend.NewClient(cfg.APIKey)
	}

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid RESEND_BASE_URL: %w", err)
		}
		client.BaseURL = u
	}

	return &ResendImpl{
		client: client,
		from:   cfg.From,
		retry:  retry.DefaultConfig(),
		logger: opts.Logger.WithComponent("Mailer"),
	}, nil
}

var _ mailer.Client = (*ResendImpl)(nil)

func (r *ResendImpl) Send(ctx context.Context, email domain.Email) error {
	if r.client.ApiKey == "" || r.from == "" {
		return mailer.ErrNotConfigured
	}
	if len(email.To) == 0 {
		return mailer.ErrNoRecipients
	}

	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	var sent *resend.SendEmailResponse
	op := func() error {
		var err error
		sent, err = r.client.Emails.SendWithContext(ctx, params)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return retry.Permanent(err)
		}
		return err
	}

	if err := retry.Do(ctx, r.logger, "SendEmail", op, r.retry); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	r.logger.Info("Email sent", "id", sent.Id, "recipients", len(email.To), "subject", email.Subject)
	return nil
}
