package twitterimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/w3wave/social-digest/internal/cache"
	"github.com/w3wave/social-digest/internal/ratelimit"
	"github.com/w3wave/social-digest/internal/twitter"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/formatter"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/retry"
	"go.uber.org/fx"
)

const (
	endpointUserLookup = "users/by/username"
	endpointTimeline   = "users/tweets"

	headerRemaining = "x-rate-limit-remaining"
	headerReset     = "x-rate-limit-reset"
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	Cache      cache.Cache
	HTTPClient *http.Client `optional:"true"`
}

type TwitterImpl struct {
	baseURL     string
	bearerToken string
	http        *http.Client
	cache       cache.Cache
	limiter     ratelimit.Limiter
	policy      retry.CooldownPolicy
	pageSize    int
	maxPages    int
	userIDTTL   time.Duration
	logger      logger.Logger
	now         func() time.Time
}

func New(opts Opts) *TwitterImpl {
	cfg := opts.Config.Twitter

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &TwitterImpl{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken: cfg.BearerToken,
		http:        client,
		cache:       opts.Cache,
		limiter:     ratelimit.NewInMemoryLimiter(cfg.RequestsPerWindow, cfg.RateWindow, 1),
		policy: retry.CooldownPolicy{
			MaxRetries:  cfg.MaxRetries,
			Cooldown:    cfg.Cooldown,
			MaxCooldown: cfg.MaxCooldown,
		},
		pageSize:  cfg.PageSize,
		maxPages:  cfg.MaxPages,
		userIDTTL: cfg.UserIDCacheTTL,
		logger:    opts.Logger.WithComponent("TwitterClient"),
		now:       time.Now,
	}
}

var _ twitter.Client = (*TwitterImpl)(nil)

// get performs one paced GET against endpoint and decodes the JSON body into out.
func (t *TwitterImpl) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if err := t.limiter.Wait(ctx, endpoint); err != nil {
		return err
	}

	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	reset := parseReset(resp.Header.Get(headerReset))
	if resp.Header.Get(headerRemaining) == "0" && !reset.IsZero() {
		t.logger.Debug("Rate limit window exhausted", "endpoint", endpoint, "reset", reset)
		t.limiter.Block(endpoint, reset)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return twitter.NewRateLimitError(endpoint, reset, t.now)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", endpoint, twitter.ErrAccountNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: status %d: %w", endpoint, resp.StatusCode, twitter.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", endpoint, resp.StatusCode,
			formatter.Truncate(formatter.SingleLine(string(body)), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// parseReset reads the unix-seconds reset header. Zero when missing or malformed.
func parseReset(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func cleanHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
