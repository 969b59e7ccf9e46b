package openaiimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/summarizer"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"github.com/w3wave/social-digest/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type OpenAIImpl struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	retry       retry.Config
	logger      logger.Logger
}

func New(opts Opts) *OpenAIImpl {
	cfg := opts.Config.LLM

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIImpl{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retry:       retry.DefaultConfig(),
		logger:      opts.Logger.WithComponent("Summarizer"),
	}
}

var _ summarizer.Client = (*OpenAIImpl)(nil)

func (o *OpenAIImpl) Summarize(ctx context.Context, date string, posts []domain.Post) (string, error) {
	if len(posts) == 0 {
		return "", summarizer.ErrNoPosts
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizer.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: summarizer.UserPrompt(date, posts)},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var resp openai.ChatCompletionResponse
	op := func() error {
		var err error
		resp, err = o.client.CreateChatCompletion(ctx, req)
		if err != nil && !retryable(err) {
			return retry.Permanent(err)
		}
		return err
	}

	o.logger.Info("Requesting summary", "date", date, "posts", len(posts), "model", o.model)

	if err := retry.Do(ctx, o.logger, "CreateChatCompletion", op, o.retry); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", summarizer.ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", summarizer.ErrEmptyResponse
	}

	o.logger.Info("Summary generated",
		"date", date,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return content, nil
}

// Server-side failures and throttling are worth another try; bad requests and
// auth failures are not.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
