package summarizer

import (
	"strings"
	"testing"

	"github.com/w3wave/social-digest/internal/domain"
)

func TestUserPromptKeepsSelectionOrder(t *testing.T) {
	posts := []domain.Post{
		{AuthorHandle: "macro_alpha", Content: "Curve steepening\n", SourceURL: "https://twitter.com/macro_alpha/status/2", Metrics: domain.Metrics{Likes: 1200}},
		{AuthorHandle: "crypto_beta", Content: "ETH/BTC breaking out", SourceURL: "https://twitter.com/crypto_beta/status/1", Metrics: domain.Metrics{Likes: 60}},
	}

	got := UserPrompt("2024-01-01", posts)

	first := strings.Index(got, "@macro_alpha (1,200 engagement): Curve steepening\nURL: https://twitter.com/macro_alpha/status/2")
	second := strings.Index(got, "@crypto_beta (60 engagement): ETH/BTC breaking out")
	if first < 0 || second < 0 {
		t.Fatalf("prompt missing post lines:\n%s", got)
	}
	if first > second {
		t.Error("posts must appear in selection order")
	}
	if !strings.Contains(got, "2024-01-01") || !strings.Contains(got, "Source: @author - URL") {
		t.Error("prompt missing date or attribution format")
	}
}

func TestSystemPromptListsSections(t *testing.T) {
	for _, s := range Sections {
		if !strings.Contains(SystemPrompt, s) {
			t.Errorf("system prompt missing section %q", s)
		}
	}
}
